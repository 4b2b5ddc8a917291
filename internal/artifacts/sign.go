package artifacts

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// Artifact kinds embedded in signed QR payloads.
const (
	KindInvoice  = "invoice"
	KindOrder    = "order"
	KindJobCard  = "jobcard"
	KindJobwork  = "jobwork"
	KindDispatch = "dispatch"
)

// QRPayload is the verifiable reference printed on every PDF artifact.
type QRPayload struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Signature string `json:"signature"`
}

// Sign computes the hex HMAC SHA256 over "kind|id".
func Sign(secret, kind, id string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", kind, id)
	return hex.EncodeToString(mac.Sum(nil))
}

// NewQRPayload builds a signed payload for an artifact reference.
func NewQRPayload(secret, kind, id string) QRPayload {
	return QRPayload{Kind: kind, ID: id, Signature: Sign(secret, kind, id)}
}

// VerifyPayload checks a scanned payload against the signing secret.
func VerifyPayload(secret string, payload QRPayload) bool {
	if payload.Kind == "" || payload.ID == "" || payload.Signature == "" {
		return false
	}
	expected := Sign(secret, payload.Kind, payload.ID)
	return hmac.Equal([]byte(expected), []byte(payload.Signature))
}

// DeepLink renders the payload as the URL encoded into the QR image.
func (p QRPayload) DeepLink(base string) string {
	values := url.Values{}
	values.Set("kind", p.Kind)
	values.Set("id", p.ID)
	values.Set("sig", p.Signature)
	return base + "?" + values.Encode()
}
