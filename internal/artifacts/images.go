package artifacts

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// QRPNG renders content as a PNG QR code of size x size pixels.
func QRPNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	data, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr code")
	}
	return data, nil
}

// BarcodePNG renders content as a Code128 PNG.
func BarcodePNG(content string, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 300
	}
	if height <= 0 {
		height = 80
	}

	code, err := code128.Encode(content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode barcode")
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scale barcode")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render barcode png")
	}
	return buf.Bytes(), nil
}
