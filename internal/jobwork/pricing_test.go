package jobwork

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLabourRateForThickness(t *testing.T) {
	cases := []struct {
		thickness string
		want      string
	}{
		{"4", "8"},
		{"5", "10"},
		{"6", "12"},
		{"7", "12"},
		{"8", "16"},
		{"10", "20"},
		{"12", "25"},
		{"19", "25"},
		{"3", "8"},
	}
	for _, tc := range cases {
		thickness, _ := decimal.NewFromString(tc.thickness)
		want, _ := decimal.NewFromString(tc.want)
		if got := LabourRateForThickness(thickness); !got.Equal(want) {
			t.Fatalf("rate for %smm = %s, want %s", tc.thickness, got, want)
		}
	}
}

func TestLabourTotal(t *testing.T) {
	// 24" x 36" = 6 sqft, 2 pieces at 12/sqft = 144
	got := LabourTotal(decimal.NewFromInt(24), decimal.NewFromInt(36), 2, decimal.NewFromInt(12))
	if !got.Equal(decimal.NewFromInt(144)) {
		t.Fatalf("expected 144, got %s", got)
	}
}

func TestRenderDisclaimer(t *testing.T) {
	at := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	text := RenderDisclaimer("Mehta Furnishings", "JW-20260901-0003", at)

	for _, fragment := range []string{"Mehta Furnishings", "JW-20260901-0003", "01 Sep 2026", "not be held liable"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("disclaimer missing %q: %s", fragment, text)
		}
	}
}
