package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAreaSqft(t *testing.T) {
	// 24" x 36" = 864 sq in = 6 sqft
	got := AreaSqft(dec("24"), dec("36"))
	if !got.Equal(dec("6")) {
		t.Fatalf("expected 6 sqft, got %s", got)
	}

	// 13" x 17" = 221 / 144 = 1.534722..., rounded half-even to 4 dp
	got = AreaSqft(dec("13"), dec("17"))
	if !got.Equal(dec("1.5347")) {
		t.Fatalf("expected 1.5347 sqft, got %s", got)
	}
}

func TestRoundMoneyBankers(t *testing.T) {
	cases := map[string]string{
		"2.125":  "2.12",
		"2.135":  "2.14",
		"2.145":  "2.14",
		"10.005": "10.00",
	}
	for in, want := range cases {
		if got := RoundMoney(dec(in)); !got.Equal(dec(want)) {
			t.Fatalf("RoundMoney(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestBulkDiscountTiers(t *testing.T) {
	cases := []struct {
		sqft string
		want int
	}{
		{"10", 0},
		{"49.99", 0},
		{"50", 10},
		{"99.99", 10},
		{"100", 15},
		{"499.99", 15},
		{"500", 20},
		{"1200", 20},
	}
	for _, tc := range cases {
		if got := BulkDiscountPercent(dec(tc.sqft)); got != tc.want {
			t.Fatalf("BulkDiscountPercent(%s) = %d, want %d", tc.sqft, got, tc.want)
		}
	}
}

func TestSplitGSTIntraState(t *testing.T) {
	split := SplitGST(dec("10000"), dec("18"), "27", "27")
	if !split.CGST.Equal(dec("900")) || !split.SGST.Equal(dec("900")) {
		t.Fatalf("expected CGST=SGST=900, got cgst=%s sgst=%s", split.CGST, split.SGST)
	}
	if !split.IGST.IsZero() {
		t.Fatalf("expected zero IGST, got %s", split.IGST)
	}
	if !split.Total().Equal(dec("1800")) {
		t.Fatalf("expected total tax 1800, got %s", split.Total())
	}
}

func TestSplitGSTInterState(t *testing.T) {
	split := SplitGST(dec("10000"), dec("18"), "29", "27")
	if !split.IGST.Equal(dec("1800")) {
		t.Fatalf("expected IGST 1800, got %s", split.IGST)
	}
	if !split.CGST.IsZero() || !split.SGST.IsZero() {
		t.Fatalf("expected zero CGST/SGST, got cgst=%s sgst=%s", split.CGST, split.SGST)
	}
}

func TestQuoteOrderSingleLine(t *testing.T) {
	quote, err := QuoteOrder([]LineInput{
		{HSNCode: "7007", WidthInch: dec("24"), HeightInch: dec("36"), Quantity: 2, UnitPrice: dec("1500")},
	}, "27", "27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Subtotal.Equal(dec("3000")) {
		t.Fatalf("expected subtotal 3000, got %s", quote.Subtotal)
	}
	// 12 sqft total: no bulk discount
	if quote.DiscountPercent != 0 {
		t.Fatalf("expected no discount, got %d%%", quote.DiscountPercent)
	}
	if !quote.Tax.CGST.Equal(dec("270")) || !quote.Tax.SGST.Equal(dec("270")) {
		t.Fatalf("expected 270/270 split, got %s/%s", quote.Tax.CGST, quote.Tax.SGST)
	}
	if !quote.Total.Equal(dec("3540")) {
		t.Fatalf("expected total 3540, got %s", quote.Total)
	}
}

func TestQuoteOrderBulkDiscountAndInterState(t *testing.T) {
	// 60" x 48" = 20 sqft per piece, 5 pieces = 100 sqft -> 15% discount tier.
	quote, err := QuoteOrder([]LineInput{
		{HSNCode: "7005", WidthInch: dec("60"), HeightInch: dec("48"), Quantity: 5, UnitPrice: dec("2000")},
	}, "29", "27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.DiscountPercent != 15 {
		t.Fatalf("expected 15%% discount, got %d%%", quote.DiscountPercent)
	}
	if !quote.DiscountAmount.Equal(dec("1500")) {
		t.Fatalf("expected discount 1500, got %s", quote.DiscountAmount)
	}
	// taxable 8500 at 18% inter-state
	if !quote.Tax.IGST.Equal(dec("1530")) {
		t.Fatalf("expected IGST 1530, got %s", quote.Tax.IGST)
	}
	if !quote.Tax.CGST.IsZero() || !quote.Tax.SGST.IsZero() {
		t.Fatal("expected no CGST/SGST on inter-state sale")
	}
	if !quote.Total.Equal(dec("10030")) {
		t.Fatalf("expected total 10030, got %s", quote.Total)
	}
}

func TestQuoteOrderRejectsBadLines(t *testing.T) {
	if _, err := QuoteOrder(nil, "27", "27"); err == nil {
		t.Fatal("expected error for empty lines")
	}
	if _, err := QuoteOrder([]LineInput{
		{HSNCode: "7007", WidthInch: dec("10"), HeightInch: dec("10"), Quantity: 0, UnitPrice: dec("100")},
	}, "27", "27"); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}
