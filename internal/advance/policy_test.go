package advance

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/enums"
)

func testSettings() Settings {
	return Settings{
		NoAdvanceUpto:              decimal.NewFromInt(2000),
		MinAdvancePercentUpto5000:  50,
		MinAdvancePercentAbove5000: 25,
		CreditEnabled:              true,
	}
}

func TestDecideTinyOrderDemandsFullPayment(t *testing.T) {
	decision, err := Decide(decimal.NewFromInt(1500), enums.CustomerClassStandard, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decision.Allowed) != 1 || decision.Allowed[0] != 100 {
		t.Fatalf("expected allowed=[100], got %v", decision.Allowed)
	}
	if decision.MinRequired != 100 {
		t.Fatalf("expected min 100, got %d", decision.MinRequired)
	}
}

func TestDecideMidTier(t *testing.T) {
	decision, err := Decide(decimal.NewFromInt(3500), enums.CustomerClassStandard, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsAllowed(50) {
		t.Fatalf("expected 50 allowed, got %v", decision.Allowed)
	}
	if decision.IsAllowed(25) {
		t.Fatalf("25 must not be allowed at this tier, got %v", decision.Allowed)
	}
	if decision.MinRequired != 50 {
		t.Fatalf("expected min 50, got %d", decision.MinRequired)
	}
}

func TestDecideLargeOrder(t *testing.T) {
	decision, err := Decide(decimal.NewFromInt(10000), enums.CustomerClassStandard, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsAllowed(25) {
		t.Fatalf("expected 25 allowed, got %v", decision.Allowed)
	}
	if decision.IsAllowed(0) {
		t.Fatalf("standard customers cannot defer, got %v", decision.Allowed)
	}
}

func TestDecideCreditCustomer(t *testing.T) {
	decision, err := Decide(decimal.NewFromInt(10000), enums.CustomerClassCredit, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed[0] != 0 {
		t.Fatalf("expected 0 prepended, got %v", decision.Allowed)
	}
	if !decision.CreditAvailable {
		t.Fatal("expected credit available")
	}

	settings := testSettings()
	settings.CreditEnabled = false
	decision, err = Decide(decimal.NewFromInt(10000), enums.CustomerClassCredit, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.IsAllowed(0) {
		t.Fatal("credit disabled must not offer 0")
	}
}

func TestDecideAdminAlwaysIncludesZero(t *testing.T) {
	settings := testSettings()
	settings.CreditEnabled = false
	decision, err := Decide(decimal.NewFromInt(800), enums.CustomerClassAdmin, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsAllowed(0) {
		t.Fatalf("admin override must include 0, got %v", decision.Allowed)
	}
	if decision.CreditAvailable {
		t.Fatal("admin override is not credit")
	}
}

func TestDecideIsPure(t *testing.T) {
	first, err := Decide(decimal.NewFromInt(7200), enums.CustomerClassStandard, testSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := Decide(decimal.NewFromInt(7200), enums.CustomerClassStandard, testSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.Allowed) != len(first.Allowed) || again.MinRequired != first.MinRequired {
			t.Fatal("decision changed between identical calls")
		}
	}
}

func TestDecideJobwork(t *testing.T) {
	decision, err := DecideJobwork(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decision.Allowed) != 1 || decision.Allowed[0] != 100 {
		t.Fatalf("single piece must pay in full, got %v", decision.Allowed)
	}

	decision, err = DecideJobwork(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decision.Allowed) != 2 || decision.Allowed[0] != 50 || decision.Allowed[1] != 100 {
		t.Fatalf("multi piece must offer 50 and 100, got %v", decision.Allowed)
	}

	if _, err := DecideJobwork(0); err == nil {
		t.Fatal("expected error for zero pieces")
	}
}
