package orders

import "testing"

func TestSideString(t *testing.T) {
	if Buy.String() != "buy" {
		t.Fatalf("expected buy, got %s", Buy.String())
	}
	if Sell.String() != "sell" {
		t.Fatalf("expected sell, got %s", Sell.String())
	}
}

func TestToPartialSnapshotsInitialAmountAsCurrentAndRemaining(t *testing.T) {
	o := NewOrder(10, 7, Buy, "alice")
	p := o.ToPartial(42)

	if p.Ordinal != 42 {
		t.Fatalf("expected ordinal 42, got %d", p.Ordinal)
	}
	if p.CurrentAmount != 7 || p.RemainingAmount != 7 {
		t.Fatalf("expected current=remaining=7, got current=%d remaining=%d", p.CurrentAmount, p.RemainingAmount)
	}
	if p.Price != 10 || p.Side != Buy || p.Signer != "alice" {
		t.Fatalf("unexpected partial order: %+v", p)
	}
}
