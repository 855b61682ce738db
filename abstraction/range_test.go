package abstraction

import "testing"

func TestParseRangePocketPairsPlus(t *testing.T) {
	r, err := ParseRange("TT+")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	// TT, JJ, QQ, KK, AA: 5 ranks * 6 combos each.
	if got, want := r.Size(), 5*6; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if !r.Contains("As", "Ah") {
		t.Error("expected AA in TT+")
	}
	if r.Contains("9s", "9h") {
		t.Error("did not expect 99 in TT+")
	}
}

func TestParseRangeSuitedAndOffsuit(t *testing.T) {
	r, err := ParseRange("AKs,AKo")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if got, want := r.Size(), 4+12; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if !r.Contains("As", "Ks") {
		t.Error("expected suited AK")
	}
	if !r.Contains("As", "Kh") {
		t.Error("expected offsuit AK")
	}
}

func TestParseRangeDashRange(t *testing.T) {
	r, err := ParseRange("22-44")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if got, want := r.Size(), 3*6; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
}

func TestParseRangeRejectsGarbage(t *testing.T) {
	if _, err := ParseRange("ZZ"); err == nil {
		t.Error("expected error for invalid rank")
	}
}
