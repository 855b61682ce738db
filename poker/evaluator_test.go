package poker

import "testing"

func mustHand(t *testing.T, cards ...string) Hand {
	t.Helper()
	var h Hand
	for _, s := range cards {
		c, err := ParseCard(s)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", s, err)
		}
		h.AddCard(c)
	}
	return h
}

func TestEvaluate7CategoryTypes(t *testing.T) {
	tests := []struct {
		name     string
		cards    []string
		expected Category
	}{
		{"high card", []string{"As", "Kh", "Qd", "Jc", "9s", "7h", "5d"}, HighCard},
		{"one pair", []string{"As", "Ah", "Kd", "Qc", "Js", "9h", "7d"}, OnePair},
		{"two pair", []string{"As", "Ah", "Kd", "Kc", "Js", "9h", "7d"}, TwoPair},
		{"trips", []string{"As", "Ah", "Ad", "Kc", "Js", "9h", "7d"}, ThreeOfAKind},
		{"straight", []string{"9s", "8h", "7d", "6c", "5s", "2h", "2d"}, Straight},
		{"wheel straight", []string{"As", "2h", "3d", "4c", "5s", "9h", "Kd"}, Straight},
		{"flush", []string{"Ah", "Kh", "Qh", "Jh", "9h", "2c", "3d"}, Flush},
		{"full house", []string{"As", "Ah", "Ad", "Kc", "Ks", "9h", "7d"}, FullHouse},
		{"quads", []string{"As", "Ah", "Ad", "Ac", "Ks", "9h", "7d"}, FourOfAKind},
		{"straight flush", []string{"9h", "8h", "7h", "6h", "5h", "Kd", "2c"}, StraightFlush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := mustHand(t, tt.cards...)
			result, err := Evaluate7(hand)
			if err != nil {
				t.Fatalf("Evaluate7: %v", err)
			}
			if result.Category != tt.expected {
				t.Errorf("category = %v, want %v", result.Category, tt.expected)
			}
			if got := CategoryOf(result.Rank); got != tt.expected {
				t.Errorf("CategoryOf(%d) = %v, want %v", result.Rank, got, tt.expected)
			}
		})
	}
}

func TestAbsoluteRankBounds(t *testing.T) {
	hand := mustHand(t, "As", "Kh", "Qd", "Jc", "9s", "7h", "5d")
	result, err := Evaluate7(hand)
	if err != nil {
		t.Fatalf("Evaluate7: %v", err)
	}
	if result.Rank < 1 || result.Rank > 7462 {
		t.Fatalf("rank %d outside [1,7462]", result.Rank)
	}
}

func TestWheelIsWeakestStraight(t *testing.T) {
	wheel := mustHand(t, "As", "2h", "3d", "4c", "5s", "9h", "Kd")
	sixHigh := mustHand(t, "2s", "3h", "4d", "5c", "6s", "9h", "Kd")

	wheelResult, err := Evaluate7(wheel)
	if err != nil {
		t.Fatalf("Evaluate7(wheel): %v", err)
	}
	sixHighResult, err := Evaluate7(sixHigh)
	if err != nil {
		t.Fatalf("Evaluate7(sixHigh): %v", err)
	}

	if wheelResult.Category != Straight {
		t.Fatalf("wheel category = %v, want Straight", wheelResult.Category)
	}
	if wheelResult.Rank >= sixHighResult.Rank {
		t.Errorf("wheel rank %d should be less than 6-high straight rank %d", wheelResult.Rank, sixHighResult.Rank)
	}
	if wheelResult.Rank != categoryRange[Straight][0] {
		t.Errorf("wheel rank = %d, want the minimum Straight rank %d", wheelResult.Rank, categoryRange[Straight][0])
	}
}

func TestKickerCascadeStrictlyIncreasesRank(t *testing.T) {
	base := mustHand(t, "Ah", "Ad", "Kc", "Qs", "2h")
	better := mustHand(t, "Ah", "Ad", "Kc", "Qs", "3h")

	baseResult, err := Evaluate5(base)
	if err != nil {
		t.Fatalf("Evaluate5(base): %v", err)
	}
	betterResult, err := Evaluate5(better)
	if err != nil {
		t.Fatalf("Evaluate5(better): %v", err)
	}

	if betterResult.Rank <= baseResult.Rank {
		t.Errorf("raising kicker from 2 to 3 did not strictly increase rank: %d -> %d", baseResult.Rank, betterResult.Rank)
	}
}

func TestEquivalentHandsEqualRank(t *testing.T) {
	a := mustHand(t, "As", "Ks", "Qs", "Js", "9s")
	b := mustHand(t, "Ah", "Kh", "Qh", "Jh", "9h")

	aResult, err := Evaluate5(a)
	if err != nil {
		t.Fatalf("Evaluate5(a): %v", err)
	}
	bResult, err := Evaluate5(b)
	if err != nil {
		t.Fatalf("Evaluate5(b): %v", err)
	}
	if aResult.Rank != bResult.Rank {
		t.Errorf("suit-equivalent flushes ranked differently: %d vs %d", aResult.Rank, bResult.Rank)
	}
}

func TestExtraCardCannotWorsenResult(t *testing.T) {
	five := mustHand(t, "Ah", "Ad", "Kc", "Qs", "Js")
	fiveResult, err := Evaluate5(five)
	if err != nil {
		t.Fatalf("Evaluate5: %v", err)
	}

	seven := mustHand(t, "Ah", "Ad", "Kc", "Qs", "Js", "2c", "3d")
	sevenResult, err := Evaluate7(seven)
	if err != nil {
		t.Fatalf("Evaluate7: %v", err)
	}

	if sevenResult.Rank != fiveResult.Rank {
		t.Errorf("adding unhelpful cards changed the result: %d -> %d", fiveResult.Rank, sevenResult.Rank)
	}
}

func TestEvaluate7RejectsWrongCardCount(t *testing.T) {
	hand := mustHand(t, "As", "Ks", "Qs", "Js")
	if _, err := Evaluate7(hand); err == nil {
		t.Fatal("expected error for 4-card hand")
	}
}

func TestFlushCategoryAndRankSample(t *testing.T) {
	hand := mustHand(t, "Ah", "Kh", "Qh", "Jh", "9h", "8d", "2c")
	result, err := Evaluate7(hand)
	if err != nil {
		t.Fatalf("Evaluate7: %v", err)
	}
	if result.Category != Flush {
		t.Fatalf("category = %v, want Flush", result.Category)
	}
	r := categoryRange[Flush]
	if result.Rank < r[0] || result.Rank > r[1] {
		t.Errorf("rank %d outside Flush range [%d,%d]", result.Rank, r[0], r[1])
	}
}

func TestStraightFlushSample(t *testing.T) {
	hand := mustHand(t, "9h", "8h", "7h", "6h", "5h", "Kd", "2c")
	result, err := Evaluate7(hand)
	if err != nil {
		t.Fatalf("Evaluate7: %v", err)
	}
	r := categoryRange[StraightFlush]
	if result.Rank < r[0] || result.Rank > r[1] {
		t.Errorf("rank %d outside StraightFlush range [%d,%d]", result.Rank, r[0], r[1])
	}
}
