package ledkit

import "testing"

func TestReferencePatterns(t *testing.T) {
	want := map[LedId]PinState{
		LedUser1: Low, LedUser2: High, LedUser3: Low,
		LedGreen1: High, LedGreen2: Low,
		LedRed1: High, LedRed2: Low,
		LedOrange1: High, LedOrange2: Low,
		LedBlue1: High, LedBlue2: Low,
		LedWhite1: High, LedWhite2: Low, LedWhite3: High,
	}

	for _, frame := range []Pattern{PatternA, PatternB} {
		if err := frame.Validate(); err != nil {
			t.Errorf("reference frame invalid: %v", err)
		}
	}

	for id, state := range want {
		got, ok := PatternA.Lookup(id)
		if !ok {
			t.Errorf("PatternA misses %s", id)
		}
		assertStates(t, got, state)

		got, ok = PatternB.Lookup(id)
		if !ok {
			t.Errorf("PatternB misses %s", id)
		}
		assertStates(t, got, state.Complement())
	}
}

func TestPatternValidate(t *testing.T) {
	t.Run("missing led", func(t *testing.T) {
		if err := PatternA[1:].Validate(); err == nil {
			t.Error("expected error for incomplete pattern")
		}
	})

	t.Run("duplicate led", func(t *testing.T) {
		p := append(Pattern{{LedUser1, High}}, PatternA...)
		if err := p.Validate(); err == nil {
			t.Error("expected error for duplicated led")
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		p := append(Pattern{}, PatternA...)
		p[0].State = PinState(3)
		if err := p.Validate(); err == nil {
			t.Error("expected error for invalid state")
		}
	})
}

func TestPatternEqualIgnoresOrder(t *testing.T) {
	reversed := make(Pattern, len(PatternA))
	for i, a := range PatternA {
		reversed[len(PatternA)-1-i] = a
	}
	if !reversed.Equal(PatternA) {
		t.Error("reordered pattern not equal")
	}
	if PatternA.Equal(PatternB) {
		t.Error("PatternA equals PatternB")
	}
}
