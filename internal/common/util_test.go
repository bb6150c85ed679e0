package common

import (
	"errors"
	"fmt"
	"testing"
)

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- ClampPercent ----------

func TestClampPercent(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 250: 100}
	for in, want := range cases {
		if got := ClampPercent(in); got != want {
			t.Fatalf("ClampPercent(%d) = %d, want %d", in, got, want)
		}
	}
}

// ---------- sentinels ----------

func TestSentinels_MatchWhenWrapped(t *testing.T) {
	err := fmt.Errorf("%w: backend said no", ErrTranslation)
	if !errors.Is(err, ErrTranslation) {
		t.Fatalf("wrapped error must match ErrTranslation")
	}
	if errors.Is(err, ErrExtraction) {
		t.Fatalf("wrapped error must not match ErrExtraction")
	}
}
