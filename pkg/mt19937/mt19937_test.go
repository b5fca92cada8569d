package mt19937_test

import (
	"testing"

	"github.com/quiccfor/stmmcmc/pkg/mt19937"
)

func TestSameSeedSameStream(t *testing.T) {
	a := mt19937.New(42)
	b := mt19937.New(42)
	for i := 0; i < 1000; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
}

func TestExportRestoreContinuesStream(t *testing.T) {
	src := mt19937.New(7)
	for i := 0; i < 700; i++ {
		src.Uint32()
	}
	words, idx := src.ExportState()

	var want []uint32
	for i := 0; i < 1000; i++ {
		want = append(want, src.Uint32())
	}

	restored := mt19937.New(99)
	if err := restored.RestoreState(words, idx); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	for i, w := range want {
		if got := restored.Uint32(); got != w {
			t.Fatalf("restored stream diverged at draw %d: got %d, want %d", i, got, w)
		}
	}
}

func TestRestoreStateRejectsBadInput(t *testing.T) {
	src := mt19937.New(1)
	if err := src.RestoreState(make([]uint32, 10), 0); err == nil {
		t.Fatal("expected error for short state vector")
	}
	if err := src.RestoreState(make([]uint32, mt19937.StateSize), -1); err == nil {
		t.Fatal("expected error for negative index")
	}
}
