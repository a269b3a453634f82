package agent

import (
	"strconv"
	"testing"

	"github.com/slugpilot/slugpilot/internal/domain"
)

func action(n int) domain.CycleAction {
	return domain.CycleAction{Action: "a" + strconv.Itoa(n)}
}

func TestActionHistory_EvictsOldest(t *testing.T) {
	h := newActionHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(action(i))
	}

	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	got := h.Recent(0)
	want := []string{"a2", "a3", "a4"}
	for i, w := range want {
		if got[i].Action != w {
			t.Errorf("position %d: got %s, want %s", i, got[i].Action, w)
		}
	}
}

func TestActionHistory_RecentLimit(t *testing.T) {
	h := newActionHistory(10)
	for i := 0; i < 6; i++ {
		h.Add(action(i))
	}

	got := h.Recent(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Most recent two, oldest first.
	if got[0].Action != "a4" || got[1].Action != "a5" {
		t.Errorf("got %s,%s want a4,a5", got[0].Action, got[1].Action)
	}
}

func TestActionHistory_Empty(t *testing.T) {
	h := newActionHistory(5)
	if h.Len() != 0 {
		t.Errorf("len = %d, want 0", h.Len())
	}
	if got := h.Recent(10); len(got) != 0 {
		t.Errorf("recent = %d entries, want 0", len(got))
	}
}

func TestActionHistory_WrapAroundOrder(t *testing.T) {
	h := newActionHistory(4)
	for i := 0; i < 11; i++ {
		h.Add(action(i))
	}

	got := h.Recent(0)
	want := []string{"a7", "a8", "a9", "a10"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Action != w {
			t.Errorf("position %d: got %s, want %s", i, got[i].Action, w)
		}
	}
}
