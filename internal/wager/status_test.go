package wager_test

import (
	"errors"
	"testing"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

func TestTransitions(t *testing.T) {
	all := []wager.Status{wager.StatusPending, wager.StatusWon, wager.StatusLost, wager.StatusPush, wager.StatusVoid, wager.StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := from == wager.StatusPending && to != wager.StatusPending
			if got := wager.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
		if from.Terminal() == (from == wager.StatusPending) {
			t.Errorf("%s: Terminal() = %v", from, from.Terminal())
		}
	}
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		raw  string
		want wager.Status
		err  bool
	}{
		{"won", wager.StatusWon, false},
		{" Lost ", wager.StatusLost, false},
		{"PUSH", wager.StatusPush, false},
		{"void", wager.StatusVoid, false},
		{"cancelled", "", true},
		{"pending", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := wager.ParseOutcome(tt.raw)
		if tt.err {
			if !errors.Is(err, wager.ErrInvalidOutcome) {
				t.Errorf("ParseOutcome(%q): expected ErrInvalidOutcome, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseOutcome(%q) = %s, %v", tt.raw, got, err)
		}
	}
}
