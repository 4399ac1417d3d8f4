package wager_test

import (
	"testing"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

func straight(id, player, initials string, st wager.Status, w, payout string) wager.Bet {
	return wager.Bet{
		ID:              id,
		GameID:          "g1",
		PlayerID:        player,
		PlayerInitials:  initials,
		Kind:            wager.KindStraight,
		Selection:       &wager.Selection{Market: "h2h", Outcome: "KC", Odds: -110},
		Wager:           d(w),
		PotentialPayout: d(payout),
		Status:          st,
	}
}

func TestComputeGameStats(t *testing.T) {
	bets := []wager.Bet{
		straight("1", "pa", "AB", wager.StatusPending, "10", "15"),
		straight("2", "pa", "AB", wager.StatusWon, "5", "9"),
		straight("3", "pb", "CD", wager.StatusLost, "20", "18"),
		straight("4", "pb", "CD", wager.StatusVoid, "5", "10"),
		straight("5", "pa", "AB", wager.StatusPush, "3", "3"),
		straight("6", "pb", "CD", wager.StatusCancelled, "4", "4"),
	}

	st := wager.ComputeGameStats("g1", bets)

	if st.TotalBets != 6 {
		t.Errorf("total bets = %d, want 6", st.TotalBets)
	}
	if !st.TotalWagered.Equal(d("35")) {
		t.Errorf("total wagered = %s, want 35", st.TotalWagered)
	}
	if !st.TotalPendingLiability.Equal(d("15")) {
		t.Errorf("pending liability = %s, want 15", st.TotalPendingLiability)
	}
	if !st.HouseProfit.Equal(d("11")) {
		t.Errorf("house profit = %s, want 11", st.HouseProfit)
	}
	if st.ByStatus[wager.StatusVoid] != 1 || st.ByStatus[wager.StatusPending] != 1 {
		t.Errorf("unexpected status counts: %v", st.ByStatus)
	}

	if len(st.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(st.Players))
	}
	ab, cd := st.Players[0], st.Players[1]
	if ab.Initials != "AB" || cd.Initials != "CD" {
		t.Fatalf("players not sorted by initials: %+v", st.Players)
	}
	if ab.TotalBets != 3 || ab.Pending != 1 || !ab.TotalWagered.Equal(d("15")) || !ab.TotalWon.Equal(d("9")) || !ab.Net.Equal(d("9")) {
		t.Errorf("unexpected AB stats: %+v", ab)
	}
	if cd.TotalBets != 3 || !cd.TotalWagered.Equal(d("20")) || !cd.Net.Equal(d("-20")) {
		t.Errorf("unexpected CD stats: %+v", cd)
	}
}

func TestVoidBetHasNoEffect(t *testing.T) {
	st := wager.ComputeGameStats("g1", []wager.Bet{
		straight("1", "pa", "AB", wager.StatusVoid, "5", "10"),
	})
	if !st.HouseProfit.IsZero() || !st.TotalWagered.IsZero() || !st.TotalPendingLiability.IsZero() {
		t.Errorf("void bet moved house totals: %+v", st)
	}
	if !st.Players[0].Net.IsZero() {
		t.Errorf("void bet moved player net: %s", st.Players[0].Net)
	}
}

func TestComputeGameStatsEmpty(t *testing.T) {
	st := wager.ComputeGameStats("g1", nil)
	if st.TotalBets != 0 || len(st.Players) != 0 || !st.HouseProfit.IsZero() {
		t.Errorf("unexpected stats for empty game: %+v", st)
	}
}
