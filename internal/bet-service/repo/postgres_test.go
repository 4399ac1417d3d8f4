package repo_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/squares-wager-platform/internal/bet-service/repo"
	"github.com/radieske/squares-wager-platform/internal/wager"
)

var (
	placedAt   = time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC)
	betCols    = []string{"id", "game_id", "player_id", "player_initials", "type", "description", "selection", "legs", "combined_odds", "combined_decimal", "wager", "potential_payout", "status", "placed_at", "settled_at"}
	gameCols   = []string{"id", "name", "bet_amount", "prize_distribution", "max_payout_straight", "max_payout_parlay", "squares", "quarters"}
	straightJS = []byte(`{"market":"h2h","outcome":"KC","odds":180}`)
)

func q(s string) string { return regexp.QuoteMeta(s) }

func setup(t *testing.T) (*repo.Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repo.NewPostgres(db), mock
}

func expectLockGame(mock sqlmock.Sqlmock, gameID string) {
	mock.ExpectQuery(q(`SELECT id FROM games WHERE id=$1 FOR UPDATE`)).
		WithArgs(gameID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(gameID))
}

func newService(p *repo.Postgres) *wager.Service {
	svc := wager.NewService(zap.NewNop(), p, nil)
	svc.Now = func() time.Time { return placedAt.Add(3 * time.Hour) }
	svc.NewID = func() string { return "b1" }
	return svc
}

func TestGameNotFound(t *testing.T) {
	p, mock := setup(t)
	mock.ExpectQuery(q(`FROM games WHERE id=$1`)).WithArgs("nope").WillReturnRows(sqlmock.NewRows(gameCols))

	_, err := p.Game(context.Background(), "nope")
	if !errors.Is(err, wager.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceBetInsertsUnderGameLock(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectQuery(q(`FROM games WHERE id=$1`)).WithArgs("g1").WillReturnRows(
		sqlmock.NewRows(gameCols).AddRow("g1", "Game 1", "1.00", nil, "100", "500", []byte(`[]`), []byte(`{}`)))
	mock.ExpectBegin()
	expectLockGame(mock, "g1")
	mock.ExpectExec(q(`INSERT INTO bets`)).
		WithArgs("b1", "g1", "p1", "AB", "straight", "KC (+180)", sqlmock.AnyArg(), nil,
			nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), "pending", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := newService(p).PlaceBet(context.Background(), wager.PlaceRequest{
		GameID:         "g1",
		PlayerID:       "p1",
		PlayerInitials: "AB",
		Wager:          decimal.NewFromInt(5),
		Selection:      &wager.Selection{Market: "h2h", Outcome: "KC", Odds: 180},
	})
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if !b.PotentialPayout.Equal(decimal.NewFromInt(9)) {
		t.Errorf("payout = %s, want 9", b.PotentialPayout)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettleBetChecksStatus(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT game_id FROM bets WHERE id=$1`)).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"game_id"}).AddRow("g1"))
	expectLockGame(mock, "g1")
	mock.ExpectQuery(q(`FROM bets WHERE id=$1 FOR UPDATE`)).WithArgs("b1").WillReturnRows(
		sqlmock.NewRows(betCols).AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "pending", placedAt, nil))
	mock.ExpectExec(q(`UPDATE bets SET status=$1, settled_at=$2 WHERE id=$3 AND status=$4`)).
		WithArgs("won", sqlmock.AnyArg(), "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO bet_transactions`)).
		WithArgs("b1", "pending", "won", "settle", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	b, err := newService(p).SettleBet(context.Background(), "b1", wager.StatusWon)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if b.Status != wager.StatusWon || b.SettledAt == nil || b.Selection.Odds != 180 {
		t.Errorf("unexpected bet: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelRecordsAuditTrail(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT game_id FROM bets WHERE id=$1`)).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"game_id"}).AddRow("g1"))
	expectLockGame(mock, "g1")
	mock.ExpectQuery(q(`FROM bets WHERE id=$1 FOR UPDATE`)).WithArgs("b1").WillReturnRows(
		sqlmock.NewRows(betCols).AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "pending", placedAt, nil))
	mock.ExpectExec(q(`UPDATE bets SET status=$1`)).WithArgs("cancelled", sqlmock.AnyArg(), "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO bet_transactions`)).WithArgs("b1", "pending", "cancelled", "cancel", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	// falha na auditoria desfaz o cancelamento
	if _, err := newService(p).CancelBet(context.Background(), "b1", "p1"); err == nil {
		t.Fatal("expected audit failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettleTerminalBetRollsBack(t *testing.T) {
	p, mock := setup(t)

	settled := placedAt.Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT game_id FROM bets WHERE id=$1`)).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"game_id"}).AddRow("g1"))
	expectLockGame(mock, "g1")
	mock.ExpectQuery(q(`FROM bets WHERE id=$1 FOR UPDATE`)).WithArgs("b1").WillReturnRows(
		sqlmock.NewRows(betCols).AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "won", placedAt, settled))
	mock.ExpectRollback()

	_, err := newService(p).SettleBet(context.Background(), "b1", wager.StatusLost)
	if !errors.Is(err, wager.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettleLostRaceReportsAlreadySettled(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT game_id FROM bets WHERE id=$1`)).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"game_id"}).AddRow("g1"))
	expectLockGame(mock, "g1")
	mock.ExpectQuery(q(`FROM bets WHERE id=$1 FOR UPDATE`)).WithArgs("b1").WillReturnRows(
		sqlmock.NewRows(betCols).AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "pending", placedAt, nil))
	mock.ExpectExec(q(`UPDATE bets SET status=$1`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := newService(p).SettleBet(context.Background(), "b1", wager.StatusWon)
	if !errors.Is(err, wager.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestSettleUnknownBet(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(`SELECT game_id FROM bets WHERE id=$1`)).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"game_id"}))
	mock.ExpectRollback()

	_, err := newService(p).SettleBet(context.Background(), "nope", wager.StatusWon)
	if !errors.Is(err, wager.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulkSettleUpdatesEveryPendingBet(t *testing.T) {
	p, mock := setup(t)

	legs := []byte(`[{"market":"h2h","outcome":"KC","odds":-110},{"market":"totals","outcome":"Over","odds":-110,"point":47.5}]`)
	mock.ExpectBegin()
	expectLockGame(mock, "g1")
	mock.ExpectQuery(q(`WHERE game_id=$1 AND status=$2 ORDER BY placed_at, id FOR UPDATE`)).WithArgs("g1", "pending").WillReturnRows(
		sqlmock.NewRows(betCols).
			AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "pending", placedAt, nil).
			AddRow("b2", "g1", "p2", "CD", "parlay", "2-leg parlay", nil, legs, 264, "3.6446280991735537", "10.00", "26.45", "pending", placedAt, nil))
	mock.ExpectExec(q(`UPDATE bets SET status=$1`)).WithArgs("void", sqlmock.AnyArg(), "b1", "pending").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO bet_transactions`)).WithArgs("b1", "pending", "void", "settle", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q(`UPDATE bets SET status=$1`)).WithArgs("void", sqlmock.AnyArg(), "b2", "pending").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO bet_transactions`)).WithArgs("b2", "pending", "void", "settle", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := newService(p).BulkSettle(context.Background(), "g1", wager.StatusVoid)
	if err != nil {
		t.Fatalf("bulk settle: %v", err)
	}
	if res.Count != 2 || res.BetIDs[0] != "b1" || res.BetIDs[1] != "b2" {
		t.Errorf("unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGamesGroupsBets(t *testing.T) {
	p, mock := setup(t)

	mock.ExpectQuery(q(`FROM games ORDER BY id`)).WillReturnRows(sqlmock.NewRows(gameCols).
		AddRow("g1", "Game 1", "1.00", []byte(`{"q1":0.25,"q2":0.25,"q3":0.25,"final":0.25}`), "100", "500",
			[]byte(`["AB",null,"CD"]`), []byte(`{"q1":{"completed":true,"winner":{"player":"AB"},"prize":"15"}}`)).
		AddRow("g2", "Game 2", "2.00", nil, "0", "0", []byte(`[]`), []byte(`{}`)))
	mock.ExpectQuery(q(`FROM bets ORDER BY placed_at, id`)).WillReturnRows(sqlmock.NewRows(betCols).
		AddRow("b1", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "won", placedAt, placedAt).
		AddRow("b2", "g2", "p2", "CD", "straight", "KC (+180)", straightJS, nil, nil, nil, "1.00", "1.80", "pending", placedAt, nil))

	games, err := p.Games(context.Background())
	if err != nil {
		t.Fatalf("games: %v", err)
	}
	if len(games) != 2 || len(games[0].Bets) != 1 || len(games[1].Bets) != 1 {
		t.Fatalf("unexpected grouping: %+v", games)
	}
	g1 := games[0]
	if len(g1.Squares) != 3 || g1.Squares[1] != nil || *g1.Squares[0] != "AB" {
		t.Errorf("squares not decoded: %v", g1.Squares)
	}
	if q1 := g1.Quarters["q1"]; !q1.Completed || q1.Winner.Player != "AB" || !q1.Prize.Equal(decimal.NewFromInt(15)) {
		t.Errorf("quarters not decoded: %+v", g1.Quarters)
	}
	if !g1.PrizeDistribution["final"].Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("prize distribution not decoded: %v", g1.PrizeDistribution)
	}
	if games[0].Bets[0].SettledAt == nil {
		t.Errorf("settled_at not decoded")
	}
}

func TestMalformedBetRowFails(t *testing.T) {
	tests := []struct {
		name string
		row  []any
	}{
		{"parlay without legs", []any{"b9", "g1", "p1", "AB", "parlay", "?", nil, []byte(`null`), 264, "3.64", "10.00", "26.45", "pending", placedAt, nil}},
		{"unknown status", []any{"b9", "g1", "p1", "AB", "straight", "KC (+180)", straightJS, nil, nil, nil, "5.00", "9.00", "settled", placedAt, nil}},
		{"unknown type", []any{"b9", "g1", "p1", "AB", "teaser", "?", straightJS, nil, nil, nil, "5.00", "9.00", "pending", placedAt, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mock := setup(t)
			rows := sqlmock.NewRows(betCols)
			vals := make([]driver.Value, len(tt.row))
			for i, v := range tt.row {
				vals[i] = v
			}
			rows.AddRow(vals...)
			mock.ExpectQuery(q(`FROM bets WHERE id=$1`)).WithArgs("b9").WillReturnRows(rows)

			_, err := p.Bet(context.Background(), "b9")
			if err == nil {
				t.Fatalf("expected error for malformed row")
			}
			if errors.Is(err, wager.ErrInvalidBet) || errors.Is(err, wager.ErrNotFound) {
				t.Errorf("malformed row should be an internal error, got %v", err)
			}
		})
	}
}
