package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

// Postgres implementa wager.Store e wager.GameSource sobre as tabelas games e bets.
// Toda escrita trava a linha do jogo (FOR UPDATE) para serializar operações
// concorrentes no mesmo jogo.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	_ wager.Store      = (*Postgres)(nil)
	_ wager.GameSource = (*Postgres)(nil)
)

// Game retorna a configuração do jogo, sem as apostas
func (p *Postgres) Game(ctx context.Context, gameID string) (wager.Game, error) {
	g, err := scanGame(p.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return wager.Game{}, fmt.Errorf("game %s: %w", gameID, wager.ErrNotFound)
	}
	if err != nil {
		return wager.Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// Games carrega todos os jogos com suas apostas (entrada do acerto entre jogos)
func (p *Postgres) Games(ctx context.Context) ([]wager.Game, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []wager.Game
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		index[g.ID] = len(games)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	bets, err := p.queryBets(ctx, p.db, `SELECT `+betColumns+` FROM bets ORDER BY placed_at, id`)
	if err != nil {
		return nil, err
	}
	for _, b := range bets {
		if i, ok := index[b.GameID]; ok {
			games[i].Bets = append(games[i].Bets, b)
		}
	}
	return games, nil
}

// InsertBet grava uma aposta nova sob o lock do jogo
func (p *Postgres) InsertBet(ctx context.Context, b wager.Bet) error {
	args, err := betArgs(b)
	if err != nil {
		return fmt.Errorf("encode bet: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockGame(ctx, tx, b.GameID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO bets (`+betColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`, args...); err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return tx.Commit()
}

// Bet retorna uma aposta pelo betID
func (p *Postgres) Bet(ctx context.Context, betID string) (wager.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, betID))
	if errors.Is(err, sql.ErrNoRows) {
		return wager.Bet{}, fmt.Errorf("bet %s: %w", betID, wager.ErrNotFound)
	}
	if err != nil {
		return wager.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	return b, nil
}

// ListBets retorna as apostas do jogo em ordem de colocação
func (p *Postgres) ListBets(ctx context.Context, gameID string) ([]wager.Bet, error) {
	var exists bool
	if err := p.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id=$1)`, gameID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check game: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("game %s: %w", gameID, wager.ErrNotFound)
	}
	return p.queryBets(ctx, p.db, `SELECT `+betColumns+` FROM bets WHERE game_id=$1 ORDER BY placed_at, id`, gameID)
}

// UpdateBet lê a aposta com FOR UPDATE, aplica fn e grava o novo status.
// O UPDATE confere o status lido, então nunca sobrescreve às cegas.
func (p *Postgres) UpdateBet(ctx context.Context, betID string, fn func(*wager.Bet) error) (wager.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return wager.Bet{}, err
	}
	defer tx.Rollback()

	var gameID string
	err = tx.QueryRowContext(ctx, `SELECT game_id FROM bets WHERE id=$1`, betID).Scan(&gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return wager.Bet{}, fmt.Errorf("bet %s: %w", betID, wager.ErrNotFound)
	}
	if err != nil {
		return wager.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	if err := lockGame(ctx, tx, gameID); err != nil {
		return wager.Bet{}, err
	}

	b, err := scanBet(tx.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1 FOR UPDATE`, betID))
	if err != nil {
		return wager.Bet{}, fmt.Errorf("lock bet: %w", err)
	}
	if err := p.apply(ctx, tx, &b, fn); err != nil {
		return wager.Bet{}, err
	}
	if err := tx.Commit(); err != nil {
		return wager.Bet{}, err
	}
	return b, nil
}

// UpdatePendingBets aplica fn a todas as apostas pending do jogo numa única
// transação: qualquer erro desfaz tudo.
func (p *Postgres) UpdatePendingBets(ctx context.Context, gameID string, fn func(*wager.Bet) error) ([]wager.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockGame(ctx, tx, gameID); err != nil {
		return nil, err
	}
	bets, err := p.queryBets(ctx, tx, `SELECT `+betColumns+` FROM bets
		WHERE game_id=$1 AND status=$2 ORDER BY placed_at, id FOR UPDATE`, gameID, string(wager.StatusPending))
	if err != nil {
		return nil, err
	}
	for i := range bets {
		if err := p.apply(ctx, tx, &bets[i], fn); err != nil {
			return nil, fmt.Errorf("bet %s: %w", bets[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bets, nil
}

func (p *Postgres) apply(ctx context.Context, tx *sql.Tx, b *wager.Bet, fn func(*wager.Bet) error) error {
	prev := b.Status
	if err := fn(b); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE bets SET status=$1, settled_at=$2 WHERE id=$3 AND status=$4`,
		string(b.Status), b.SettledAt, b.ID, string(prev))
	if err != nil {
		return fmt.Errorf("update bet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bet %s: %w", b.ID, wager.ErrAlreadySettled)
	}
	// trilha de auditoria na mesma transação
	if _, err := tx.ExecContext(ctx, `INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,$2,$3,$4,$5)`, b.ID, string(prev), string(b.Status), reason(b.Status), b.SettledAt); err != nil {
		return fmt.Errorf("insert bet transaction: %w", err)
	}
	return nil
}

func reason(to wager.Status) string {
	if to == wager.StatusCancelled {
		return "cancel"
	}
	return "settle"
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (p *Postgres) queryBets(ctx context.Context, q querier, query string, args ...any) ([]wager.Bet, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var out []wager.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	return out, nil
}

// lockGame garante exclusão mútua por jogo até o fim da transação
func lockGame(ctx context.Context, tx *sql.Tx, gameID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM games WHERE id=$1 FOR UPDATE`, gameID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("game %s: %w", gameID, wager.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock game: %w", err)
	}
	return nil
}
