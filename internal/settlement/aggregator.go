package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/squares-wager-platform/internal/wager"
)

type Standing string

const (
	Owes Standing = "owes" // jogador deve à casa
	Owed Standing = "owed" // casa deve ao jogador
	Even Standing = "even"
)

// GameLine é o detalhe de um jogador em um jogo.
type GameLine struct {
	GameID      string          `json:"gameId"`
	GameName    string          `json:"gameName"`
	Squares     int             `json:"squares"`
	SquaresCost decimal.Decimal `json:"squaresCost"`
	SquaresWon  decimal.Decimal `json:"squaresWon"`
	BetsWagered decimal.Decimal `json:"betsWagered"`
	BetsWon     decimal.Decimal `json:"betsWon"`
	BetsLost    decimal.Decimal `json:"betsLost"`
	PendingBets int             `json:"pendingBets"`
	Net         decimal.Decimal `json:"net"`
}

// Row é a linha de acerto de um jogador somada sobre todos os jogos.
type Row struct {
	Initials    Identity        `json:"initials"`
	Squares     int             `json:"squares"`
	SquaresCost decimal.Decimal `json:"squaresCost"`
	SquaresWon  decimal.Decimal `json:"squaresWon"`
	SquaresNet  decimal.Decimal `json:"squaresNet"`
	BetsWagered decimal.Decimal `json:"betsWagered"`
	BetsWon     decimal.Decimal `json:"betsWon"`
	BetsLost    decimal.Decimal `json:"betsLost"`
	BetsNet     decimal.Decimal `json:"betsNet"`
	TotalNet    decimal.Decimal `json:"totalNet"`
	PendingBets int             `json:"pendingBets"`
	Standing    Standing        `json:"standing"`
	Settled     bool            `json:"settled"`
	Marker      *Marker         `json:"marker,omitempty"`
	Drifted     bool            `json:"drifted,omitempty"`
	Games       []GameLine      `json:"games"`
}

type Summary struct {
	Players            int             `json:"players"`
	Settled            int             `json:"settled"`
	ToCollect          decimal.Decimal `json:"toCollect"`
	ToPayOut           decimal.Decimal `json:"toPayOut"`
	HouseBalance       decimal.Decimal `json:"houseBalance"`
	OutstandingCollect decimal.Decimal `json:"outstandingCollect"`
	OutstandingPayOut  decimal.Decimal `json:"outstandingPayOut"`
}

// Report é recalculado a cada pedido; nada aqui é persistido.
type Report struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
	// listas de ação, só com jogadores ainda não acertados
	Collect            []Identity `json:"collect"`
	PayOut             []Identity `json:"payOut"`
	Even               []Identity `json:"even"`
	PendingCaveat      bool       `json:"pendingCaveat"`
	PlayersWithPending []Identity `json:"playersWithPending,omitempty"`
}

// Aggregator monta o relatório de acerto. O zero value agrupa por iniciais.
type Aggregator struct {
	Identity IdentityFunc
}

func (a Aggregator) identity(initials string) Identity {
	if a.Identity == nil {
		return ByInitials(initials)
	}
	return a.Identity(initials)
}

type acc struct {
	row   Row
	games map[string]*GameLine
}

// Aggregate junta quadrados e apostas de todos os jogos por identidade e
// aplica os marcadores de acerto sem alterar os valores recalculados.
func (a Aggregator) Aggregate(games []wager.Game, markers map[Identity]Marker) Report {
	rows := make(map[Identity]*acc)
	line := func(id Identity, g wager.Game) *GameLine {
		r, ok := rows[id]
		if !ok {
			r = &acc{row: newRow(id), games: make(map[string]*GameLine)}
			rows[id] = r
		}
		gl, ok := r.games[g.ID]
		if !ok {
			gl = &GameLine{
				GameID:      g.ID,
				GameName:    g.Name,
				SquaresCost: decimal.Zero,
				SquaresWon:  decimal.Zero,
				BetsWagered: decimal.Zero,
				BetsWon:     decimal.Zero,
				BetsLost:    decimal.Zero,
			}
			r.games[g.ID] = gl
		}
		return gl
	}

	for _, g := range games {
		for _, sq := range g.Squares {
			if sq == nil {
				continue
			}
			id := a.identity(*sq)
			if id == "" {
				continue
			}
			gl := line(id, g)
			gl.Squares++
			gl.SquaresCost = gl.SquaresCost.Add(g.BetAmount)
		}
		for _, q := range g.Quarters {
			if !q.Completed || q.Winner == nil {
				continue
			}
			id := a.identity(q.Winner.Player)
			if id == "" {
				continue
			}
			gl := line(id, g)
			gl.SquaresWon = gl.SquaresWon.Add(q.Prize)
		}
		for _, b := range g.Bets {
			id := a.identity(b.PlayerInitials)
			if id == "" {
				continue
			}
			gl := line(id, g)
			// exposição bruta: toda aposta conta, qualquer que seja o status
			gl.BetsWagered = gl.BetsWagered.Add(b.Wager)
			switch b.Status {
			case wager.StatusWon:
				gl.BetsWon = gl.BetsWon.Add(b.PotentialPayout)
			case wager.StatusLost:
				gl.BetsLost = gl.BetsLost.Add(b.Wager)
			case wager.StatusPending:
				gl.PendingBets++
			}
		}
	}

	rep := Report{
		Rows:    make([]Row, 0, len(rows)),
		Collect: []Identity{},
		PayOut:  []Identity{},
		Even:    []Identity{},
		Summary: Summary{
			ToCollect:          decimal.Zero,
			ToPayOut:           decimal.Zero,
			HouseBalance:       decimal.Zero,
			OutstandingCollect: decimal.Zero,
			OutstandingPayOut:  decimal.Zero,
		},
	}
	for id, r := range rows {
		row := r.finish()
		if m, ok := markers[id]; ok {
			m := m
			row.Settled = true
			row.Marker = &m
			row.Drifted = !m.Amount.Equal(row.TotalNet)
		}
		rep.Rows = append(rep.Rows, row)
	}

	sort.SliceStable(rep.Rows, func(i, j int) bool {
		if c := rep.Rows[i].TotalNet.Cmp(rep.Rows[j].TotalNet); c != 0 {
			return c < 0
		}
		return rep.Rows[i].Initials < rep.Rows[j].Initials
	})

	for _, row := range rep.Rows {
		rep.Summary.Players++
		switch row.Standing {
		case Owes:
			rep.Summary.ToCollect = rep.Summary.ToCollect.Add(row.TotalNet.Abs())
		case Owed:
			rep.Summary.ToPayOut = rep.Summary.ToPayOut.Add(row.TotalNet)
		}
		if row.Settled {
			rep.Summary.Settled++
			continue
		}

		switch row.Standing {
		case Owes:
			rep.Collect = append(rep.Collect, row.Initials)
			rep.Summary.OutstandingCollect = rep.Summary.OutstandingCollect.Add(row.TotalNet.Abs())
		case Owed:
			rep.PayOut = append(rep.PayOut, row.Initials)
			rep.Summary.OutstandingPayOut = rep.Summary.OutstandingPayOut.Add(row.TotalNet)
		default:
			rep.Even = append(rep.Even, row.Initials)
		}
		if row.PendingBets > 0 {
			rep.PendingCaveat = true
			rep.PlayersWithPending = append(rep.PlayersWithPending, row.Initials)
		}
	}
	rep.Summary.HouseBalance = rep.Summary.ToCollect.Sub(rep.Summary.ToPayOut)
	return rep
}

func newRow(id Identity) Row {
	return Row{
		Initials:    id,
		SquaresCost: decimal.Zero,
		SquaresWon:  decimal.Zero,
		BetsWagered: decimal.Zero,
		BetsWon:     decimal.Zero,
		BetsLost:    decimal.Zero,
	}
}

func (r *acc) finish() Row {
	row := r.row
	row.Games = make([]GameLine, 0, len(r.games))
	for _, gl := range r.games {
		gl.Net = gl.SquaresWon.Sub(gl.SquaresCost).Add(gl.BetsWon).Sub(gl.BetsLost)

		row.Squares += gl.Squares
		row.SquaresCost = row.SquaresCost.Add(gl.SquaresCost)
		row.SquaresWon = row.SquaresWon.Add(gl.SquaresWon)
		row.BetsWagered = row.BetsWagered.Add(gl.BetsWagered)
		row.BetsWon = row.BetsWon.Add(gl.BetsWon)
		row.BetsLost = row.BetsLost.Add(gl.BetsLost)
		row.PendingBets += gl.PendingBets
		row.Games = append(row.Games, *gl)
	}
	sort.Slice(row.Games, func(i, j int) bool { return row.Games[i].GameID < row.Games[j].GameID })

	row.SquaresNet = row.SquaresWon.Sub(row.SquaresCost)
	row.BetsNet = row.BetsWon.Sub(row.BetsLost)
	row.TotalNet = row.SquaresNet.Add(row.BetsNet)
	switch row.TotalNet.Sign() {
	case -1:
		row.Standing = Owes
	case 1:
		row.Standing = Owed
	default:
		row.Standing = Even
	}
	return row
}
