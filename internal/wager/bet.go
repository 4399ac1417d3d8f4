package wager

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinWager é o menor valor aceito por aposta.
var MinWager = decimal.New(25, -2)

type Kind string

const (
	KindStraight Kind = "straight"
	KindParlay   Kind = "parlay"
)

type LegSource string

const (
	SourceGame LegSource = "game"
	SourceProp LegSource = "prop"
)

// Selection é a escolha única de uma aposta simples (ou a base de uma perna).
type Selection struct {
	Market  string   `json:"market"`
	Outcome string   `json:"outcome"`
	Odds    int      `json:"odds"`
	Point   *float64 `json:"point,omitempty"`
}

// Leg é uma perna de parlay. Props carregam o jogador; a linha é o Point.
type Leg struct {
	Selection
	Source      LegSource `json:"source,omitempty"`
	Player      string    `json:"player,omitempty"`
	Description string    `json:"description,omitempty"`
}

// ParlayTerms é o snapshot calculado na colocação; nunca é recalculado.
type ParlayTerms struct {
	Legs            []Leg           `json:"legs"`
	CombinedOdds    int             `json:"combinedOdds"`
	CombinedDecimal decimal.Decimal `json:"combinedDecimal"`
}

// Bet representa uma aposta de um jogador em um jogo.
// Exatamente um entre Selection (straight) e ParlayTerms (parlay) está presente.
type Bet struct {
	ID             string     `json:"id"`
	GameID         string     `json:"gameId"`
	PlayerID       string     `json:"playerId"`
	PlayerInitials string     `json:"playerInitials"`
	Kind           Kind       `json:"type"`
	Description    string     `json:"description"`
	Selection      *Selection `json:"selection,omitempty"`
	*ParlayTerms

	Wager           decimal.Decimal `json:"wager"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
	Status          Status          `json:"status"`
	PlacedAt        time.Time       `json:"placedAt"`
	SettledAt       *time.Time      `json:"settledAt,omitempty"`
}

// Validate confere se o formato da aposta corresponde ao seu Kind.
func (b *Bet) Validate() error {
	switch b.Kind {
	case KindStraight:
		if b.Selection == nil || b.ParlayTerms != nil {
			return invalid("straight bet must carry exactly one selection")
		}
	case KindParlay:
		if b.ParlayTerms == nil || b.Selection != nil {
			return invalid("parlay bet must carry legs and no selection")
		}
		if len(b.Legs) < 2 {
			return needMoreLegs(len(b.Legs))
		}
	default:
		return invalid("unknown bet type %q", b.Kind)
	}
	if !b.Status.Valid() {
		return invalid("unknown status %q", b.Status)
	}
	return nil
}

// Price devolve as odds pelas quais a aposta foi travada.
func (b *Bet) Price() int {
	switch b.Kind {
	case KindParlay:
		return b.CombinedOdds
	default:
		return b.Selection.Odds
	}
}

// transition aplica a mudança de status conferindo a tabela de transições.
func (b *Bet) transition(to Status, at time.Time) error {
	if !CanTransition(b.Status, to) {
		if b.Status.Terminal() {
			return &transitionError{id: b.ID, from: b.Status, to: to}
		}
		return invalid("cannot move bet %s from %s to %s", b.ID, b.Status, to)
	}
	b.Status = to
	t := at.UTC()
	b.SettledAt = &t
	return nil
}

type transitionError struct {
	id       string
	from, to Status
}

func (e *transitionError) Error() string {
	return "bet " + e.id + " is already " + string(e.from) + ", cannot move to " + string(e.to)
}

func (e *transitionError) Unwrap() error { return ErrAlreadySettled }

// Clone copia a aposta sem compartilhar ponteiros nem slices.
func (b Bet) Clone() Bet {
	if b.Selection != nil {
		s := b.Selection.clone()
		b.Selection = &s
	}
	if b.ParlayTerms != nil {
		p := *b.ParlayTerms
		p.Legs = make([]Leg, len(b.ParlayTerms.Legs))
		for i, l := range b.ParlayTerms.Legs {
			l.Selection = l.Selection.clone()
			p.Legs[i] = l
		}
		b.ParlayTerms = &p
	}
	if b.SettledAt != nil {
		t := *b.SettledAt
		b.SettledAt = &t
	}
	return b
}

func (s Selection) clone() Selection {
	if s.Point != nil {
		p := *s.Point
		s.Point = &p
	}
	return s
}

// Describe monta a descrição padrão quando o cliente não envia uma.
func Describe(sel *Selection, legs []Leg) string {
	if len(legs) > 0 {
		parts := make([]string, 0, len(legs))
		for _, l := range legs {
			if l.Description != "" {
				parts = append(parts, l.Description)
				continue
			}
			parts = append(parts, l.Selection.label())
		}
		return strconv.Itoa(len(legs)) + "-leg parlay: " + strings.Join(parts, " / ")
	}
	if sel == nil {
		return ""
	}
	return sel.label()
}

func (s Selection) label() string {
	var sb strings.Builder
	sb.WriteString(s.Outcome)
	if s.Point != nil {
		sb.WriteByte(' ')
		sb.WriteString(formatPoint(*s.Point))
	}
	sb.WriteString(" (")
	sb.WriteString(FormatOdds(s.Odds))
	sb.WriteByte(')')
	return sb.String()
}

// FormatOdds escreve odds americanas com sinal explícito (+150, -110).
func FormatOdds(american int) string {
	if american > 0 {
		return "+" + strconv.Itoa(american)
	}
	return strconv.Itoa(american)
}

func formatPoint(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// QuarterWinner identifica o dono do quadrado vencedor de um período.
type QuarterWinner struct {
	Player string `json:"player"`
}

type Quarter struct {
	Completed bool            `json:"completed"`
	Winner    *QuarterWinner  `json:"winner,omitempty"`
	Prize     decimal.Decimal `json:"prize"`
}

// Game é a parte do jogo que o motor de apostas lê: custo do quadrado,
// tetos de payout, grade, períodos e apostas.
type Game struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	BetAmount         decimal.Decimal            `json:"betAmount"`
	PrizeDistribution map[string]decimal.Decimal `json:"prizeDistribution,omitempty"`
	MaxPayoutStraight decimal.Decimal            `json:"maxPayoutStraight"`
	MaxPayoutParlay   decimal.Decimal            `json:"maxPayoutParlay"`
	Squares           []*string                  `json:"squares,omitempty"`
	Quarters          map[string]Quarter         `json:"quarters,omitempty"`
	Bets              []Bet                      `json:"bets,omitempty"`
}
