package pivot

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// overUnderPattern splits "<participant> <Over|Under> <line>". The participant is greedy so
// the last side token wins for names that themselves contain "Over" or "Under".
var overUnderPattern = regexp.MustCompile(`(?i)^\s*(.+)\s+(over|under)\s+(\S+)\s*$`)

// linePattern accepts integral or decimal lines, optionally signed
var linePattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Side is the Over/Under side of a line selection
type Side int

const (
	SideNone Side = iota
	SideOver
	SideUnder
)

// Result is the outcome of one parse pass
type Result struct {
	Rows           []models.Row
	SelectionCount int
}

// Parser turns raw selections into pivoted and flat rows
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a new selection parser
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		logger: logger.With().Str("component", "pivot").Logger(),
	}
}

// Parse runs the pivot and logs a summary of what was produced
func (p *Parser) Parse(selections []models.Selection) Result {
	result := Parse(selections)

	var pivots int
	for _, row := range result.Rows {
		if row.Kind() == models.RowKindPivot {
			pivots++
		}
	}

	p.logger.Debug().
		Int("selections", result.SelectionCount).
		Int("rows", len(result.Rows)).
		Int("pivot_rows", pivots).
		Int("flat_rows", len(result.Rows)-pivots).
		Msg("parsed selections")

	return result
}

// Parse groups Over/Under selections sharing a participant and line into one PivotRow and
// passes every other selection through as a FlatRow. Rows keep first-seen order. A side set
// twice for the same key keeps the later odds.
func Parse(selections []models.Selection) Result {
	rows := make([]models.Row, 0, len(selections))
	index := make(map[string]int)

	for _, sel := range selections {
		participant, line, side, ok := SplitLabel(sel.Label)
		if !ok {
			rows = append(rows, models.FlatRow{Label: sel.Label, Odds: sel.Odds})
			continue
		}

		key := participant + "\x00" + line.String()
		pos, seen := index[key]
		if !seen {
			pos = len(rows)
			index[key] = pos
			rows = append(rows, models.PivotRow{Participant: participant, Line: line})
		}

		row := rows[pos].(models.PivotRow)
		odds := sel.Odds
		switch side {
		case SideOver:
			row.OverOdds = &odds
		case SideUnder:
			row.UnderOdds = &odds
		}
		rows[pos] = row
	}

	return Result{
		Rows:           rows,
		SelectionCount: len(selections),
	}
}

// SplitLabel extracts participant, line and side from an Over/Under label.
// ok is false when the label does not have that shape or the line is not numeric.
func SplitLabel(label string) (participant string, line decimal.Decimal, side Side, ok bool) {
	m := overUnderPattern.FindStringSubmatch(label)
	if m == nil {
		return "", decimal.Zero, SideNone, false
	}

	participant = strings.TrimSpace(m[1])
	if participant == "" || !linePattern.MatchString(m[3]) {
		return "", decimal.Zero, SideNone, false
	}

	line, err := decimal.NewFromString(strings.TrimPrefix(m[3], "+"))
	if err != nil {
		return "", decimal.Zero, SideNone, false
	}

	if strings.EqualFold(m[2], "over") {
		side = SideOver
	} else {
		side = SideUnder
	}

	return participant, line, side, true
}
