package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shape describes which row variants a result set holds
type Shape string

const (
	ShapePivot Shape = "pivot"
	ShapeFlat  Shape = "flat"
	ShapeMixed Shape = "mixed"
)

// ResultSet is the output of one fetch-parse cycle
type ResultSet struct {
	ID             uuid.UUID
	Query          Query
	Rows           []Row
	SelectionCount int
	SkippedCount   int // feed selections left out because their odds were unreadable
	FetchedAt      time.Time
}

// Shape reports the row layout in effect. An empty set is flat.
func (r *ResultSet) Shape() Shape {
	var pivots, flats int
	for _, row := range r.Rows {
		switch row.Kind() {
		case RowKindPivot:
			pivots++
		case RowKindFlat:
			flats++
		}
	}

	switch {
	case pivots > 0 && flats > 0:
		return ShapeMixed
	case pivots > 0:
		return ShapePivot
	default:
		return ShapeFlat
	}
}

// rowJSON is the tagged wire form of a Row
type rowJSON struct {
	Kind        RowKind          `json:"kind"`
	Participant string           `json:"participant,omitempty"`
	Line        *decimal.Decimal `json:"line,omitempty"`
	OverOdds    *int             `json:"over_odds,omitempty"`
	UnderOdds   *int             `json:"under_odds,omitempty"`
	Label       string           `json:"label,omitempty"`
	Odds        *int             `json:"odds,omitempty"`
}

type resultSetJSON struct {
	ID             uuid.UUID `json:"id"`
	Query          Query     `json:"query"`
	Rows           []rowJSON `json:"rows"`
	SelectionCount int       `json:"selection_count"`
	SkippedCount   int       `json:"skipped_count,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// MarshalJSON encodes rows with an explicit kind tag
func (r ResultSet) MarshalJSON() ([]byte, error) {
	out := resultSetJSON{
		ID:             r.ID,
		Query:          r.Query,
		Rows:           make([]rowJSON, 0, len(r.Rows)),
		SelectionCount: r.SelectionCount,
		SkippedCount:   r.SkippedCount,
		FetchedAt:      r.FetchedAt,
	}

	for _, row := range r.Rows {
		switch v := row.(type) {
		case PivotRow:
			line := v.Line
			out.Rows = append(out.Rows, rowJSON{
				Kind:        RowKindPivot,
				Participant: v.Participant,
				Line:        &line,
				OverOdds:    v.OverOdds,
				UnderOdds:   v.UnderOdds,
			})
		case FlatRow:
			odds := v.Odds
			out.Rows = append(out.Rows, rowJSON{
				Kind:  RowKindFlat,
				Label: v.Label,
				Odds:  &odds,
			})
		default:
			return nil, fmt.Errorf("unknown row type %T", row)
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged form produced by MarshalJSON
func (r *ResultSet) UnmarshalJSON(data []byte) error {
	var in resultSetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	rows := make([]Row, 0, len(in.Rows))
	for i, row := range in.Rows {
		switch row.Kind {
		case RowKindPivot:
			var line decimal.Decimal
			if row.Line != nil {
				line = *row.Line
			}
			rows = append(rows, PivotRow{
				Participant: row.Participant,
				Line:        line,
				OverOdds:    row.OverOdds,
				UnderOdds:   row.UnderOdds,
			})
		case RowKindFlat:
			var odds int
			if row.Odds != nil {
				odds = *row.Odds
			}
			rows = append(rows, FlatRow{Label: row.Label, Odds: odds})
		default:
			return fmt.Errorf("row %d: unknown kind %q", i, row.Kind)
		}
	}

	r.ID = in.ID
	r.Query = in.Query
	r.Rows = rows
	r.SelectionCount = in.SelectionCount
	r.SkippedCount = in.SkippedCount
	r.FetchedAt = in.FetchedAt
	return nil
}
