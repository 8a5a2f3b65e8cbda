package models

import (
	"github.com/shopspring/decimal"
)

// RowKind tags the variant of a parsed row
type RowKind string

const (
	RowKindPivot RowKind = "pivot"
	RowKindFlat  RowKind = "flat"
)

// Row is a parsed output row. It is either a PivotRow or a FlatRow.
type Row interface {
	Kind() RowKind
}

// PivotRow combines the Over and Under selections of one participant and line.
// A nil side means the feed carried no selection for it.
type PivotRow struct {
	Participant string
	Line        decimal.Decimal
	OverOdds    *int
	UnderOdds   *int
}

// Kind implements Row
func (PivotRow) Kind() RowKind { return RowKindPivot }

// FlatRow is a selection whose label did not match the Over/Under shape
type FlatRow struct {
	Label string
	Odds  int
}

// Kind implements Row
func (FlatRow) Kind() RowKind { return RowKindFlat }
