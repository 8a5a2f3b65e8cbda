package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResultSet_Shape(t *testing.T) {
	pivot := PivotRow{Participant: "Dolphins", Line: decimal.RequireFromString("10.5"), OverOdds: intPtr(150)}
	flat := FlatRow{Label: "Chiefs", Odds: 550}

	tests := []struct {
		name string
		rows []Row
		want Shape
	}{
		{"empty", nil, ShapeFlat},
		{"pivot only", []Row{pivot}, ShapePivot},
		{"flat only", []Row{flat}, ShapeFlat},
		{"both", []Row{flat, pivot}, ShapeMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &ResultSet{Rows: tt.rows}
			assert.Equal(t, tt.want, rs.Shape())
		})
	}
}

func TestResultSet_JSONKeepsRowVariants(t *testing.T) {
	rs := ResultSet{
		ID:    uuid.New(),
		Query: Query{LeagueID: 88808, CategoryID: 1286, SubcategoryID: 13365},
		Rows: []Row{
			PivotRow{Participant: "Dolphins", Line: decimal.RequireFromString("10.5"), OverOdds: intPtr(150)},
			FlatRow{Label: "Chiefs", Odds: -120},
		},
		SelectionCount: 2,
		SkippedCount:   1,
		FetchedAt:      time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"pivot"`)
	assert.NotContains(t, string(data), "under_odds")

	var decoded ResultSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, rs.ID, decoded.ID)
	assert.Equal(t, rs.Query, decoded.Query)
	assert.Equal(t, 1, decoded.SkippedCount)
	require.Len(t, decoded.Rows, 2)

	p, ok := decoded.Rows[0].(PivotRow)
	require.True(t, ok)
	assert.Equal(t, "Dolphins", p.Participant)
	assert.True(t, p.Line.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, 150, *p.OverOdds)
	assert.Nil(t, p.UnderOdds)

	assert.Equal(t, FlatRow{Label: "Chiefs", Odds: -120}, decoded.Rows[1])
}

func TestResultSet_UnmarshalUnknownKind(t *testing.T) {
	var rs ResultSet
	err := json.Unmarshal([]byte(`{"rows":[{"kind":"triple"}]}`), &rs)
	assert.Error(t, err)
}

func TestQuery_Valid(t *testing.T) {
	assert.True(t, Query{LeagueID: 1, CategoryID: 2}.Valid())
	assert.True(t, Query{LeagueID: 1, CategoryID: 2, SubcategoryID: 3}.Valid())
	assert.False(t, Query{CategoryID: 2}.Valid())
	assert.False(t, Query{LeagueID: 1}.Valid())
	assert.False(t, Query{LeagueID: 1, CategoryID: 2, SubcategoryID: -1}.Valid())
}
