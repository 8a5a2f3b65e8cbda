package sportsbook

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// Document is the subset of the category feed the explorer reads
type Document struct {
	Markets    []Market    `json:"markets"`
	Selections []Selection `json:"selections"`
}

// Market is a named betting opportunity grouping selections
type Market struct {
	ID            FlexID `json:"id"`
	Name          string `json:"name"`
	SubcategoryID FlexID `json:"subcategoryId"`
}

// Selection is one wagering choice inside a market
type Selection struct {
	ID          FlexID      `json:"id"`
	MarketID    FlexID      `json:"marketId"`
	OutcomeType string      `json:"outcomeType"`
	Label       string      `json:"label"`
	Points      *Points     `json:"points"`
	DisplayOdds DisplayOdds `json:"displayOdds"`
}

// DisplayOdds carries the formatted prices shown on the site
type DisplayOdds struct {
	American string `json:"american"`
	Decimal  string `json:"decimal"`
}

// FlexID accepts identifiers encoded either as JSON strings or numbers
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// Points is the line attached to a selection. Text keeps the feed's spelling so "10.0" stays
// "10.0"; Value is only meaningful when Numeric is true.
type Points struct {
	Text    string
	Value   decimal.Decimal
	Numeric bool
}

// NewPoints parses a line as the feed would spell it
func NewPoints(text string) *Points {
	p := &Points{Text: strings.TrimSpace(text)}
	if v, err := decimal.NewFromString(p.Text); err == nil {
		p.Value, p.Numeric = v, true
	}
	return p
}

// UnmarshalJSON implements json.Unmarshaler. Non-numeric values are kept as text.
func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	*p = *NewPoints(text)
	return nil
}

// String renders numeric points with the decimal places they were written with
func (p Points) String() string {
	if p.Numeric {
		return pivot.FormatLine(p.Value)
	}
	return p.Text
}

// documentJSON distinguishes a missing selections array from an empty one
type documentJSON struct {
	Markets    []Market     `json:"markets"`
	Selections *[]Selection `json:"selections"`
}
