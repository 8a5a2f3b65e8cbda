package models

// Selection is one wagering choice as extracted from the sportsbook feed.
// Label is the composed display text (e.g. "Dolphins Over 10.5"), Odds are American.
type Selection struct {
	ID        string `json:"id"`
	MarketID  string `json:"market_id"`
	OutcomeID string `json:"outcome_id,omitempty"` // links Over/Under siblings of one outcome
	Label     string `json:"label"`
	Odds      int    `json:"odds"`
}

// Query identifies one league/category/sub-category listing.
// SubcategoryID 0 selects every sub-category of the category.
type Query struct {
	LeagueID      int64 `json:"league_id"`
	CategoryID    int64 `json:"category_id"`
	SubcategoryID int64 `json:"subcategory_id"`
}

// Valid reports whether the identifiers can be sent upstream
func (q Query) Valid() bool {
	return q.LeagueID > 0 && q.CategoryID > 0 && q.SubcategoryID >= 0
}

// Batch is the selections extracted from one feed response
type Batch struct {
	Selections []Selection
	Skipped    int // dropped because their odds were unreadable
}
