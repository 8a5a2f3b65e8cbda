package sportsbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

var regularSeasonSuffix = regexp.MustCompile(`\s+Regular Season.*$`)

// Extract composes a label for every selection of the feed. Selections whose market is not
// listed are dropped, and when subcategoryID is positive only markets of that sub-category
// are kept.
//
// Over/Under selections become "<subject> <side> <points>", where subject is the market name
// without its "Regular Season ..." tail. Finishing position markets become
// "<label> Finish <Nth>". Everything else is "<label> (<market name>)".
func Extract(doc *Document, subcategoryID int64) *models.Batch {
	markets := make(map[FlexID]Market, len(doc.Markets))
	for _, m := range doc.Markets {
		markets[m.ID] = m
	}

	wantSub := ""
	if subcategoryID > 0 {
		wantSub = strconv.FormatInt(subcategoryID, 10)
	}

	out := &models.Batch{Selections: make([]models.Selection, 0, len(doc.Selections))}
	for _, s := range doc.Selections {
		market, known := markets[s.MarketID]
		if !known || (wantSub != "" && string(market.SubcategoryID) != wantSub) {
			continue
		}

		odds, err := ParseAmerican(s.DisplayOdds.American)
		if err != nil {
			out.Skipped++
			continue
		}

		out.Selections = append(out.Selections, models.Selection{
			ID:        string(s.ID),
			MarketID:  string(s.MarketID),
			OutcomeID: outcomeID(s),
			Label:     composeLabel(s, market),
			Odds:      odds,
		})
	}

	return out
}

func composeLabel(s Selection, market Market) string {
	label := strings.TrimSpace(s.Label)

	if (strings.EqualFold(label, "Over") || strings.EqualFold(label, "Under")) && s.Points != nil && s.Points.Text != "" {
		subject := strings.TrimSpace(regularSeasonSuffix.ReplaceAllString(market.Name, ""))
		if subject == "" {
			subject = "N/A"
		}
		return fmt.Sprintf("%s %s %s", subject, label, s.Points.String())
	}

	if strings.Contains(market.Name, "Finishing Position") && s.Points != nil && s.Points.Numeric {
		return fmt.Sprintf("%s Finish %s", label, ordinal(s.Points.Value.IntPart()))
	}

	if market.Name == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, market.Name)
}

// outcomeID groups the two sides of one line under the market they belong to
func outcomeID(s Selection) string {
	if s.Points == nil || s.Points.Text == "" {
		return string(s.ID)
	}
	return string(s.MarketID) + ":" + s.Points.String()
}

func ordinal(n int64) string {
	suffix := "th"
	switch n {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	return strconv.FormatInt(n, 10) + suffix
}

// ParseAmerican reads a displayed American price such as "+150", "-170", "−170" or "EVEN"
func ParseAmerican(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "−", "-"))
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, fmt.Errorf("empty odds")
	}
	if strings.EqualFold(s, "even") {
		return 100, nil
	}
	odds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid american odds %q: %w", s, err)
	}
	return odds, nil
}
