package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
)

var idPattern = regexp.MustCompile(`ID: (\d+)`)

// ErrUnknownID is returned when an ID is not present in the reference
var ErrUnknownID = errors.New("id not found in reference")

// Category is one browsable category with its sub-categories
type Category struct {
	Name          string        `json:"name"`
	ID            int64         `json:"id,omitempty"` // zero when the name carries no ID
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory is a named sub-category entry
type Subcategory struct {
	Name string `json:"name"`
	ID   int64  `json:"id,omitempty"`
}

// Selection is the pair of input IDs a reference entry fills in
type Selection struct {
	CategoryID    int64 `json:"category_id"`
	SubcategoryID int64 `json:"subcategory_id"`
}

// fileCategory is the on-disk form
type fileCategory struct {
	CategoryName  string   `json:"category_name"`
	Subcategories []string `json:"subcategories"`
}

// Reference is the static ID reference used to populate fetch inputs
type Reference struct {
	LeagueID   int64
	Categories []Category
}

// Parse decodes a reference document
func Parse(r io.Reader) ([]Category, error) {
	var raw []fileCategory
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode reference: %w", err)
	}

	categories := make([]Category, 0, len(raw))
	for _, fc := range raw {
		cat := Category{
			Name:          fc.CategoryName,
			ID:            extractID(fc.CategoryName),
			Subcategories: make([]Subcategory, 0, len(fc.Subcategories)),
		}
		for _, name := range fc.Subcategories {
			cat.Subcategories = append(cat.Subcategories, Subcategory{Name: name, ID: extractID(name)})
		}
		categories = append(categories, cat)
	}

	return categories, nil
}

// Load reads the reference file. A missing or unreadable file yields an empty reference.
func Load(path string, leagueID int64, logger zerolog.Logger) *Reference {
	ref := &Reference{LeagueID: leagueID}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("reference file unavailable")
		return ref
	}
	defer f.Close()

	categories, err := Parse(f)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("reference file unreadable")
		return ref
	}

	ref.Categories = categories
	logger.Debug().Int("categories", len(categories)).Str("path", path).Msg("loaded reference")
	return ref
}

// Resolve maps a clicked ID to the inputs it fills. A category ID selects the whole
// category; a sub-category ID selects itself and its parent category.
func (r *Reference) Resolve(id int64) (Selection, error) {
	if id <= 0 {
		return Selection{}, ErrUnknownID
	}
	for _, cat := range r.Categories {
		if cat.ID == id {
			return Selection{CategoryID: cat.ID}, nil
		}
	}
	for _, cat := range r.Categories {
		if cat.ID == 0 {
			continue
		}
		for _, sub := range cat.Subcategories {
			if sub.ID == id {
				return Selection{CategoryID: cat.ID, SubcategoryID: sub.ID}, nil
			}
		}
	}
	return Selection{}, fmt.Errorf("%w: %d", ErrUnknownID, id)
}

// Render writes the browsable listing
func (r *Reference) Render(w io.Writer) error {
	header := "SPORTSBOOK CATEGORY REFERENCE\n=============================\n"
	if r.LeagueID > 0 {
		header += fmt.Sprintf("Default league ID: %d\n", r.LeagueID)
	}
	header += "-----------------------------\nPass any ID to `fetch --ref` to fill category and sub-category.\n"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	for _, cat := range r.Categories {
		if _, err := fmt.Fprintf(w, "\n%s\n", cat.Name); err != nil {
			return err
		}
		for _, sub := range cat.Subcategories {
			if _, err := fmt.Fprintf(w, "  - %s\n", sub.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractID(name string) int64 {
	m := idPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
