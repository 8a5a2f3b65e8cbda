package reference

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReference = `[
  {"category_name": "Team Futures (ID: 1286)", "subcategories": ["Regular Season Wins (ID: 13365)", "Division Winner (ID: 13366)"]},
  {"category_name": "Awards (ID: 1480)", "subcategories": ["MVP (ID: 13339)", "Coach of the Year"]},
  {"category_name": "Misc", "subcategories": ["Orphan (ID: 999)"]}
]`

func writeReference(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "id_reference.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_ExtractsIDs(t *testing.T) {
	categories, err := Parse(strings.NewReader(sampleReference))

	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, int64(1286), categories[0].ID)
	assert.Equal(t, int64(13365), categories[0].Subcategories[0].ID)
	assert.Equal(t, int64(0), categories[1].Subcategories[1].ID)
	assert.Equal(t, int64(0), categories[2].ID)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	ref := Load(filepath.Join(t.TempDir(), "missing.json"), 88808, zerolog.Nop())

	require.NotNil(t, ref)
	assert.Empty(t, ref.Categories)
	assert.Equal(t, int64(88808), ref.LeagueID)
}

func TestLoad_File(t *testing.T) {
	ref := Load(writeReference(t, sampleReference), 88808, zerolog.Nop())

	assert.Len(t, ref.Categories, 3)
}

func TestResolve(t *testing.T) {
	ref := Load(writeReference(t, sampleReference), 88808, zerolog.Nop())

	sel, err := ref.Resolve(1286)
	require.NoError(t, err)
	assert.Equal(t, Selection{CategoryID: 1286}, sel)

	sel, err = ref.Resolve(13339)
	require.NoError(t, err)
	assert.Equal(t, Selection{CategoryID: 1480, SubcategoryID: 13339}, sel)

	// sub-categories of a category without an ID cannot fill the inputs
	_, err = ref.Resolve(999)
	assert.True(t, errors.Is(err, ErrUnknownID))

	_, err = ref.Resolve(42)
	assert.True(t, errors.Is(err, ErrUnknownID))
}

func TestRender(t *testing.T) {
	ref := Load(writeReference(t, sampleReference), 88808, zerolog.Nop())

	var buf bytes.Buffer
	require.NoError(t, ref.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Default league ID: 88808")
	assert.Contains(t, out, "\nTeam Futures (ID: 1286)\n")
	assert.Contains(t, out, "  - MVP (ID: 13339)\n")
}
