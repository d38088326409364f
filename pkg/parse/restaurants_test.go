package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restaurants.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRestaurants_Basic(t *testing.T) {
	path := writeSeedFile(t, `[
		{"uuid": "11111111-2222-3333-4444-555555555555", "name": "Joe's Diner", "website": "https://joesdiner.example"},
		{"uuid": "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", "name": "Ada's Cafe"}
	]`)

	restaurants, err := LoadRestaurants(path, 0, 0)
	require.NoError(t, err)
	require.Len(t, restaurants, 2)

	joe := restaurants[0]
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", joe.UUID)
	assert.Equal(t, "Joe's Diner", joe.Name)
	assert.Equal(t, "joe-s-diner--11111111", joe.Slug)
	assert.Equal(t, "https://joesdiner.example", joe.Website)
	assert.True(t, joe.HasWebsite())

	ada := restaurants[1]
	assert.Equal(t, "ada-s-cafe--aaaaaaaa", ada.Slug)
	assert.False(t, ada.HasWebsite())
}

func TestLoadRestaurants_MissingUUIDIsStable(t *testing.T) {
	content := `[{"name": "No Id Bistro", "website": "https://noid.example"}]`

	first, err := LoadRestaurants(writeSeedFile(t, content), 0, 0)
	require.NoError(t, err)
	second, err := LoadRestaurants(writeSeedFile(t, content), 0, 0)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEmpty(t, first[0].UUID)
	// Same seed content must produce the same uuid and slug across runs,
	// otherwise resume would re-fetch under a fresh directory every time.
	assert.Equal(t, first[0].UUID, second[0].UUID)
	assert.Equal(t, first[0].Slug, second[0].Slug)
}

func TestLoadRestaurants_BlankNameFallsBack(t *testing.T) {
	path := writeSeedFile(t, `[{"uuid": "11111111-0000-0000-0000-000000000000", "name": "   "}]`)

	restaurants, err := LoadRestaurants(path, 0, 0)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "restaurant", restaurants[0].Name)
	assert.Equal(t, "restaurant--11111111", restaurants[0].Slug)
}

func TestLoadRestaurants_OffsetAndLimit(t *testing.T) {
	path := writeSeedFile(t, `[
		{"uuid": "00000000-0000-0000-0000-000000000001", "name": "One"},
		{"uuid": "00000000-0000-0000-0000-000000000002", "name": "Two"},
		{"uuid": "00000000-0000-0000-0000-000000000003", "name": "Three"},
		{"uuid": "00000000-0000-0000-0000-000000000004", "name": "Four"}
	]`)

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantNames []string
	}{
		{"NoSlice", 0, 0, []string{"One", "Two", "Three", "Four"}},
		{"OffsetOnly", 2, 0, []string{"Three", "Four"}},
		{"LimitOnly", 0, 2, []string{"One", "Two"}},
		{"OffsetAndLimit", 1, 2, []string{"Two", "Three"}},
		{"OffsetPastEnd", 10, 0, nil},
		{"LimitPastEnd", 2, 10, []string{"Three", "Four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restaurants, err := LoadRestaurants(path, tt.offset, tt.limit)
			require.NoError(t, err)

			var names []string
			for _, r := range restaurants {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestLoadRestaurants_UnreadablePath(t *testing.T) {
	_, err := LoadRestaurants(filepath.Join(t.TempDir(), "missing.json"), 0, 0)
	assert.Error(t, err)
}

func TestLoadRestaurants_MalformedJSON(t *testing.T) {
	path := writeSeedFile(t, `{"not": "an array"}`)
	_, err := LoadRestaurants(path, 0, 0)
	assert.Error(t, err)
}

func TestUniqueSlug(t *testing.T) {
	tests := []struct {
		name     string
		seedName string
		id       string
		expected string
	}{
		{"Normal", "Joe's Diner", "11111111-2222", "joe-s-diner--11111111"},
		{"ShortID", "Joe's", "abc", "joe-s--abc"},
		{"EmptyID", "Joe's", "", "joe-s"},
		{"EmptyName", "", "11111111-2222", "restaurant--11111111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UniqueSlug(tt.seedName, tt.id))
		})
	}
}

func TestNewSeed(t *testing.T) {
	seed := NewSeed("Luna's Tacos", "https://lunastacos.example")

	assert.Equal(t, "Luna's Tacos", seed.Name)
	assert.Equal(t, "https://lunastacos.example", seed.Website)
	assert.NotEmpty(t, seed.UUID)
	assert.Equal(t, "luna-s-tacos--"+seed.UUID[:8], seed.Slug)

	// The uuid is derived from name+website, so re-resolving the same
	// place produces an identical seed.
	assert.Equal(t, seed, NewSeed("Luna's Tacos", "https://lunastacos.example"))
	assert.NotEqual(t, seed.UUID, NewSeed("Luna's Tacos", "https://other.example").UUID)
}

func TestNewSeed_NoWebsite(t *testing.T) {
	seed := NewSeed("Closed Forever", "")
	assert.False(t, seed.HasWebsite())
	assert.NotEmpty(t, seed.UUID)
}
