package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/queuebot/internal/ports/secondary"
)

func TestCategoryNamer_CategoryName(t *testing.T) {
	aliases := []*secondary.CategoryAliasRecord{{GameID: "alttp", CategoryID: "mg", Alias: "MG"}}
	namer := NewCategoryNamer(alttpCategories(), aliases)

	tests := []struct {
		name       string
		categoryID string
		values     map[string]string
		want       string
	}{
		{name: "subcategory prefix", categoryID: "nmg", values: map[string]string{"sub": "any", "platform": "snes"}, want: "Any% No Major Glitches"},
		{name: "other subcategory", categoryID: "nmg", values: map[string]string{"sub": "hundo"}, want: "100% No Major Glitches"},
		{name: "subcategory unset", categoryID: "nmg", values: map[string]string{"platform": "snes"}, want: "No Major Glitches"},
		{name: "unknown subcategory value", categoryID: "nmg", values: map[string]string{"sub": "zzz"}, want: "No Major Glitches"},
		{name: "alias replaces name", categoryID: "mg", want: "MG"},
		{name: "unknown category", categoryID: "nope", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, namer.CategoryName(tt.categoryID, tt.values))
		})
	}
}

func TestCategoryNamer_Nil(t *testing.T) {
	var namer *CategoryNamer
	assert.Empty(t, namer.CategoryName("nmg", nil))
}

func TestCategoryCatalog_LoadsOnceWithinRefresh(t *testing.T) {
	source := newMockSource()
	source.categories = alttpCategories()
	aliases := newMockAliasRepository()
	require.NoError(t, aliases.Upsert(context.Background(), &secondary.CategoryAliasRecord{GameID: "alttp", CategoryID: "nmg", Alias: "NMG"}))

	catalog := NewCategoryCatalog(source, aliases, "alttp", time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	catalog.now = func() time.Time { return now }

	namer := catalog.Namer(context.Background())
	assert.Equal(t, "Any% NMG", namer.CategoryName("nmg", map[string]string{"sub": "any"}))

	now = now.Add(30 * time.Minute)
	catalog.Namer(context.Background())
	assert.Equal(t, 1, source.catCalls)

	now = now.Add(31 * time.Minute)
	catalog.Namer(context.Background())
	assert.Equal(t, 2, source.catCalls)
}

func TestCategoryCatalog_FailedReloadKeepsPrevious(t *testing.T) {
	source := newMockSource()
	source.categories = alttpCategories()
	catalog := NewCategoryCatalog(source, newMockAliasRepository(), "alttp", time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	catalog.now = func() time.Time { return now }

	require.NoError(t, catalog.Load(context.Background()))

	source.catErr = errors.New("list categories: HTTP 503")
	now = now.Add(time.Hour)
	namer := catalog.Namer(context.Background())
	assert.Equal(t, "Major Glitches", namer.CategoryName("mg", nil))
}

func TestCategoryCatalog_LoadFailures(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		source := newMockSource()
		source.catErr = errors.New("HTTP 503")
		catalog := NewCategoryCatalog(source, newMockAliasRepository(), "alttp", time.Hour)

		err := catalog.Load(context.Background())
		assert.True(t, IsKind(err, KindSource))
		assert.Nil(t, catalog.Namer(context.Background()))
	})

	t.Run("aliases", func(t *testing.T) {
		aliases := newMockAliasRepository()
		aliases.listErr = errors.New("no such table: category_aliases")
		catalog := NewCategoryCatalog(newMockSource(), aliases, "alttp", time.Hour)

		err := catalog.Load(context.Background())
		assert.True(t, IsKind(err, KindStore))
	})
}
