package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/secondary"
)

// CategoryNamer renders display names for a game's categories.
type CategoryNamer struct {
	categories map[string]*secondary.Category
	aliases    map[string]string
}

// NewCategoryNamer indexes categories and their aliases by category ID.
func NewCategoryNamer(categories []*secondary.Category, aliases []*secondary.CategoryAliasRecord) *CategoryNamer {
	n := &CategoryNamer{
		categories: make(map[string]*secondary.Category, len(categories)),
		aliases:    make(map[string]string, len(aliases)),
	}
	for _, c := range categories {
		n.categories[c.ID] = c
	}
	for _, a := range aliases {
		n.aliases[a.CategoryID] = a.Alias
	}
	return n
}

// CategoryName returns the display name for a run in categoryID with the
// given variable values, or "" when the category is unknown.
// A subcategory label is placed before the category name, so a run in
// "No Major Glitches" with subcategory "Any%" reads "Any% No Major Glitches".
func (n *CategoryNamer) CategoryName(categoryID string, values map[string]string) string {
	if n == nil {
		return ""
	}
	cat, ok := n.categories[categoryID]
	if !ok {
		return ""
	}

	name := cat.Name
	if alias, ok := n.aliases[cat.ID]; ok && alias != "" {
		name = alias
	}

	if sub := subcategoryLabel(cat, values); sub != "" {
		return sub + " " + name
	}
	return name
}

// subcategoryLabel returns the label of the first subcategory variable's
// value, or "" if the run does not set it.
func subcategoryLabel(cat *secondary.Category, values map[string]string) string {
	for _, v := range cat.Variables {
		if !v.IsSubcategory {
			continue
		}
		valueID, ok := values[v.ID]
		if !ok {
			return ""
		}
		return v.Values[valueID]
	}
	return ""
}

// CategoryCatalog loads and caches the CategoryNamer for one game.
// A failed load keeps the previous namer; with none, titles fall back to
// the unknown-category placeholder.
type CategoryCatalog struct {
	source  secondary.SubmissionSource
	aliases secondary.CategoryAliasRepository
	gameID  string
	refresh time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	namer    *CategoryNamer
	loadedAt time.Time
}

// NewCategoryCatalog creates a catalog that reloads after refresh has elapsed.
func NewCategoryCatalog(source secondary.SubmissionSource, aliases secondary.CategoryAliasRepository, gameID string, refresh time.Duration) *CategoryCatalog {
	return &CategoryCatalog{
		source:  source,
		aliases: aliases,
		gameID:  gameID,
		refresh: refresh,
		now:     time.Now,
		logger:  logging.New("categories"),
	}
}

// Load fetches categories and aliases concurrently and replaces the namer.
func (c *CategoryCatalog) Load(ctx context.Context) error {
	var (
		categories []*secondary.Category
		aliases    []*secondary.CategoryAliasRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.source.ListCategories(gctx)
		if err != nil {
			return newBotError(KindSource, "list categories", "", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		aliases, err = c.aliases.List(gctx, c.gameID)
		if err != nil {
			return storeError("list category aliases", "", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	namer := NewCategoryNamer(categories, aliases)

	c.mu.Lock()
	c.namer = namer
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "categories loaded", "game_id", c.gameID,
		"categories", len(categories), "aliases", len(aliases))
	return nil
}

// Namer returns the current namer, reloading it first when it is missing
// or older than the refresh interval.
func (c *CategoryCatalog) Namer(ctx context.Context) *CategoryNamer {
	c.mu.Lock()
	stale := c.namer == nil || (c.refresh > 0 && c.now().Sub(c.loadedAt) > c.refresh)
	c.mu.Unlock()

	if stale {
		if err := c.Load(ctx); err != nil {
			c.logger.WarnContext(ctx, "category reload failed", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.namer
}
