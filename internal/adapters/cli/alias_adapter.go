package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/example/queuebot/internal/ports/primary"
)

// AliasAdapter translates CLI operations to AliasService calls.
type AliasAdapter struct {
	service primary.AliasService
	out     io.Writer
}

// NewAliasAdapter creates a new AliasAdapter with the given service.
func NewAliasAdapter(service primary.AliasService, out io.Writer) *AliasAdapter {
	return &AliasAdapter{service: service, out: out}
}

// List prints the category aliases of the configured game.
func (a *AliasAdapter) List(ctx context.Context) error {
	aliases, err := a.service.ListAliases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list aliases: %w", err)
	}

	if len(aliases) == 0 {
		fmt.Fprintln(a.out, "No aliases found")
		return nil
	}

	t := newTable(a.out)
	t.AppendHeader(table.Row{"GAME", "CATEGORY", "ALIAS"})
	for _, al := range aliases {
		t.AppendRow(table.Row{al.GameID, al.CategoryID, al.Alias})
	}
	t.Render()
	return nil
}

// Set creates or replaces an alias.
func (a *AliasAdapter) Set(ctx context.Context, categoryID, alias string) error {
	if err := a.service.SetAlias(ctx, categoryID, alias); err != nil {
		return fmt.Errorf("failed to set alias: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Category %s is now shown as %q\n", categoryID, alias)
	return nil
}

// Remove deletes an alias.
func (a *AliasAdapter) Remove(ctx context.Context, categoryID string) error {
	if err := a.service.RemoveAlias(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to remove alias: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Alias for category %s removed\n", categoryID)
	return nil
}
