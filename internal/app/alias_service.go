package app

import (
	"context"
	"errors"
	"strings"

	"github.com/example/queuebot/internal/ports/primary"
	"github.com/example/queuebot/internal/ports/secondary"
)

var errEmptyAlias = errors.New("category id and alias are required")

// AliasServiceImpl implements the AliasService interface for one game.
type AliasServiceImpl struct {
	aliasRepo secondary.CategoryAliasRepository
	gameID    string
}

// NewAliasService creates a new AliasService with injected dependencies.
func NewAliasService(aliasRepo secondary.CategoryAliasRepository, gameID string) *AliasServiceImpl {
	return &AliasServiceImpl{aliasRepo: aliasRepo, gameID: gameID}
}

// ListAliases lists the aliases of the configured game.
func (s *AliasServiceImpl) ListAliases(ctx context.Context) ([]*primary.CategoryAlias, error) {
	records, err := s.aliasRepo.List(ctx, s.gameID)
	if err != nil {
		return nil, storeError("list aliases", "", err)
	}

	aliases := make([]*primary.CategoryAlias, len(records))
	for i, r := range records {
		aliases[i] = &primary.CategoryAlias{GameID: r.GameID, CategoryID: r.CategoryID, Alias: r.Alias}
	}
	return aliases, nil
}

// SetAlias creates or replaces a category alias.
func (s *AliasServiceImpl) SetAlias(ctx context.Context, categoryID, alias string) error {
	categoryID = strings.TrimSpace(categoryID)
	alias = strings.TrimSpace(alias)
	if categoryID == "" || alias == "" {
		return newBotError(KindValidation, "set alias", "", errEmptyAlias)
	}

	err := s.aliasRepo.Upsert(ctx, &secondary.CategoryAliasRecord{
		GameID:     s.gameID,
		CategoryID: categoryID,
		Alias:      alias,
	})
	return storeError("set alias", "", err)
}

// RemoveAlias deletes a category alias.
func (s *AliasServiceImpl) RemoveAlias(ctx context.Context, categoryID string) error {
	return storeError("remove alias", "", s.aliasRepo.Delete(ctx, s.gameID, categoryID))
}

// Ensure AliasServiceImpl implements the interface
var _ primary.AliasService = (*AliasServiceImpl)(nil)
