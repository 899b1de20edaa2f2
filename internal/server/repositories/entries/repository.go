package entries

import (
	"context"

	"legacyvault/internal/server/models"
)

// Repository is the persistence contract for entries.
//
// GetByIDAndUser, Update and Delete all filter on entry id AND owner id in
// one statement, so an entry that exists but belongs to another user is
// indistinguishable from a missing one: both report common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Entry, error)
	SelectByUserAndCategory(ctx context.Context, userID string, category models.Category) ([]*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, id, userID string) error
}
