// Package services contains the application services sitting between the
// HTTP layer and the repositories / blob store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"legacyvault/internal/common"
	"legacyvault/internal/server/blob"
	"legacyvault/internal/server/models"
	"legacyvault/internal/server/repositories/repomanager"
)

// Attachment is a file payload carried alongside an entry mutation.
type Attachment struct {
	Name string
	Data []byte
}

// EntryUpdates lists the writable entry fields for UpdateEntry. A nil field
// is left unchanged. Entry id, owner and creation time are deliberately not
// part of this set.
type EntryUpdates struct {
	Title       *string
	Description *string
	Category    *models.Category
}

// EntryService mediates entry reads and mutations. Lookups for update and
// delete filter on entry id and acting user in the same statement, so a
// record owned by someone else is indistinguishable from a missing one.
//
// Attachment writes are sequenced blob-first (upload before insert/update,
// delete before the row delete) and are not transactional with the row
// change: a crash in between can orphan a blob or leave a dangling file
// URL. No cleanup or retry is attempted.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
}

// NewEntryService wires the service to its injected dependencies.
func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager, blobs blob.Store) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: repomanager,
		blobs:       blobs,
	}
}

// storageKey namespaces attachment keys by owner and upload instant, so two
// uploads of the same file name cannot collide across users or in time.
func storageKey(userID, fileName string) string {
	return fmt.Sprintf("entries/%s/%d_%s", userID, time.Now().UnixMilli(), fileName)
}

// CreateEntry stores a new entry for userID, uploading the attachment first
// when one is supplied. Timestamps are set here; the id is assigned by the
// database and returned on the entry.
func (s *EntryService) CreateEntry(ctx context.Context, userID string, category models.Category, title, description string, file *Attachment) (*models.Entry, error) {
	if !category.Valid() {
		return nil, common.ErrInvalidCategory
	}

	var fileURL string
	if file != nil {
		key := storageKey(userID, file.Name)
		if err := s.blobs.Put(ctx, key, file.Data); err != nil {
			return nil, fmt.Errorf("uploading attachment: %w", err)
		}
		fileURL = s.blobs.URL(key)
	}

	now := time.Now().UTC()
	entry := &models.Entry{
		UserID:      userID,
		Category:    category,
		Title:       title,
		Description: description,
		FileURL:     fileURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entry, err := s.repomanager.Entries(s.db).Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	return entry, nil
}

// GetEntries returns all of userID's entries in category, most recent first.
func (s *EntryService) GetEntries(ctx context.Context, userID string, category models.Category) ([]*models.Entry, error) {
	if !category.Valid() {
		return nil, common.ErrInvalidCategory
	}

	result, err := s.repomanager.Entries(s.db).SelectByUserAndCategory(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return result, nil
}

// UpdateEntry applies updates (and optionally a replacement attachment) to
// an entry owned by userID and returns the merged entry. When a new file is
// supplied and the entry already references one, the old blob is deleted
// before the new one is uploaded.
func (s *EntryService) UpdateEntry(ctx context.Context, entryID, userID string, updates EntryUpdates, newFile *Attachment) (*models.Entry, error) {
	repo := s.repomanager.Entries(s.db)

	entry, err := repo.GetByIDAndUser(ctx, entryID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEntryNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("loading entry: %w", err)
	}

	if newFile != nil {
		if entry.FileURL != "" {
			if err := s.blobs.Delete(ctx, entry.FileURL); err != nil {
				return nil, fmt.Errorf("deleting old attachment: %w", err)
			}
		}
		key := storageKey(userID, newFile.Name)
		if err := s.blobs.Put(ctx, key, newFile.Data); err != nil {
			return nil, fmt.Errorf("uploading attachment: %w", err)
		}
		entry.FileURL = s.blobs.URL(key)
	}

	if updates.Title != nil {
		entry.Title = *updates.Title
	}
	if updates.Description != nil {
		entry.Description = *updates.Description
	}
	if updates.Category != nil {
		if !updates.Category.Valid() {
			return nil, common.ErrInvalidCategory
		}
		entry.Category = *updates.Category
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := repo.Update(ctx, entry); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The row vanished between the lookup and the write.
			return nil, common.ErrEntryNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("updating entry: %w", err)
	}

	return entry, nil
}

// DeleteEntry removes an entry owned by userID, deleting its attachment (if
// any) first. Deleting an already-deleted entry fails: the operation is not
// idempotent.
func (s *EntryService) DeleteEntry(ctx context.Context, entryID, userID string) error {
	repo := s.repomanager.Entries(s.db)

	entry, err := repo.GetByIDAndUser(ctx, entryID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrEntryNotFoundOrUnauthorized
		}
		return fmt.Errorf("loading entry: %w", err)
	}

	if entry.FileURL != "" {
		if err := s.blobs.Delete(ctx, entry.FileURL); err != nil {
			return fmt.Errorf("deleting attachment: %w", err)
		}
	}

	if err := repo.Delete(ctx, entryID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrEntryNotFoundOrUnauthorized
		}
		return fmt.Errorf("deleting entry: %w", err)
	}

	return nil
}
