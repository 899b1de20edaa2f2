package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"legacyvault/internal/common"
	"legacyvault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var entryColumns = []string{"id", "user_id", "category", "title", "description", "file_url", "created_at", "updated_at"}

func TestCreate_ReturnsAssignedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO entries .* RETURNING id`).
		WithArgs("u1", models.CategoryLegal, "Will", "Draft", sql.NullString{}, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("e1"))

	entry, err := repo.Create(context.Background(), &models.Entry{
		UserID:      "u1",
		Category:    models.CategoryLegal,
		Title:       "Will",
		Description: "Draft",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "e1" {
		t.Fatalf("expected id e1, got %q", entry.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_WithFileURL(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	url := "http://blobs/vault/entries/u1/1_will.pdf"

	mock.ExpectQuery(`INSERT INTO entries .* RETURNING id`).
		WithArgs("u1", models.CategoryLegal, "Will", "", sql.NullString{String: url, Valid: true}, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("e2"))

	entry, err := repo.Create(context.Background(), &models.Entry{
		UserID:    "u1",
		Category:  models.CategoryLegal,
		Title:     "Will",
		FileURL:   url,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.FileURL != url {
		t.Fatalf("file url lost: %q", entry.FileURL)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO entries`).
		WillReturnError(errors.New("db is down"))

	_, err := repo.Create(context.Background(), &models.Entry{UserID: "u1", Category: models.CategoryLegal})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByIDAndUser_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().Add(-time.Hour)
	updated := time.Now()

	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("e1", "u1").
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("e1", "u1", "legal", "Will", "Draft", nil, created, updated))

	entry, err := repo.GetByIDAndUser(context.Background(), "e1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "e1" || entry.UserID != "u1" || entry.Category != models.CategoryLegal {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.FileURL != "" {
		t.Fatalf("expected empty file url for NULL column, got %q", entry.FileURL)
	}
}

func TestGetByIDAndUser_WrongUserIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("e1", "u2").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err := repo.GetByIDAndUser(context.Background(), "e1", "u2")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestSelectByUserAndCategory_OrderedByCreatedAtDesc(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newer := time.Now()
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE user_id = \$1 AND category = \$2\s+ORDER BY created_at DESC`).
		WithArgs("u1", models.CategoryLegal).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("e2", "u1", "legal", "Trust", "", "http://blobs/x", newer, newer).
			AddRow("e1", "u1", "legal", "Will", "Draft", nil, older, older))

	result, err := repo.SelectByUserAndCategory(context.Background(), "u1", models.CategoryLegal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if result[0].ID != "e2" || result[1].ID != "e1" {
		t.Fatalf("unexpected order: %s, %s", result[0].ID, result[1].ID)
	}
	if result[0].FileURL != "http://blobs/x" {
		t.Fatalf("file url not scanned: %q", result[0].FileURL)
	}
}

func TestSelectByUserAndCategory_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM entries`).
		WithArgs("u1", models.CategoryWishes).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	result, err := repo.SelectByUserAndCategory(context.Background(), "u1", models.CategoryWishes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected no entries, got %d", len(result))
	}
}

func TestUpdate_SuccessRowsAffected1(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectExec(`UPDATE entries\s+SET category = \$1, title = \$2, description = \$3, file_url = \$4, updated_at = \$5\s+WHERE id = \$6 AND user_id = \$7`).
		WithArgs(models.CategoryDigital, "Accounts", "All logins", sql.NullString{}, now, "e1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Entry{
		ID:          "e1",
		UserID:      "u1",
		Category:    models.CategoryDigital,
		Title:       "Accounts",
		Description: "All logins",
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_NotOwnedRowsAffected0(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE entries`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Entry{ID: "e1", UserID: "u2", Category: models.CategoryLegal})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM entries\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("e1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "e1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_NotOwned(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs("e1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "e1", "u2")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
