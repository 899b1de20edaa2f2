package repomanager

import (
	"context"
	"database/sql"

	"legacyvault/internal/dbx"
	"legacyvault/internal/server/repositories/entries"
	"legacyvault/internal/server/repositories/refreshtokens"
	"legacyvault/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook. Services hold a manager plus a *sql.DB
// and pick the handle per call, so a transactional DBTX can be substituted
// inside dbx.WithTx blocks.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
}
