package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronov/accountd/internal/dbx"
	"github.com/avoronov/accountd/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX (either
// a live connection or a transaction) and exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
