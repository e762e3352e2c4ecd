package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// DB is the workspace database. Reads and writes of a tenant's state are
// single rows, so one handle serves every store in the registry.
type DB struct {
	*sql.DB
}

// Pragmas travel in the DSN so the driver applies them to every pooled
// connection, not just the first one.
var (
	sharedPragmas = []string{"busy_timeout(5000)"}
	filePragmas   = []string{"journal_mode(WAL)", "synchronous(NORMAL)"}
)

// New opens dsn. ":memory:" and shared-cache memory URIs are pinned to a
// single connection; file databases switch to WAL.
func New(dsn string) (*DB, error) {
	memory := isMemory(dsn)
	db, err := sql.Open("sqlite", withPragmas(dsn, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{db}, nil
}

func withPragmas(dsn string, memory bool) string {
	pragmas := sharedPragmas
	if !memory {
		pragmas = append(pragmas[:len(pragmas):len(pragmas)], filePragmas...)
	}
	q := make(url.Values)
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + q.Encode()
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// RunMigrations creates the schema. It is safe to run on every start.
func (db *DB) RunMigrations() error {
	migration := `
-- Serialized workspace state, one document per tenant and storage key
CREATE TABLE IF NOT EXISTS workspace_state (
    tenant_id TEXT NOT NULL,
    key TEXT NOT NULL,
    data BLOB NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (tenant_id, key)
);

-- Plain-text credentials (analysis API keys)
CREATE TABLE IF NOT EXISTS credentials (
    tenant_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (tenant_id, key)
);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    id TEXT PRIMARY KEY,
    key_hash TEXT NOT NULL UNIQUE,
    tenant_id TEXT NOT NULL,
    name TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tenant_keys ON api_keys(tenant_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
