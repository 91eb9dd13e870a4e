package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schema string

// The FTS index is applied separately and best-effort: sqlite builds
// without FTS5 fail here, and the search layer falls back to LIKE
// matching when the virtual table is missing.
const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS games_fts USING fts5(
  name, summary,
  content='games', content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS games_fts_ai AFTER INSERT ON games BEGIN
  INSERT INTO games_fts(rowid, name, summary)
  VALUES (new.id, new.name, new.summary);
END;

CREATE TRIGGER IF NOT EXISTS games_fts_ad AFTER DELETE ON games BEGIN
  INSERT INTO games_fts(games_fts, rowid, name, summary)
  VALUES ('delete', old.id, old.name, old.summary);
END;

CREATE TRIGGER IF NOT EXISTS games_fts_au AFTER UPDATE ON games BEGIN
  INSERT INTO games_fts(games_fts, rowid, name, summary)
  VALUES ('delete', old.id, old.name, old.summary);
  INSERT INTO games_fts(rowid, name, summary)
  VALUES (new.id, new.name, new.summary);
END;
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if _, err := db.Exec(ftsSchema); err != nil {
		log.Printf("[database] fts index unavailable, search will use substring matching: %v", err)
	}
	return nil
}
