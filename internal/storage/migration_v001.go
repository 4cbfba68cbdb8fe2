package storage

import "database/sql"

// migrateV001 creates the documents table. Statements use IF NOT EXISTS so a
// database created by an earlier build of the tool is adopted as-is.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			title    TEXT,
			content  TEXT,
			url      TEXT,
			keywords TEXT,
			date     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
