package history

import (
	"database/sql"
)

func buildCreateResultsTable() string {
	return `CREATE TABLE IF NOT EXISTS results_cache (
		season INTEGER NOT NULL,
		kind TEXT NOT NULL,
		entity TEXT NOT NULL,
		payload TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (season, kind, entity));`
}

func buildSelectEntryCommand(key Key) (string, []any, func(*sql.Rows) (string, bool, error)) {
	query := `SELECT payload FROM results_cache WHERE season = ? AND kind = ? AND entity = ?`
	return query, []any{key.Season, string(key.Kind), key.ID}, processSelectEntryRows
}

func processSelectEntryRows(rows *sql.Rows) (string, bool, error) {
	defer rows.Close()

	// primary key, at most one row
	if rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return "", false, err
		}
		return payload, true, nil
	}
	return "", false, rows.Err()
}

// entries are immutable, the first write wins
func buildInsertEntryCommand(key Key, payload, fetchedAt string) (string, []any) {
	query := `INSERT OR IGNORE INTO results_cache (season, kind, entity, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`
	return query, []any{key.Season, string(key.Kind), key.ID, payload, fetchedAt}
}

func buildCountEntriesCommand() (string, func(*sql.Rows) (int, error)) {
	return `SELECT COUNT(*) FROM results_cache`, processCountRows
}

func processCountRows(rows *sql.Rows) (int, error) {
	defer rows.Close()

	n := 0
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
