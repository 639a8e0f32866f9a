package mysql

import "fmt"

type queries struct {
	upsert string
	get    string
	remove string
	list   string
	count  string
}

func newQueries(table string) queries {
	cols := "id, kind, payload, attempts, last_attempt_at"

	return queries{
		upsert: fmt.Sprintf(
			"INSERT INTO %s (namespace, id, kind, payload, attempts, last_attempt_at) VALUES (?, ?, ?, ?, ?, ?) AS new "+
				"ON DUPLICATE KEY UPDATE kind = new.kind, payload = new.payload, attempts = new.attempts, last_attempt_at = new.last_attempt_at",
			table,
		),
		get:    fmt.Sprintf("SELECT %s FROM %s WHERE namespace = ? AND id = ?", cols, table),
		remove: fmt.Sprintf("DELETE FROM %s WHERE namespace = ? AND id = ?", table),
		list:   fmt.Sprintf("SELECT %s FROM %s WHERE namespace = ? ORDER BY last_attempt_at ASC, id ASC", cols, table),
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE namespace = ?", table),
	}
}
