package mysql

import "fmt"

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	namespace VARCHAR(64) NOT NULL,
	id VARCHAR(64) NOT NULL,
	kind VARCHAR(255) NOT NULL DEFAULT '',
	payload %s NOT NULL,
	attempts INT NOT NULL DEFAULT 0,
	last_attempt_at TIMESTAMP(6) NOT NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
	PRIMARY KEY (namespace, id),
	INDEX idx_namespace_last_attempt (namespace, last_attempt_at),
	INDEX idx_namespace_attempts (namespace, attempts)
);`

const (
	payloadJSON   = "JSON"
	payloadBinary = "LONGBLOB"
)

// Schema returns the records table schema with a JSON payload column.
// Payloads must then be valid JSON, which the Controller enforces by default.
func Schema(table string) (string, error) {
	return buildSchema(table, payloadJSON)
}

// SchemaBinary returns the records table schema with a LONGBLOB payload column.
func SchemaBinary(table string) (string, error) {
	return buildSchema(table, payloadBinary)
}

func buildSchema(table, payloadType string) (string, error) {
	name, err := parseTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name.ident, payloadType), nil
}
