// Package mysql provides a MySQL 8.0.19+ durable store for statementq.
//
// Rows are keyed by (namespace, id) so several controllers can share one table.
// Writes are upserts (INSERT ... AS new ON DUPLICATE KEY UPDATE); List orders rows by
// last_attempt_at, then id. PutTx lets callers persist a record inside their own
// transaction.
//
// See Schema (JSON payloads) or SchemaBinary (raw bytes), and PurgeMaintainer for
// out-of-process removal of exhausted or expired rows.
package mysql
