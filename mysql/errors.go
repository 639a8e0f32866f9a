package mysql

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("statementq mysql: db is required")
	// ErrExecutorRequired is returned when PutTx is called with a nil executor.
	ErrExecutorRequired = errors.New("statementq mysql: executor is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("statementq mysql: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("statementq mysql: invalid table name")
	// ErrNamespaceTooLong is returned when the namespace does not fit the column.
	ErrNamespaceTooLong = errors.New("statementq mysql: namespace exceeds 64 characters")
	// ErrRecordIDRequired is returned when a record without id is written.
	ErrRecordIDRequired = errors.New("statementq mysql: record id is required")
	// ErrPurgeCriteriaRequired is returned when a purge has neither an attempt limit nor a cutoff.
	ErrPurgeCriteriaRequired = errors.New("statementq mysql: purge needs max attempts or a cutoff")
	// ErrPurgeLimitInvalid is returned when the purge limit is negative.
	ErrPurgeLimitInvalid = errors.New("statementq mysql: purge limit must be non-negative")
)
