package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the record changed between the read and the conditional commit, so
	// another writer won the race. Errors wrapping it also match
	// [kv.ErrConflict].
	ErrVersionConflict = errors.New("record version conflict occurred")

	// ErrEmailAlreadyTaken is returned when a user write would point the
	// email index at a second user.
	ErrEmailAlreadyTaken = errors.New("email already belongs to another user")

	// ErrUnsupportedEngine is returned by [NewEngine] for an unknown
	// engine name.
	ErrUnsupportedEngine = errors.New("unsupported storage engine")
)

// Low-level storage operation errors. These are returned (or wrapped) when
// an engine operation fails before any domain logic can be applied.
var (
	// ErrReadingRecord is returned when a point read or a scan fails.
	ErrReadingRecord = errors.New("error reading record")

	// ErrDecodingRecord is returned when a stored value cannot be decoded
	// into its model.
	ErrDecodingRecord = errors.New("error decoding record")

	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrBeginningTransaction is returned when the engine cannot start a new
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an atomic batch
	// fails. Nothing of the batch was applied.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan kv row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan kv rows")

	// ErrMigratingSchema is returned when the SQL engine cannot install its
	// schema.
	ErrMigratingSchema = errors.New("failed to migrate schema")
)
