package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Database table names
	TableSyncCursors = "sync_cursors"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
)
