package constants

const (
	AppName           = "scorecard"
	DefaultConfigPath = "~/.config/scorecard/scorecard.db"
	Version           = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Storage blob keys. The catalog and the day/week store are persisted as two
	// independent records so a corrupt one never takes the other down with it.
	CatalogBlobKey = "store.metric_definitions"
	StoreBlobKey   = "store.scorecard"

	// CatalogVersion is the internal representation version of the persisted
	// metric-definition catalog.
	CatalogVersion = 1

	// SchemaFamily tags every exchange payload this tool reads or writes.
	SchemaFamily = "accountability_scorecard"

	ScopeDay  = "day"
	ScopeWeek = "week"
	ScopeAll  = "all"

	// Highest payload version this build understands per scope. Anything newer
	// is rejected outright: field meanings may have changed and a best-effort
	// parse could silently corrupt local data.
	MaxDayVersion  = 3
	MaxWeekVersion = 3
	MaxAllVersion  = 3

	// Oldest version per scope that still goes through the legacy field-path
	// mapping instead of a direct decode.
	LegacyDayVersion  = 2
	LegacyWeekVersion = 2
	LegacyAllVersion  = 2

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "scorecard-"
)
