package sqlstorage

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

const createSchemaVersion = `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`

// Versions in every dialect must be sequential starting from 1.
var migrations = map[string][]migration{
	DriverSQLite: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	color       TEXT NOT NULL DEFAULT '#1976d2',
	created_at  TEXT NOT NULL,
	CHECK (end_date > start_date)
);

CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
CREATE INDEX IF NOT EXISTS idx_events_end_date ON events(end_date);
`,
		},
	},
	DriverPostgres: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS events (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	color       TEXT NOT NULL DEFAULT '#1976d2',
	created_at  TEXT NOT NULL,
	CONSTRAINT events_dates_check CHECK (end_date > start_date)
);

CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
CREATE INDEX IF NOT EXISTS idx_events_end_date ON events(end_date);
`,
		},
	},
}
