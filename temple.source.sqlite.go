package temple

// SQLiteSourceDriver opens SQLSource instances on SQLite. The pure-Go
// driver is linked by default; build with -tags cgo_sqlite for the cgo one.
type SQLiteSourceDriver struct{}

func init() {
	RegisterSourceDriver(SourceDriverSQLite, &SQLiteSourceDriver{})
}

// Open creates a SQLSource from a SQLite DSN, e.g. "file:templates.db".
func (d *SQLiteSourceDriver) Open(dsn string) (TemplateSource, error) {
	return NewSQLiteSource(dsn)
}

// NewSQLiteSource opens a SQLite database and migrates the schema.
func NewSQLiteSource(dsn string) (*SQLSource, error) {
	return NewSQLSource(SQLConfig{Driver: sqliteDriverName, DSN: dsn})
}
