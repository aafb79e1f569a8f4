//go:build !cgo_sqlite

package temple

import _ "modernc.org/sqlite" // pure-Go SQLite driver

const sqliteDriverName = "sqlite"
