// Package sqlite opens SQLite databases with whichever driver the build
// selected:
//
//   - default: pure Go modernc.org/sqlite, driver name "sqlite"
//   - -tags cgo_sqlite: mattn/go-sqlite3 via contrib/sqlite-external,
//     driver name "sqlite3"
//
// Callers should use Open rather than sql.Open so they never hard-code a
// driver name.
package sqlite

import (
	"database/sql"
	"strings"
)

// Memory is the data source name of a private in-memory database.
const Memory = ":memory:"

// DriverName returns the registered database/sql driver name.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo".
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO driver is compiled in.
func IsCGO() bool {
	return driverType == "cgo"
}

// IsMemory reports whether dsn names an in-memory database. Every
// connection to such a database sees its own copy, so pools over it must be
// limited to one connection.
func IsMemory(dsn string) bool {
	return dsn == Memory || strings.Contains(dsn, "mode=memory")
}

// Open opens a SQLite database using the compiled-in driver.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if IsMemory(dataSourceName) {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenReadOnly opens an existing database file without write access.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open("file:" + path + "?mode=ro")
}

// Info describes the compiled-in driver.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the driver configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
