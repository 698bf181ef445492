// Package sqliteexternal registers the CGO SQLite driver
// (github.com/mattn/go-sqlite3) for builds that want it:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/reffinder
//
// Without the tag the finder uses modernc.org/sqlite through core/sqlite and
// this package is empty. Large versification databases load faster with the
// CGO driver; the pure Go driver keeps the binary static and
// cross-compilable.
package sqliteexternal
