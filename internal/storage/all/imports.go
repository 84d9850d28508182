// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mysql", "mariadb"     (climate/internal/storage/mysql)
//   - "postgres", "postgresql" (climate/internal/storage/postgres)
//   - "sqlserver", "mssql"   (climate/internal/storage/mssql)
//   - "sqlite", "sqlite3"    (climate/internal/storage/sqlite)
//
// Typical usage (in cmd/climate or a similar wiring layer):
//
//	import _ "climate/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "mysql", DSN: dsn})
package all

import (
	_ "climate/internal/storage/mssql"
	_ "climate/internal/storage/mysql"
	_ "climate/internal/storage/postgres"
	_ "climate/internal/storage/sqlite"
)
