// Package store persists API sessions in SQLite at the database path the
// settings document resolves to.
//
// The Store manages the connection, schema initialization, and expiry
// driven by session.timeout_minutes. The database is working state, not
// an archive; schema changes bump the version in schema.go and users
// clear the database to adopt the new schema.
package store
