// Package paths derives every on-disk location capa depends on from the
// current user's home directory: the state directory, the settings file,
// the process-id file, and the database file.
//
// All resolvers are pure and recompute their result on every call; nothing
// is cached, so tests (and long-lived processes) may swap HOME or settings
// between calls. EnsureStateDir is the single exception with a side
// effect: it idempotently creates the state directory tree and must run
// before anything opens files beneath it.
package paths
