// Package logging builds the slog loggers used by the capa CLI and
// server. It supports a human console format (colored when stderr is a
// terminal) and a JSON format for log files or supervised runs.
package logging
