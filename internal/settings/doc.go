// Package settings loads and persists capa's versioned settings document.
//
// It supplies repository defaults, fills fields missing from the on-disk
// file via an explicit field-level merge (a partially upgraded file never
// yields empty values downstream), and writes through a sibling temp file
// plus atomic rename so concurrent readers only ever observe a complete
// document. A missing file is not an error; a malformed one is, and is
// surfaced rather than silently repaired.
//
// Always obtain live settings through Load so downstream code receives a
// fully populated document and the state directory is guaranteed to exist.
package settings
