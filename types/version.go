package types //nolint:revive // types is a valid package name

// Version is the canonical project version.
// The CLI and the event store format share this version.
const Version = "0.3.0"

// StoreFormatVersion is the event store container version written in
// store headers.
const StoreFormatVersion = 1
