package types

// Version is the canonical project version, reported by the version
// command and carried in run reports.
const Version = "0.1.0"
