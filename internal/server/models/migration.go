package models

// Migration describes one schema migration known to the migrator.
// Timestamp is the goose version, which the files encode as yyyymmddhhmmss.
type Migration struct {
	Path      string
	Name      string
	Timestamp int64
}
