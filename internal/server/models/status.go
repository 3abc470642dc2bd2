package models

import "time"

// Status is a snapshot of the service and its database.
type Status struct {
	UpdatedAt         time.Time
	Version           string
	MaxConnections    int
	OpenedConnections int
}
