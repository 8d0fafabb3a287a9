package models

// DataStatus is the lifecycle tag carried by every soft-deletable row.
// Records are never physically removed; deletion flips the status to 'D'
// and every read path filters on 'A'.
type DataStatus string

const (
	StatusActive  DataStatus = "A"
	StatusDeleted DataStatus = "D"
)
