package models

import "time"

// JobStatus is the externally visible state of an import job.
type JobStatus string

const (
	JobPending         JobStatus = "pending"
	JobSuccess         JobStatus = "success"
	JobPartialSuccess  JobStatus = "partial_success"
	JobCriticalFailure JobStatus = "critical_failure"
)

// Terminal reports whether the job has finished.
func (s JobStatus) Terminal() bool {
	return s == JobSuccess || s == JobPartialSuccess || s == JobCriticalFailure
}

// JobKind selects how an import's rows are interpreted.
type JobKind string

const (
	// KindProperties is a property/auction export, optionally carrying scraped raw_text.
	KindProperties JobKind = "properties"
	// KindAuctions is a county auction calendar.
	KindAuctions JobKind = "auctions"
	// KindRawText is a collection of scraped free-text blobs.
	KindRawText JobKind = "raw_text"
)

// Valid reports whether k is a supported job kind.
func (k JobKind) Valid() bool {
	return k == KindProperties || k == KindAuctions || k == KindRawText
}

// JobProgress is a point-in-time snapshot of a running or finished import.
// UpdatedAt doubles as the job heartbeat.
type JobProgress struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Warnings  int       `json:"warnings"`
}
