package config

import "time"

const (
	// DefaultUploadConcurrency caps the fan-out over the repository and
	// blob store during bulk document creation. The relational store and
	// the audit log both have finite throughput budgets; five in-flight
	// items keeps them comfortably inside those budgets.
	DefaultUploadConcurrency = 5

	// DefaultRedactionCacheTTL bounds staleness of the cached
	// redaction-status catalogue. The catalogue only changes through
	// administrative flows, so a generous TTL is safe.
	DefaultRedactionCacheTTL = 5 * time.Minute

	// MaxDocumentNameLength is the maximum length for document display
	// names. Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentNameLength = 255

	// MaxCaseReferenceLength bounds incoming case references before they
	// are sanitized into blob paths.
	MaxCaseReferenceLength = 64

	// MaxLogFiles is how many timestamped debug log files to keep around.
	MaxLogFiles = 5
)
