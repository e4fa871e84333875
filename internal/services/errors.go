package services

import "errors"

// Error kinds surfaced by the review service. Callers distinguish them with
// errors.Is; the underlying cause stays wrapped alongside the kind.
var (
	// ErrNotConfigured means no review database is configured for this deployment
	ErrNotConfigured = errors.New("review database not configured")

	// ErrDataUnavailable means the record or decision store could not be read
	ErrDataUnavailable = errors.New("review data unavailable")

	// ErrStorageWriteFailed means a decision upsert did not commit
	ErrStorageWriteFailed = errors.New("decision could not be stored")

	// ErrInvalidDecision means the submitted decision is malformed
	ErrInvalidDecision = errors.New("invalid decision")
)

// Error kind labels, used for metrics and API error codes
const (
	KindNotConfigured      = "not_configured"
	KindDataUnavailable    = "data_unavailable"
	KindStorageWriteFailed = "storage_write_failed"
	KindInvalidDecision    = "invalid_decision"
	KindUnknown            = "unknown"
)

// ErrorKind returns the kind label of err, or "" for nil
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrStorageWriteFailed):
		return KindStorageWriteFailed
	case errors.Is(err, ErrInvalidDecision):
		return KindInvalidDecision
	default:
		return KindUnknown
	}
}
