package entity

import "time"

// IdempotencyRecord is the cached response of a completed mutating request.
// A record is written only after the original request finished with a
// success-class status, so a failed attempt stays retryable under its key.
// Records are immutable once written.
type IdempotencyRecord struct {
	Key             string    `json:"key"`
	ResponseCode    int       `json:"responseCode"`
	ResponsePayload string    `json:"responsePayload"`
	CreatedAt       time.Time `json:"createdAt"`
}
