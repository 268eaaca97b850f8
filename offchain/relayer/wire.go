package relayer

import (
	"encoding/json"
	"strings"
)

// NATS subjects
const (
	// QuerySubject carries queries published by the node
	QuerySubject = "vault.remote.query"

	// ValueSubjectPrefix is followed by the request handle. Each remote
	// domain publishes its answer there.
	ValueSubjectPrefix = "vault.remote.value."
)

// ValueSubject returns the subject remote domains answer handle on
func ValueSubject(handle string) string {
	return ValueSubjectPrefix + handle
}

// handleFromSubject extracts the handle from a value subject
func handleFromSubject(subject string) (string, bool) {
	handle := strings.TrimPrefix(subject, ValueSubjectPrefix)
	if handle == subject || handle == "" {
		return "", false
	}
	return handle, true
}

// Query asks every destination domain for its value of the pool
type Query struct {
	Handle       string          `json:"handle"`
	Destinations []string        `json:"destinations"`
	Payload      json.RawMessage `json:"payload"`
}

// Value is one domain's answer. Value is an 18-decimal USD amount.
type Value struct {
	Domain  string `json:"domain"`
	Value   string `json:"value"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
