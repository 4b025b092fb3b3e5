package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Status is the per-number tag reported by the checker service.
// The set is defined remotely; unknown tags are kept verbatim.
type Status string

const (
	StatusBan     Status = "ban"
	StatusFresh   Status = "fresh"
	StatusSession Status = "session"
)

// Known reports whether s is one of the documented tags.
func (s Status) Known() bool {
	switch s {
	case StatusBan, StatusFresh, StatusSession:
		return true
	}
	return false
}

// PhoneNumber is a cleaned number: digits only, optionally prefixed by a single '+'.
type PhoneNumber string

// Digits returns the number without its leading '+'.
func (p PhoneNumber) Digits() string {
	return strings.TrimPrefix(string(p), "+")
}

// NumberBatch is an ordered, non-empty list of numbers checked in one request.
type NumberBatch []PhoneNumber

// Join returns the comma-separated wire form.
func (b NumberBatch) Join() string {
	parts := make([]string, len(b))
	for i, n := range b {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}

// Errors holds the service's "errors" field untouched. Depending on the
// deployment it is either a count or a list of numbers.
type Errors json.RawMessage

// Count returns the numeric value, or the list length, or 0 when absent or unrecognised.
func (e Errors) Count() int {
	raw := bytes.TrimSpace(e)
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list)
	}
	return 0
}

// Present reports whether the service sent the field at all.
func (e Errors) Present() bool {
	raw := bytes.TrimSpace(e)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (e Errors) String() string {
	return string(bytes.TrimSpace(e))
}

// MarshalJSON emits the raw value, or null when absent.
func (e Errors) MarshalJSON() ([]byte, error) {
	if !e.Present() {
		return []byte("null"), nil
	}
	return []byte(e), nil
}

// UnmarshalJSON keeps a copy of the raw value.
func (e *Errors) UnmarshalJSON(data []byte) error {
	*e = append((*e)[0:0], data...)
	return nil
}

// CheckResult is the outcome of one batch request, built once from the response body.
type CheckResult struct {
	Data      map[PhoneNumber]Status `json:"data"`
	Errors    Errors                 `json:"errors"`
	Status    string                 `json:"status"`
	TimeTaken float64                `json:"timeTaken"`
}

// Lookup returns the tag stored for n. The service may key its response with
// or without the leading '+', so both spellings are tried.
func (r CheckResult) Lookup(n PhoneNumber) (Status, bool) {
	for _, key := range []PhoneNumber{n, PhoneNumber(n.Digits()), PhoneNumber("+" + n.Digits())} {
		if s, ok := r.Data[key]; ok {
			return s, true
		}
	}
	return "", false
}

// NumberStatus is one number's outcome enriched with its calling-code region.
type NumberStatus struct {
	Number PhoneNumber `json:"number" firestore:"number"`
	Status Status      `json:"status" firestore:"status"`
	Region string      `json:"region,omitempty" firestore:"region,omitempty"`
	// CheckedAt is set on stored latest-status documents.
	CheckedAt time.Time `json:"checkedAt,omitempty" firestore:"checkedAt,omitempty"`
	CheckID   string    `json:"checkId,omitempty" firestore:"checkId,omitempty"`
}

// CheckReport is what the service layer returns for a batch check.
type CheckReport struct {
	ID        string         `json:"id"`
	Numbers   []NumberStatus `json:"numbers"`
	Result    CheckResult    `json:"result"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// CheckRecord is the history document stored in the `checks` collection.
type CheckRecord struct {
	ID          string         `json:"id,omitempty" firestore:"id,omitempty"`
	BatchHash   string         `json:"batchHash,omitempty" firestore:"batchHash,omitempty"`
	Numbers     []NumberStatus `json:"numbers,omitempty" firestore:"numbers,omitempty"`
	Status      string         `json:"status,omitempty" firestore:"status,omitempty"`
	ErrorsRaw   string         `json:"errors,omitempty" firestore:"errors,omitempty"`
	ErrorCount  int            `json:"errorCount,omitempty" firestore:"errorCount,omitempty"`
	TimeTaken   float64        `json:"timeTaken,omitempty" firestore:"timeTaken,omitempty"`
	RequestedAt time.Time      `json:"requestedAt,omitempty" firestore:"requestedAt,omitempty"`
}
