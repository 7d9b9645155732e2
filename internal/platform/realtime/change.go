package realtime

import (
	"context"
	"sync"
	"time"
)

// Operations carried by a Change.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Change describes a committed write to one record.
type Change struct {
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	RecordID  string    `json:"record_id,omitempty"`
	PatientID string    `json:"patient_id,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
	Private   bool      `json:"private,omitempty"`
	At        time.Time `json:"at"`
}

// TableTopic is the topic for every change to table.
func TableTopic(table string) string { return "table:" + table }

// PatientTopic is the topic for every change to a patient's chart.
func PatientTopic(patientID string) string { return "patient:" + patientID }

// InboxTopic is the topic for messages addressed to a user.
func InboxTopic(userID string) string { return "inbox:" + userID }

// AllTopics returns the table topic, the patient topic when the change
// belongs to a chart, and any extra topics. A private change goes to its
// extra topics only.
func (c Change) AllTopics() []string {
	if c.Private {
		return append([]string(nil), c.Topics...)
	}
	topics := []string{TableTopic(c.Table)}
	if c.PatientID != "" {
		topics = append(topics, PatientTopic(c.PatientID))
	}
	return append(topics, c.Topics...)
}

// Publisher is implemented by Feed. Services depend on it so tests can
// capture changes.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Recorder is an in-memory Publisher for tests and single-process setups.
type Recorder struct {
	mu      sync.Mutex
	Changes []Change
	Hub     *Hub
}

func (r *Recorder) Publish(_ context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	r.mu.Lock()
	r.Changes = append(r.Changes, change)
	r.mu.Unlock()
	if r.Hub != nil {
		r.Hub.Dispatch(change)
	}
	return nil
}

// Last returns the most recent change, or false when none was published.
func (r *Recorder) Last() (Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Changes) == 0 {
		return Change{}, false
	}
	return r.Changes[len(r.Changes)-1], true
}
