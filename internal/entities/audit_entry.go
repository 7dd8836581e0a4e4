package entities

import "time"

// AuditEntry - запись журнала изменений, сделанных через консоль.
type AuditEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	RecordID  string    `json:"record_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	AuditOutcomeOK     = "ok"
	AuditOutcomeFailed = "failed"
)
