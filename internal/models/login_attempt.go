package models

import "time"

// LoginAttempt is one append-only ledger row. Ordering by ID is the audit
// timeline; rows are never updated or deleted.
type LoginAttempt struct {
	ID        int64
	CreatedAt time.Time
	UserID    *int64 // nil when the submitted login resolved to no account
	Login     string
	IP        string
	Succeeded bool
}
