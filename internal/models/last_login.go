package models

import "time"

// LastLogin is the most recent successful login per user. It is replaced on
// every success; the record captured before the replacement is what gets
// shown to the user as "previous login".
type LastLogin struct {
	UserID    int64
	CreatedAt time.Time
	IP        string
}
