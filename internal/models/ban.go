package models

// UserFailureCount is the per-account consecutive-failure counter backing
// account locks.
type UserFailureCount struct {
	UserID   int64
	Failures int
}

// IPFailureCount is the per-source-address counter backing IP bans.
type IPFailureCount struct {
	IP       string
	Failures int
}
