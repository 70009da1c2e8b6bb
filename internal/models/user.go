package models

// User is a pre-provisioned account. Rows are immutable after creation and
// are loaded into the reference cache at startup.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Salt         string
}
