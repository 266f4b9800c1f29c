// Package models holds the persistence and view types of the vault.
package models

// User is an account row from the credentials table.
//
// PasswordHash is the bcrypt digest used only for login. KDFSalt is the
// independent 16-byte salt used to derive the field-encryption key; it is
// written once at registration and never changes.
type User struct {
	ID              string
	UserName        string
	PasswordHash    string
	KDFSalt         []byte
	RecoveryContact string
}
