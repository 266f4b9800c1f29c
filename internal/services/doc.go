// Package services contains the vault's business logic.
//
// AuthService registers accounts and verifies master passwords with bcrypt.
// VaultService stores and reads site credentials, encrypting every field
// independently under the key held by a session.Session.
//
// All persistence goes through a dbx.Executor, so every call runs alone in
// its own transaction.
package services
