// Package cli provides the interactive openpass command-line front-end.
//
// It wires configuration, the SQL-backed services, the optional password
// advisor and the backup store into a small REPL. Typical flow: register or
// log in, then add, list, search and delete vault entries.
//
// Key features:
//   - Register / Login / Logout
//   - Add entries with an optional generated password
//   - List / Search / Reveal / Delete entries, delete by site
//   - Strength check with breached-list lookup and background advice
//   - Encrypted backups to a directory or an S3 bucket
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
