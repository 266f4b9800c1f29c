// Package vault persists encrypted vault rows.
//
// Rows only ever carry ciphertext blobs; decryption happens in the service
// layer. Every delete is scoped by both entry id and owner id so one user
// can never remove another user's rows.
package vault
