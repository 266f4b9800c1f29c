// Package users persists vault accounts in the credentials table.
//
// The KDF salt is stored base64-encoded in the salt column and decoded on
// read. Unique-username enforcement is left to the database constraint;
// callers detect it with dbx.IsUniqueViolation.
//
// Typical usage:
//
//	repo := users.NewSQLRepository(tx, dbx.DialectSQLite)
//	err := repo.Create(ctx, user)
//	u, err := repo.GetByUserName(ctx, "alice")
package users
