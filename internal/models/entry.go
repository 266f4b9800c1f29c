package models

// VaultEntry is a stored vault row. Each *Cipher field is an opaque
// base64(nonce || ciphertext || tag) blob.
type VaultEntry struct {
	ID                 string
	OwnerID            string
	SiteNameCipher     string
	SiteUserCipher     string
	SitePasswordCipher string
}

// Field names one encrypted column of a vault row.
type Field string

const (
	FieldSiteName     Field = "site_name"
	FieldSiteUser     Field = "site_user"
	FieldSitePassword Field = "site_password"
)

// Entry is the decrypted view of a VaultEntry. A field that could not be
// decrypted holds a placeholder and is listed in Failed.
type Entry struct {
	ID           string
	SiteName     string
	SiteUser     string
	SitePassword string
	Failed       []Field
}

// OK reports whether every field decrypted.
func (e Entry) OK() bool { return len(e.Failed) == 0 }

// HasFailed reports whether f failed to decrypt.
func (e Entry) HasFailed(f Field) bool {
	for _, x := range e.Failed {
		if x == f {
			return true
		}
	}
	return false
}
