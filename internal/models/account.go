// Package models defines the records persisted by the credential store and
// carried by backups and CSV transfers.
package models

// Account is a vault owner. SecurityQuestion and SecurityAnswer hold cipher
// tokens; PasswordHash holds an encoded one-way digest.
type Account struct {
	Username         string `json:"username"`
	PasswordHash     string `json:"password_hash"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

// Valid reports whether every field required by the store is present.
func (a Account) Valid() bool {
	return a.Username != "" && a.PasswordHash != "" && a.SecurityQuestion != "" && a.SecurityAnswer != ""
}
