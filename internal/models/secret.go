package models

// Secret is a stored platform credential. Ciphertext is the cipher token of
// the platform password; the other fields are plaintext metadata.
type Secret struct {
	ID               int64  `json:"id"`
	Owner            string `json:"owner"`
	Platform         string `json:"platform"`
	PlatformUsername string `json:"platform_username"`
	Email            string `json:"email"`
	Ciphertext       string `json:"secret_ciphertext"`
}

// Valid reports whether the fields the store cannot default are present.
func (s Secret) Valid() bool {
	return s.Owner != "" && s.Platform != "" && s.Ciphertext != ""
}
