package models

import "time"

// Snapshot is the full content of the credential store at one point in time.
// Ciphertext fields are copied verbatim.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Accounts  []Account `json:"accounts"`
	Secrets   []Secret  `json:"secrets"`
}

// Validate checks that every row is complete and that each secret refers to
// an account present in the snapshot.
func (s *Snapshot) Validate() error {
	owners := make(map[string]struct{}, len(s.Accounts))
	for i, a := range s.Accounts {
		if !a.Valid() {
			return &RecordError{Table: "accounts", Index: i, Reason: "missing field"}
		}
		if _, dup := owners[a.Username]; dup {
			return &RecordError{Table: "accounts", Index: i, Reason: "duplicate username " + a.Username}
		}
		owners[a.Username] = struct{}{}
	}

	ids := make(map[int64]struct{}, len(s.Secrets))
	for i, sec := range s.Secrets {
		if !sec.Valid() || sec.ID <= 0 {
			return &RecordError{Table: "secrets", Index: i, Reason: "missing field"}
		}
		if _, ok := owners[sec.Owner]; !ok {
			return &RecordError{Table: "secrets", Index: i, Reason: "unknown owner " + sec.Owner}
		}
		if _, dup := ids[sec.ID]; dup {
			return &RecordError{Table: "secrets", Index: i, Reason: "duplicate id"}
		}
		ids[sec.ID] = struct{}{}
	}
	return nil
}
