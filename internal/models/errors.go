package models

import (
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// RecordError describes a malformed row in a snapshot or CSV file. It matches
// common.ErrCorruptRecord under errors.Is.
type RecordError struct {
	Table  string
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Table, e.Index, e.Reason)
}

func (e *RecordError) Is(target error) bool {
	return target == common.ErrCorruptRecord
}
