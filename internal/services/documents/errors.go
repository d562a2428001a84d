package documents

import (
	"errors"
	"fmt"
)

// ErrLedgerExists rejects a confirm that would create a second ledger entry
// for the same document.
var ErrLedgerExists = errors.New("document already has a ledger entry")

// ErrMissingAmount rejects a confirm when no gross amount is available to
// post, neither extracted nor supplied as an override.
var ErrMissingAmount = errors.New("document has no gross amount to post")

// StateError reports an operation attempted on a document outside the draft
// state. The current status is named so the caller can see why.
type StateError struct {
	Op      string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s document in status %q: only drafts can be %sed", e.Op, e.Current, e.Op)
}
