package domain

import "fmt"

// DuplicateIdentityError reports a uniqueness violation on a single
// identity field (username, email or phone). The write that caused it
// left the store unchanged.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s is already taken", e.Field)
}
