package note

import "errors"

var (
	// ErrNotFound is returned for missing notes and for notes owned by
	// someone else.
	ErrNotFound = errors.New("note not found")

	// ErrAuthRequired is returned when an operation needs a signed-in user.
	ErrAuthRequired = errors.New("user not authenticated")
)

// ValidationError reports a user-correctable problem with a draft.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StoreError wraps a failed store call. Its message is the store's message
// verbatim so it can be shown to the user as-is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// Failure wraps err as a StoreError for op. A nil err stays nil.
func Failure(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
