package workouts

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGoal       = errors.New("weekly goal out of range")
	ErrInvalidDate       = errors.New("malformed workout date")
	ErrNotImage          = errors.New("unsupported file type")
	ErrInvalidUser       = errors.New("user id or username empty")
	ErrDuplicateWorkout  = errors.New("workout already recorded")
	ErrNothingToRevoke   = errors.New("nothing to revoke")
	ErrLedgerEntryExists = errors.New("weekly penalty already recorded")
	ErrNoSettings        = errors.New("no settings for user")
)

// Kind tells the caller what corrective action makes sense.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a user-correctable input problem, no store call was made.
	KindValidation
	// KindConflict is a normal no-op branch of the state machine.
	KindConflict
	// KindNotFound means the user has no goal set yet.
	KindNotFound
	// KindStore is an opaque failure of the store. Nothing is retried.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the human readable message of err, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func validationErr(op string, sentinel error, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func conflictErr(op string, sentinel error, format string, args ...any) error {
	return &Error{Kind: KindConflict, Op: op, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func notFoundErr(op, userID string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("user %s has no weekly goal, set one first", userID), Err: ErrNoSettings}
}

func storeErr(op string, err error) error {
	return &Error{Kind: KindStore, Op: op, Msg: "store operation failed", Err: err}
}
