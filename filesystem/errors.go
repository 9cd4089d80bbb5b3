package filesystem

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a user-facing failure
type ErrorKind string

const (
	// input
	KindPathRequired     ErrorKind = "path_required"
	KindFilenameRequired ErrorKind = "filename_required"
	KindUsage            ErrorKind = "usage"
	// resolution
	KindNoSuchPath ErrorKind = "no_such_path"
	KindNoSuchFile ErrorKind = "no_such_file"
	KindNotFound   ErrorKind = "not_found"
	// type
	KindNotADirectory            ErrorKind = "not_a_directory"
	KindIsADirectory             ErrorKind = "is_a_directory"
	KindCannotCopyDirectory      ErrorKind = "cannot_copy_directory"
	KindCannotOverwriteDirectory ErrorKind = "cannot_overwrite_directory"
	// dispatch and policy
	KindCommandNotFound ErrorKind = "command_not_found"
	KindBlocked         ErrorKind = "blocked"
	KindNotAllowed      ErrorKind = "not_allowed"
	// tree construction
	KindConflict ErrorKind = "conflict"
	// a construction bug, never a normal user condition
	KindInternal ErrorKind = "internal"
)

// Error is the structured error returned by file system operations.
// Name is the user-supplied token the error refers to.
type Error struct {
	Kind   ErrorKind
	Name   string
	Detail string
	// Target is the node the failing operation addressed, if any
	// (e.g. the directory a cat resolved to)
	Target Node
}

func newError(kind ErrorKind, name, detail string) *Error {
	return &Error{Kind: kind, Name: name, Detail: detail}
}

// NewError builds an Error for callers outside the package (interpreter, policy)
func NewError(kind ErrorKind, name, detail string) *Error {
	return newError(kind, name, detail)
}

// Error implements the error interface. Messages follow the shell's
// user-facing wording.
func (e *Error) Error() string {
	switch e.Kind {
	case KindPathRequired:
		return "path required"
	case KindFilenameRequired:
		return "filename required"
	case KindUsage:
		if e.Detail != "" {
			return "usage: " + e.Detail
		}
		return "usage error"
	case KindNoSuchPath:
		return "no such file or directory: " + e.Name
	case KindNoSuchFile:
		return "no such file: " + e.Name
	case KindNotFound:
		return "not found: " + e.Name
	case KindNotADirectory:
		return "not a directory: " + e.Name
	case KindIsADirectory:
		return "is a directory: " + e.Name
	case KindCannotCopyDirectory:
		return "cannot copy directory: " + e.Name
	case KindCannotOverwriteDirectory:
		return "cannot overwrite directory: " + e.Name
	case KindCommandNotFound, KindNotAllowed:
		return "command not found: " + e.Name
	case KindBlocked:
		if e.Detail != "" {
			return e.Detail
		}
		return fmt.Sprintf("Command '%s' is currently blocked.", e.Name)
	case KindConflict:
		return fmt.Sprintf("a node named '%s' already exists", e.Name)
	}

	msg := "internal error"
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else KindInternal
func KindOf(err error) ErrorKind {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Kind
	}
	return KindInternal
}

// Sentinels for errors.Is
var (
	ErrNoSuchPath               = &Error{Kind: KindNoSuchPath}
	ErrNoSuchFile               = &Error{Kind: KindNoSuchFile}
	ErrNotADirectory            = &Error{Kind: KindNotADirectory}
	ErrIsADirectory             = &Error{Kind: KindIsADirectory}
	ErrCannotCopyDirectory      = &Error{Kind: KindCannotCopyDirectory}
	ErrCannotOverwriteDirectory = &Error{Kind: KindCannotOverwriteDirectory}
	ErrConflict                 = &Error{Kind: KindConflict}
	ErrInternal                 = &Error{Kind: KindInternal}
)
