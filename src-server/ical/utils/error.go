package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every CustomError wraps exactly one of them, so callers can
// match with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("out of range")
	ErrInvalidState    = errors.New("invalid state")
	ErrNoSuchOperation = errors.New("no such operation")
	ErrLookupFailure   = errors.New("lookup failure")
)

type CustomError struct {
	kind error
	msg  string
	args map[string]any
}

// Create a new custom error of the given kind
func NewCustomError(kind error, msg string, args map[string]any) *CustomError {
	if args == nil {
		args = make(map[string]any)
	}
	return &CustomError{
		kind: kind,
		msg:  msg,
		args: args,
	}
}

// Get the error message
func (e CustomError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if len(e.args) == 0 {
		return sb.String()
	}
	keys := make([]string, 0, len(e.args))
	for key := range e.args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sb.WriteString(" |")
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf(" %s: %v", key, e.args[key]))
	}
	return sb.String()
}

func (e CustomError) Unwrap() error {
	return e.kind
}

// Get the error kind, one of the Err* sentinels
func (e CustomError) Kind() error {
	return e.kind
}

func InvalidArgument(msg string, args map[string]any) error {
	return NewCustomError(ErrInvalidArgument, msg, args)
}

func OutOfRange(msg string, args map[string]any) error {
	return NewCustomError(ErrOutOfRange, msg, args)
}

func InvalidState(msg string, args map[string]any) error {
	return NewCustomError(ErrInvalidState, msg, args)
}

func NoSuchOperation(msg string, args map[string]any) error {
	return NewCustomError(ErrNoSuchOperation, msg, args)
}

func LookupFailure(msg string, args map[string]any) error {
	return NewCustomError(ErrLookupFailure, msg, args)
}
