package model

import (
	"errors"
	"fmt"
)

// ErrMissingKey is wrapped when a structurally required key is absent.
var ErrMissingKey = errors.New("required key missing")

// ErrNotObject is wrapped when a value that must be a JSON object is not one.
var ErrNotObject = errors.New("not an object")

// MalformedResponseError reports a successful response whose shape does not
// match the entity being parsed. It indicates a protocol mismatch.
type MalformedResponseError struct {
	Entity string
	Key    string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s: %v", e.Entity, e.Key, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func malformed(entity, key string, err error) error {
	return &MalformedResponseError{Entity: entity, Key: key, Err: err}
}
