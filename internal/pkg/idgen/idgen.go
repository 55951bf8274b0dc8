// Package idgen generates the opaque identifiers used for board, run,
// invocation, and ticket ids.
package idgen

import "github.com/google/uuid"

func New() string { return uuid.New().String() }

func Parse(s string) (uuid.UUID, error) { return uuid.Parse(s) }

func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
