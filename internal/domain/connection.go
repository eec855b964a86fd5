// Package domain contains identifiers, event names and errors, no logic.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxAccountIDLen = 64

var (
	ErrAccountIDEmpty   = errors.New("account id empty")
	ErrAccountIDTooLong = errors.New("account id too long")
)

// ConnectionID identifies one live transport session. It is never reused.
type ConnectionID string

// AccountID is the stable application account a connection may identify as.
type AccountID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// ParseAccountID avoids ad-hoc conversions of client supplied ids in adapters.
func ParseAccountID(raw string) (AccountID, error) {
	if len(raw) == 0 {
		return "", ErrAccountIDEmpty
	}
	if len(raw) > MaxAccountIDLen {
		return "", ErrAccountIDTooLong
	}
	return AccountID(raw), nil
}
