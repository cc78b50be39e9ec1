// Package auth describes the capability the exporters need from an identity
// provider. The consent flow itself lives with the provider (see internal/google).
package auth

import (
	"context"
	"errors"
)

// ErrAuthRequired is returned when no usable credential is available.
var ErrAuthRequired = errors.New("authentication required")

// TokenProvider hands out an access token for the calendar API.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Identity is what a completed sign-in yields.
type Identity struct {
	DisplayName string
	Email       string
	AccessToken string
}

// Static is a TokenProvider backed by a fixed token string.
type Static string

// AccessToken returns the token, or ErrAuthRequired if it is empty.
func (s Static) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", ErrAuthRequired
	}
	return string(s), nil
}
