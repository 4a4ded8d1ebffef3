package uf

import (
	"errors"
	"fmt"
)

var (
	ErrBadCredentials    = errors.New("username or password is incorrect")
	ErrSiteError         = errors.New("login service reported an error")
	ErrUnexpectedLanding = errors.New("login ended on an unexpected page")
	ErrNoSessionCookie   = errors.New("login did not establish a session")
	ErrNoCookieJar       = errors.New("cookies plugin must be installed first")
)

// AuthError describes a failed login. Detail is text taken from the page,
// sanitized of any markup.
type AuthError struct {
	Reason string
	URL    string
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("login failed: %s", e.Reason)
	if e.URL != "" {
		msg += " at " + e.URL
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
