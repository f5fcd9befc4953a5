package auth

import "time"

// Strategy issues and verifies admin session tokens.
type Strategy interface {
	IssueToken() (string, error)
	VerifyToken(token string) error
	Name() string
}

// Options tunes token strategies.
type Options struct {
	TTL time.Duration
}
