package test

import (
	"errors"

	pkgAuth "github.com/haidarz/remitbot/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and verifies tokens via function overrides.
type StrategyStub struct {
	IssueFn  func() (string, error)
	VerifyFn func(string) error
	NameVal  string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken() (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn()
	}
	return "token", nil
}

// VerifyToken validates previously issued token strings.
func (s StrategyStub) VerifyToken(token string) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(token)
	}
	if token != "token" {
		return pkgAuth.ErrInvalidToken
	}
	return nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
