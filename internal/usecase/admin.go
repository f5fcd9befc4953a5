package usecase

import (
	"strings"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	pkgAuth "github.com/haidarz/remitbot/internal/pkg/auth"
)

// AdminUseCase authenticates the administrative HTTP surface. There is a
// single admin identity configured at process start.
type AdminUseCase struct {
	passwordHash string
	hasher       pkgAuth.PasswordHasher
	tokens       pkgAuth.Strategy
}

// NewAdminUseCase constructs AdminUseCase. The configured password may be a
// bcrypt hash or a bootstrap plaintext value, which is hashed on startup.
func NewAdminUseCase(password string, hasher pkgAuth.PasswordHasher, tokens pkgAuth.Strategy) (*AdminUseCase, error) {
	hash := password
	if !strings.HasPrefix(password, "$2") {
		var err error
		if hash, err = hasher.Hash(password); err != nil {
			return nil, err
		}
	}
	return &AdminUseCase{passwordHash: hash, hasher: hasher, tokens: tokens}, nil
}

// Login validates the admin password and returns a session token.
func (u *AdminUseCase) Login(password string) (string, error) {
	if password == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(u.passwordHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken()
}

// VerifyToken checks an admin session token.
func (u *AdminUseCase) VerifyToken(token string) error {
	if token == "" {
		return pkgAuth.ErrInvalidToken
	}
	return u.tokens.VerifyToken(token)
}
