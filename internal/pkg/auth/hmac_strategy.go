package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// HMACStrategy implements admin token creation/verification using HMAC signatures.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
// A zero TTL falls back to 24h; a negative TTL issues already-expired tokens.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed admin session token.
func (s *HMACStrategy) IssueToken() (string, error) {
	expires := time.Now().Add(s.ttl).Unix()
	payload := strconv.FormatInt(expires, 10)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// VerifyToken validates the token signature and expiry.
func (s *HMACStrategy) VerifyToken(token string) error {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 {
		return ErrInvalidToken
	}

	expectedSig := s.sign(parts[0])
	if !hmac.Equal([]byte(expectedSig), []byte(parts[1])) {
		return ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrInvalidToken
	}

	if time.Unix(expires, 0).Before(time.Now()) {
		return ErrInvalidToken
	}

	return nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
