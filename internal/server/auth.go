package server

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

// ErrInvalidToken covers every auth failure: bad format, bad signature,
// expiry. The response never says which.
var ErrInvalidToken = errors.New("token is not valid")

// TokenVerifier turns a bearer token into a user id. The identity provider
// is a collaborator; the server only needs this one capability.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// HMACTokenizer issues and verifies tokens of the form
// "<userID>.<expiryUnix>.<sig>" where sig is a URL-safe base64 HMAC-SHA256
// over "<userID>.<expiryUnix>".
type HMACTokenizer struct {
	secret []byte
	ttl    time.Duration
}

func NewHMACTokenizer(secret []byte, ttl time.Duration) *HMACTokenizer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACTokenizer{secret: secret, ttl: ttl}
}

// Issue mints a token for userID valid for the configured TTL. The user id
// must not contain the separator.
func (h *HMACTokenizer) Issue(userID string) (string, error) {
	if userID == "" || strings.Contains(userID, ".") {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	exp := time.Now().Add(h.ttl).Unix()
	msg := fmt.Sprintf("%s.%d", userID, exp)
	return msg + "." + h.sign(msg), nil
}

// Verify implements TokenVerifier.
func (h *HMACTokenizer) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	userID, expRaw, sig := parts[0], parts[1], parts[2]
	exp, err := strconv.ParseInt(expRaw, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	msg := userID + "." + expRaw
	if !hmac.Equal([]byte(h.sign(msg)), []byte(sig)) {
		return "", ErrInvalidToken
	}
	if time.Now().Unix() > exp {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (h *HMACTokenizer) sign(msg string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(msg))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
