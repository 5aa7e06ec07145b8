package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// tokenClaims is the signed payload of an access token.
type tokenClaims struct {
	UserID    uint  `json:"uid"`
	ExpiresAt int64 `json:"exp"`
}

// sign creates a HMAC-SHA256 signature for the payload.
func sign(secret []byte, data string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// signToken issues a token of the form base64url(claims) + "." + hex(hmac).
func signToken(secret []byte, userID uint, expiresAt time.Time) (string, error) {
	payload, err := json.Marshal(tokenClaims{UserID: userID, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("failed to encode token claims: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + sign(secret, encoded), nil
}

// verifyToken checks the signature and expiry and returns the claims.
func verifyToken(secret []byte, token string, now time.Time) (tokenClaims, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok {
		return tokenClaims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sign(secret, encoded)), []byte(signature)) {
		return tokenClaims{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return tokenClaims{}, ErrInvalidToken
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return tokenClaims{}, ErrInvalidToken
	}
	if now.Unix() >= claims.ExpiresAt {
		return tokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}
