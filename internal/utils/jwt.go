package utils // package utils provides helpers for token creation and verification

import (
	"crypto/rand" // secure random number generation for verification codes
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned when a bearer token cannot be parsed, fails
// signature verification, has expired, or carries malformed claims.
var ErrInvalidToken = errors.New("token error")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Access tokens are sent in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID and a TTL in minutes.  The JWT carries the
// user_id claim that every protected handler reads, plus the standard exp
// and iat claims.
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAndRefresh validates a raw bearer token and extracts the user ID.
// When the token is valid but its remaining lifetime has fallen below
// refreshWindowMin minutes, a fresh token with a full TTL is issued and
// returned alongside; otherwise the returned token string is empty.  Any
// parse, signature or expiry failure yields ErrInvalidToken.
func VerifyAndRefresh(secret, raw string, ttlMin, refreshWindowMin int) (uint64, string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, ok := claims["user_id"].(float64)
	if !ok || sub <= 0 {
		return 0, "", ErrInvalidToken
	}
	userID := uint64(sub)

	expNum, err := claims.GetExpirationTime()
	if err != nil || expNum == nil {
		return 0, "", ErrInvalidToken
	}
	remaining := time.Until(expNum.Time)
	if remaining < time.Duration(refreshWindowMin)*time.Minute {
		fresh, err := NewAccessToken(secret, userID, ttlMin)
		if err != nil {
			// The presented token is still valid; keep serving with it.
			return userID, "", nil
		}
		return userID, fresh.Token, nil
	}
	return userID, "", nil
}

// RandomDigits returns a string of n digits generated from a
// cryptographically secure source.  It is used for the email
// verification code.
func RandomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = '0' + buf[i]%10
	}
	return string(buf), nil
}
