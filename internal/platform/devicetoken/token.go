// Package devicetoken issues and verifies credentials for gate devices
// (ANPR cameras, barrier controllers) posting events to the API.
package devicetoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("devicetoken: invalid token")

// Claims identify the device and the society it belongs to.
type Claims struct {
	DeviceID  string `json:"device_id"`
	SocietyID int64  `json:"society_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies device tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. A non-positive ttl defaults to 24h.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for the device.
func (i *Issuer) Issue(deviceID string, societyID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		DeviceID:  deviceID,
		SocietyID: societyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token, returning its claims.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("devicetoken: unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.DeviceID == "" || claims.SocietyID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
