package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"meetingRoomBooking/models"
)

// Principal represents the authenticated caller decoded from a JWT.
type Principal struct {
	UserID             int64
	StudentID          string
	Name               string
	Role               string
	MustChangePassword bool
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

type claims struct {
	UserID             int64  `json:"uid"`
	StudentID          string `json:"sid"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"pwd_change"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 session token for the user.
func GenerateToken(u *models.User, secret string, expiry time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	c := claims{
		UserID:             u.ID,
		StudentID:          u.StudentID,
		Name:               u.Name,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.StudentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken validates a token string and extracts the Principal.
func ParseToken(tokenStr, secret string) (*Principal, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	c, _ := tok.Claims.(*claims)
	if c == nil || c.UserID == 0 || c.StudentID == "" {
		return nil, errors.New("invalid claims")
	}
	return &Principal{
		UserID:             c.UserID,
		StudentID:          c.StudentID,
		Name:               c.Name,
		Role:               c.Role,
		MustChangePassword: c.MustChangePassword,
	}, nil
}
