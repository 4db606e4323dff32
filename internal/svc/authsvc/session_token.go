package authsvc

import (
	"errors"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/mkrupp/storefront/internal/domain"
)

var (
	errTokenExpired   = errors.New("token expired")
	errTokenNotYet    = errors.New("token used before issued")
	errInvalidSubject = errors.New("invalid subject")
)

// sessionClaims is the JWT payload of a session token. Validation uses the service clock
// instead of the package-global jwt.TimeFunc.
type sessionClaims struct {
	Username string `json:"username"`
	jwt.StandardClaims

	now func() time.Time
}

func newSessionClaims(user *domain.User, issuedAt time.Time, ttl time.Duration) sessionClaims {
	return sessionClaims{
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{ //nolint:exhaustruct
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(ttl).Unix(),
		},
	}
}

// Valid implements jwt.Claims. Expiry is mandatory.
func (c sessionClaims) Valid() error {
	now := c.now().Unix()

	if !c.VerifyExpiresAt(now, true) {
		return errTokenExpired
	}

	if !c.VerifyIssuedAt(now, false) {
		return errTokenNotYet
	}

	return nil
}

func (c sessionClaims) sessionToken() (domain.SessionToken, error) {
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID < 1 {
		return domain.SessionToken{}, errInvalidSubject
	}

	return domain.SessionToken{
		UserID:    userID,
		Username:  c.Username,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
	}, nil
}
