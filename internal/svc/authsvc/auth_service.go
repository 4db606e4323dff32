package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningMethod selects how session tokens are signed: "HS256" with Secret
	// or "PS256" with the RSA key in SigningKeyFile
	SigningMethod string `env:"SIGNING_METHOD" default:"HS256"`

	// Secret is the HMAC key for HS256 tokens
	Secret string `env:"SECRET" default:""`

	// SigningKeyFile is the path to the RSA private key file, created on first use
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/authsvc.key"`

	// TokenDuration is the validity duration of session tokens
	TokenDuration time.Duration `env:"TOKEN_DURATION" default:"24h"`

	// BcryptCost is the work factor of password hashes
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// Validate implements config.Validator.
func (c AuthConfig) Validate() error {
	switch c.SigningMethod {
	case jwt.SigningMethodHS256.Alg():
		if len(c.Secret) < MinSecretLength {
			return fmt.Errorf("%w: need at least %d bytes", ErrNoSecret, MinSecretLength)
		}
	case jwt.SigningMethodPS256.Alg():
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSigningMethod, c.SigningMethod)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d: %w", c.BcryptCost, bcrypt.InvalidCostError(c.BcryptCost))
	}

	return nil
}

// AuthService authenticates users and issues and verifies stateless session tokens.
// It also manages the user records behind them.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Log      logging.Logger

	// Now is the clock used to issue and check tokens.
	Now func() time.Time

	keys      signingKeys
	dummyHash []byte
}

// NewAuthService creates a new AuthService on the given user repository and configuration.
// Returns an error if the signing key cannot be loaded.
func NewAuthService(userRepo user.Repository, cfg AuthConfig) (*AuthService, error) {
	keys, err := newSigningKeys(cfg)
	if err != nil {
		return nil, fmt.Errorf("signing keys: %w", err)
	}

	// Compared against when the username is unknown, so that path costs one hash too.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("storefront"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &AuthService{
		Config:    cfg,
		UserRepo:  userRepo,
		Log:       logging.GetLogger("svc.authsvc.auth_service"),
		Now:       time.Now,
		keys:      keys,
		dummyHash: dummyHash,
	}, nil
}

// RegisterUser creates a new active user account. The password is stored as a bcrypt hash.
// Returns domain.ErrUserAlreadyExists if the username is taken.
func (s *AuthService) RegisterUser(
	ctx context.Context,
	username, password string,
	profile domain.UserProfile,
) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.BcryptCost)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidPassword, err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        profile.Email,
		Phone:        profile.Phone,
		Avatar:       profile.Avatar,
		Status:       domain.UserStatusActive,
	}

	if err := s.UserRepo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username and password and issues a signed session token.
// Unknown users and wrong passwords both yield domain.ErrInvalidCredentials.
// Disabled accounts yield domain.ErrAccountDisabled, but only once the password matched.
func (s *AuthService) Authenticate(
	ctx context.Context,
	username, password string,
) (_ string, _ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "authenticate failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "authenticated")
		}
	}()

	user, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))

		return "", nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.Active() {
		return "", nil, domain.ErrAccountDisabled
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// IssueToken signs a session token for user, valid for the configured duration from now.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	claims := newSessionClaims(user, s.Now(), s.Config.TokenDuration)

	token, err := jwt.NewWithClaims(s.keys.method, claims).SignedString(s.keys.sign)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// VerifyToken checks the signature, algorithm and expiry of a session token and returns its content.
// It does not consult storage. Every failure yields domain.ErrInvalidAuthToken; the cause is only logged.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (domain.SessionToken, error) {
	claims := sessionClaims{now: s.Now} //nolint:exhaustruct
	parser := jwt.Parser{ValidMethods: []string{s.keys.method.Alg()}} //nolint:exhaustruct

	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.keys.verify, nil
	})
	if err != nil {
		s.Log.DebugContext(ctx, "token rejected", logging.Err(err))

		return domain.SessionToken{}, domain.ErrInvalidAuthToken
	}

	token, err := claims.sessionToken()
	if err != nil {
		s.Log.DebugContext(ctx, "token rejected", logging.Err(err))

		return domain.SessionToken{}, domain.ErrInvalidAuthToken
	}

	return token, nil
}

// GetProfile returns the user with the given id.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, ok, err := s.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

// UpdateProfile replaces the contact fields of a user and returns the updated user.
func (s *AuthService) UpdateProfile(
	ctx context.Context,
	userID int64,
	profile domain.UserProfile,
) (_ *domain.User, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "update profile failed", logging.Err(err))
		} else {
			s.Log.DebugContext(ctx, "profile updated")
		}
	}()

	if err := s.UserRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// SetUserStatus enables or disables a user account. Tokens already issued stay valid until they expire.
func (s *AuthService) SetUserStatus(ctx context.Context, userID int64, status domain.UserStatus) (err error) {
	log := s.Log.With(logging.Group("user", "id", userID, "status", status))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "set user status failed", logging.Err(err))
		} else {
			log.InfoContext(ctx, "user status set")
		}
	}()

	if _, err := domain.ParseUserStatus(string(status)); err != nil {
		return err
	}

	if err := s.UserRepo.SetStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	return nil
}
