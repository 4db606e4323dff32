package authsvc_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users map[string]*domain.User
	err   error
	m     sync.Mutex
}

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) CreateUser(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}

	user.ID = int64(len(m.users) + 1)
	user.CreatedAt = time.Now()
	m.users[user.Username] = user

	return nil
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}

	user, exists := m.users[username]

	return user, exists, nil
}

func (m *mockUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}

	for _, user := range m.users {
		if user.ID == id {
			return user, true, nil
		}
	}

	return nil, false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, profile domain.UserProfile) error {
	user, ok, err := m.GetUserByID(ctx, id)
	if err != nil {
		return err
	} else if !ok {
		return domain.ErrUserNotFound
	}

	m.m.Lock()
	defer m.m.Unlock()

	user.Email, user.Phone, user.Avatar = profile.Email, profile.Phone, profile.Avatar

	return nil
}

func (m *mockUserRepository) SetStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	user, ok, err := m.GetUserByID(ctx, id)
	if err != nil {
		return err
	} else if !ok {
		return domain.ErrUserNotFound
	}

	m.m.Lock()
	defer m.m.Unlock()

	user.Status = status

	return nil
}

var ErrRepoError = errors.New("repository error")

type clock struct {
	now time.Time
	m   sync.Mutex
}

func (c *clock) Now() time.Time {
	c.m.Lock()
	defer c.m.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.m.Lock()
	defer c.m.Unlock()

	c.now = c.now.Add(d)
}

func testConfig() authsvc.AuthConfig {
	return authsvc.AuthConfig{
		SigningMethod: "HS256",
		Secret:        testSecret,
		TokenDuration: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}
}

func setupTestService(t *testing.T) (*authsvc.AuthService, *mockUserRepository, *clock) {
	t.Helper()

	repo := newMockUserRepo()

	svc, err := authsvc.NewAuthService(repo, testConfig())
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}

	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc.Now = clk.Now

	return svc, repo, clk
}

//nolint:paralleltest
func TestAuthService_RegisterUser(t *testing.T) {
	svc, mockRepo, _ := setupTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		repoErr  error
		wantErr  error
	}{
		{
			name:     "successful registration",
			username: "newuser",
			password: "password123",
			wantErr:  nil,
		},
		{
			name:     "duplicate username",
			username: "existinguser",
			password: "password123",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:     "password too long",
			username: "longpass",
			password: strings.Repeat("x", 73),
			wantErr:  domain.ErrInvalidPassword,
		},
		{
			name:     "repository error",
			username: "erroruser",
			password: "password123",
			repoErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "duplicate username" {
				_, _ = svc.RegisterUser(context.Background(), tt.username, "oldpass", domain.UserProfile{})
			}

			mockRepo.err = tt.repoErr

			user, err := svc.RegisterUser(context.Background(), tt.username, tt.password, domain.UserProfile{
				Email: tt.username + "@example.com",
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.UserStatusActive, user.Status)
			assert.Equal(t, tt.username+"@example.com", user.Email)
			assert.NotEqual(t, []byte(tt.password), user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(tt.password)))
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, mockRepo, clk := setupTestService(t)
	ctx := context.Background()

	registered, err := svc.RegisterUser(ctx, "testuser", "testpass123", domain.UserProfile{})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "disabled", "testpass123", domain.UserProfile{})
	require.NoError(t, err)
	mockRepo.users["disabled"].Status = domain.UserStatusDisabled

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"successful login", "testuser", "testpass123", nil},
		{"wrong password", "testuser", "wrongpass", domain.ErrInvalidCredentials},
		{"user not found", "nonexistent", "anypass", domain.ErrInvalidCredentials},
		{"disabled account", "disabled", "testpass123", domain.ErrAccountDisabled},
		{"disabled account wrong password", "disabled", "wrongpass", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, user, err := svc.Authenticate(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)

			session, err := svc.VerifyToken(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, registered.ID, session.UserID)
			assert.Equal(t, "testuser", session.Username)
			assert.Equal(t, clk.Now().Unix(), session.IssuedAt)
			assert.Equal(t, clk.Now().Add(time.Hour).Unix(), session.ExpiresAt)
		})
	}
}

func TestAuthService_AuthenticateRepoError(t *testing.T) {
	t.Parallel()

	svc, mockRepo, _ := setupTestService(t)
	mockRepo.err = ErrRepoError

	_, _, err := svc.Authenticate(context.Background(), "testuser", "testpass")
	require.ErrorIs(t, err, ErrRepoError)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_VerifyToken(t *testing.T) {
	t.Parallel()

	svc, _, clk := setupTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "testuser", "testpass", domain.UserProfile{})
	require.NoError(t, err)

	validToken, _, err := svc.Authenticate(ctx, "testuser", "testpass")
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.Secret = strings.Repeat("z", 32)
	otherSvc, err := authsvc.NewAuthService(newMockUserRepo(), otherCfg)
	require.NoError(t, err)
	otherSvc.Now = clk.Now

	foreignToken, err := otherSvc.IssueToken(&domain.User{ID: 1, Username: "testuser"})
	require.NoError(t, err)

	parts := strings.Split(validToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"invalid token format", "invalid-token"},
		{"empty token", ""},
		{"foreign signature", foreignToken},
		{"tampered payload", tampered},
		{"unsigned", "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiIxIn0."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.VerifyToken(ctx, tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidAuthToken)
		})
	}

	session, err := svc.VerifyToken(ctx, validToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.UserID)
}

func TestAuthService_TokenExpiry(t *testing.T) {
	t.Parallel()

	svc, _, clk := setupTestService(t)
	ctx := context.Background()

	token, err := svc.IssueToken(&domain.User{ID: 7, Username: "expiring"})
	require.NoError(t, err)

	clk.Advance(time.Hour)

	_, err = svc.VerifyToken(ctx, token)
	require.NoError(t, err, "token is valid up to and including its expiry second")

	clk.Advance(time.Second)

	_, err = svc.VerifyToken(ctx, token)
	require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestAuthService_RejectsNonNumericSubject(t *testing.T) {
	t.Parallel()

	svc, _, _ := setupTestService(t)

	token, err := svc.IssueToken(&domain.User{ID: 0, Username: "nobody"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestAuthService_Profile(t *testing.T) {
	t.Parallel()

	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "testuser", "testpass", domain.UserProfile{Email: "old@example.com"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, domain.UserProfile{Email: "new@example.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "555", updated.Phone)

	_, err = svc.GetProfile(ctx, 999)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, svc.SetUserStatus(ctx, user.ID, domain.UserStatusDisabled))

	_, _, err = svc.Authenticate(ctx, "testuser", "testpass")
	require.ErrorIs(t, err, domain.ErrAccountDisabled)

	require.ErrorIs(t, svc.SetUserStatus(ctx, user.ID, "banned"), domain.ErrInvalidUserStatus)
	require.ErrorIs(t, svc.SetUserStatus(ctx, 999, domain.UserStatusActive), domain.ErrUserNotFound)
}

func TestAuthService_PS256(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SigningMethod = "PS256"
	cfg.Secret = ""
	cfg.SigningKeyFile = filepath.Join(t.TempDir(), "keys", "auth.key")

	svc, err := authsvc.NewAuthService(newMockUserRepo(), cfg)
	require.NoError(t, err)

	token, err := svc.IssueToken(&domain.User{ID: 3, Username: "rsa"})
	require.NoError(t, err)

	session, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), session.UserID)

	// A second service reuses the generated key file.
	reloaded, err := authsvc.NewAuthService(newMockUserRepo(), cfg)
	require.NoError(t, err)

	_, err = reloaded.VerifyToken(context.Background(), token)
	require.NoError(t, err)

	// HS256 tokens are rejected by a PS256 verifier.
	hmacSvc, err := authsvc.NewAuthService(newMockUserRepo(), testConfig())
	require.NoError(t, err)

	hmacToken, err := hmacSvc.IssueToken(&domain.User{ID: 3, Username: "rsa"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(context.Background(), hmacToken)
	assert.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestAuthConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*authsvc.AuthConfig)
		wantErr error
	}{
		{"valid", func(*authsvc.AuthConfig) {}, nil},
		{"short secret", func(c *authsvc.AuthConfig) { c.Secret = "short" }, authsvc.ErrNoSecret},
		{"unknown method", func(c *authsvc.AuthConfig) { c.SigningMethod = "none" }, authsvc.ErrUnknownSigningMethod},
		{"ps256 without secret", func(c *authsvc.AuthConfig) {
			c.SigningMethod = "PS256"
			c.Secret = ""
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)

			if tt.wantErr == nil {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
			}
		})
	}
}
