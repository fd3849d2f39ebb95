package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"slidegen_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates database operations during testing.
type mockUserRepository struct {
	// CreateFunc is called when the Create method is invoked.
	CreateFunc func(ctx context.Context, user *entity.User) error
	// FindByEmailFunc is called when the FindByEmail method is invoked.
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	// FindByIDFunc is called when the FindByID method is invoked.
	FindByIDFunc func(ctx context.Context, id uint) (*entity.User, error)
	// UpdateGenAIKeyFunc is called when the UpdateGenAIKey method is invoked.
	UpdateGenAIKeyFunc func(ctx context.Context, userID uint, encrypted string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) UpdateGenAIKey(ctx context.Context, userID uint, encrypted string) error {
	if m.UpdateGenAIKeyFunc != nil {
		return m.UpdateGenAIKeyFunc(ctx, userID, encrypted)
	}
	return nil
}

// mockSessionRepository is a mock implementation of the SessionRepository interface.
// It records created sessions so tests can inspect them.
type mockSessionRepository struct {
	CreateFunc               func(ctx context.Context, session *entity.Session) error
	FindByIDFunc             func(ctx context.Context, id string) (*entity.Session, error)
	RevokeFunc               func(ctx context.Context, id string) error
	CountByUserIDFunc        func(ctx context.Context, userID uint) (int64, error)
	DeleteOldestByUserIDFunc func(ctx context.Context, userID uint) error

	created      []*entity.Session
	revoked      []string
	deleteOldest int
}

func (m *mockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	m.created = append(m.created, session)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrSessionNotFound
}

func (m *mockSessionRepository) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	return nil, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string) error {
	m.revoked = append(m.revoked, id)
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockSessionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockSessionRepository) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	m.deleteOldest++
	if m.DeleteOldestByUserIDFunc != nil {
		return m.DeleteOldestByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockJWTGenerator is a mock implementation of the JWTGenerator interface.
type mockJWTGenerator struct {
	// GenerateTokenFunc is called when the GenerateToken method is invoked.
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func (m *mockJWTGenerator) TTL() time.Duration {
	return 15 * time.Minute
}

// mockVault is a mock implementation of the CredentialVault interface.
// It prefixes values instead of encrypting so tests can assert both directions.
type mockVault struct {
	EncryptFunc func(plaintext string) (string, error)
	DecryptFunc func(ciphertext string) (string, error)
}

func (m *mockVault) Encrypt(plaintext string) (string, error) {
	if m.EncryptFunc != nil {
		return m.EncryptFunc(plaintext)
	}
	return "enc:" + plaintext, nil
}

func (m *mockVault) Decrypt(ciphertext string) (string, error) {
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ciphertext)
	}
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errors.New("invalid ciphertext")
	}
	return ciphertext[4:], nil
}

// newTestUsecase wires an authUsecase with default mocks.
func newTestUsecase(users *mockUserRepository, sessions *mockSessionRepository) *authUsecase {
	return NewAuthUsecase(users, sessions, &mockJWTGenerator{}, &mockVault{})
}

func TestAuthUsecase_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("successful signup", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				// Verify that the password is hashed
				if len(user.Password) == 0 || user.Password == "password123" {
					t.Errorf("password is not hashed")
				}
				// Verify that it's a valid bcrypt hash
				if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
					t.Errorf("invalid bcrypt hash: %v", err)
				}
				return nil
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		err := uc.Signup(ctx, "test@example.com", "password123")

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("password too short", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				t.Error("Create should not be called for an invalid password")
				return nil
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		err := uc.Signup(ctx, "test@example.com", "short")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})

	t.Run("repository create failure", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return expectedErr
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		err := uc.Signup(ctx, "test@example.com", "password123")

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error '%v', got: %v", expectedErr, err)
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()

	// Hashed password for testing
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	testUser := &entity.User{
		ID:       1,
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}
	findTestUser := func(ctx context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			return testUser, nil
		}
		return nil, errors.New("user not found")
	}

	t.Run("successful login", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockSessions := &mockSessionRepository{}
		mockJWT := &mockJWTGenerator{
			GenerateTokenFunc: func(userID uint, email string) (string, error) {
				if userID != testUser.ID || email != testUser.Email {
					t.Errorf("unexpected userID or email: got userID=%d, email=%s", userID, email)
				}
				return "mock-jwt-token", nil
			},
		}

		uc := NewAuthUsecase(mockRepo, mockSessions, mockJWT, &mockVault{})
		pair, err := uc.Login(ctx, "test@example.com", "password123", "Mozilla/5.0", "192.0.2.1")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pair.AccessToken != "mock-jwt-token" {
			t.Errorf("expected access token 'mock-jwt-token', got: '%s'", pair.AccessToken)
		}
		if len(pair.RefreshToken) != 64 {
			t.Errorf("expected 64-character refresh token, got %d characters", len(pair.RefreshToken))
		}
		if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
			t.Errorf("unexpected expires_in: %d", pair.ExpiresIn)
		}

		if len(mockSessions.created) != 1 {
			t.Fatalf("expected 1 created session, got %d", len(mockSessions.created))
		}
		session := mockSessions.created[0]
		if session.ID != pair.RefreshToken {
			t.Error("session ID does not match the refresh token")
		}
		if session.UserID != testUser.ID {
			t.Errorf("unexpected session user ID: %d", session.UserID)
		}
		if session.UserAgent != "Mozilla/5.0" || session.IPAddress != "192.0.2.1" {
			t.Errorf("session metadata not recorded: %+v", session)
		}
		ttl := time.Until(session.ExpiresAt)
		if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
			t.Errorf("unexpected session lifetime: %v", ttl)
		}
	})

	t.Run("user not found", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, errors.New("user not found")
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		_, err := uc.Login(ctx, "wrong@example.com", "password123", "", "")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
		expectedErrMsg := "invalid email or password"
		if err.Error() != expectedErrMsg {
			t.Errorf("expected error message '%s', got: '%s'", expectedErrMsg, err.Error())
		}
	})

	t.Run("incorrect password", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		_, err := uc.Login(ctx, "test@example.com", "wrong-password", "", "")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
		expectedErrMsg := "invalid email or password"
		if err.Error() != expectedErrMsg {
			t.Errorf("expected error message '%s', got: '%s'", expectedErrMsg, err.Error())
		}
	})

	t.Run("JWT generation failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockJWT := &mockJWTGenerator{
			GenerateTokenFunc: func(userID uint, email string) (string, error) {
				return "", errors.New("failed to sign token")
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockSessionRepository{}, mockJWT, &mockVault{})
		_, err := uc.Login(ctx, "test@example.com", "password123", "", "")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
		expectedErrMsg := "failed to generate token: failed to sign token"
		if err.Error() != expectedErrMsg {
			t.Errorf("expected error message '%s', got: '%s'", expectedErrMsg, err.Error())
		}
	})

	t.Run("session limit evicts the oldest session", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockSessions := &mockSessionRepository{
			CountByUserIDFunc: func(ctx context.Context, userID uint) (int64, error) {
				return 5, nil
			},
		}

		uc := newTestUsecase(mockRepo, mockSessions)
		_, err := uc.Login(ctx, "test@example.com", "password123", "", "")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mockSessions.deleteOldest != 1 {
			t.Errorf("expected 1 eviction, got %d", mockSessions.deleteOldest)
		}
		if len(mockSessions.created) != 1 {
			t.Errorf("expected 1 created session, got %d", len(mockSessions.created))
		}
	})

	t.Run("session create failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockSessions := &mockSessionRepository{
			CreateFunc: func(ctx context.Context, session *entity.Session) error {
				return errors.New("storage down")
			},
		}

		uc := newTestUsecase(mockRepo, mockSessions)
		_, err := uc.Login(ctx, "test@example.com", "password123", "", "")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})
}

func TestAuthUsecase_Refresh(t *testing.T) {
	ctx := context.Background()

	testUser := &entity.User{ID: 7, Email: "refresh@example.com"}
	activeSession := func() *entity.Session {
		return &entity.Session{
			ID:        "old-refresh-token",
			UserID:    testUser.ID,
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
	}

	t.Run("successful refresh rotates the session", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				if id != testUser.ID {
					t.Errorf("unexpected user ID: %d", id)
				}
				return testUser, nil
			},
		}
		mockSessions := &mockSessionRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Session, error) {
				if id != "old-refresh-token" {
					return nil, ErrSessionNotFound
				}
				return activeSession(), nil
			},
		}

		uc := newTestUsecase(mockRepo, mockSessions)
		pair, err := uc.Refresh(ctx, "old-refresh-token", "agent", "192.0.2.9")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pair.RefreshToken == "old-refresh-token" {
			t.Error("refresh token was not rotated")
		}
		if len(mockSessions.revoked) != 1 || mockSessions.revoked[0] != "old-refresh-token" {
			t.Errorf("old session was not revoked: %v", mockSessions.revoked)
		}
		if len(mockSessions.created) != 1 {
			t.Fatalf("expected 1 created session, got %d", len(mockSessions.created))
		}
		if mockSessions.created[0].ID != pair.RefreshToken {
			t.Error("new session ID does not match the new refresh token")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockSessionRepository{})
		_, err := uc.Refresh(ctx, "no-such-token", "", "")

		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken, got: %v", err)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		revokedAt := time.Now().Add(-time.Minute)
		mockSessions := &mockSessionRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Session, error) {
				s := activeSession()
				s.RevokedAt = &revokedAt
				return s, nil
			},
		}

		uc := newTestUsecase(&mockUserRepository{}, mockSessions)
		_, err := uc.Refresh(ctx, "old-refresh-token", "", "")

		if !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("expected ErrSessionRevoked, got: %v", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		mockSessions := &mockSessionRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Session, error) {
				s := activeSession()
				s.ExpiresAt = time.Now().Add(-time.Minute)
				return s, nil
			},
		}

		uc := newTestUsecase(&mockUserRepository{}, mockSessions)
		_, err := uc.Refresh(ctx, "old-refresh-token", "", "")

		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got: %v", err)
		}
	})

	t.Run("user no longer exists", func(t *testing.T) {
		mockSessions := &mockSessionRepository{
			FindByIDFunc: func(ctx context.Context, id string) (*entity.Session, error) {
				return activeSession(), nil
			},
		}

		uc := newTestUsecase(&mockUserRepository{}, mockSessions)
		_, err := uc.Refresh(ctx, "old-refresh-token", "", "")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})
}

func TestAuthUsecase_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("successful logout", func(t *testing.T) {
		mockSessions := &mockSessionRepository{
			RevokeFunc: func(ctx context.Context, id string) error { return nil },
		}

		uc := newTestUsecase(&mockUserRepository{}, mockSessions)
		err := uc.Logout(ctx, "some-refresh-token")

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(mockSessions.revoked) != 1 || mockSessions.revoked[0] != "some-refresh-token" {
			t.Errorf("session was not revoked: %v", mockSessions.revoked)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockSessionRepository{})
		err := uc.Logout(ctx, "no-such-token")

		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken, got: %v", err)
		}
	})
}

func TestAuthUsecase_GenAICredential(t *testing.T) {
	ctx := context.Background()

	t.Run("set encrypts before storing", func(t *testing.T) {
		var stored string
		mockRepo := &mockUserRepository{
			UpdateGenAIKeyFunc: func(ctx context.Context, userID uint, encrypted string) error {
				if userID != 3 {
					t.Errorf("unexpected user ID: %d", userID)
				}
				stored = encrypted
				return nil
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		err := uc.SetGenAICredential(ctx, 3, "sk-genai-abc123")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored != "enc:sk-genai-abc123" {
			t.Errorf("stored value is not the encrypted form: %q", stored)
		}
	})

	t.Run("set propagates encryption failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			UpdateGenAIKeyFunc: func(ctx context.Context, userID uint, encrypted string) error {
				t.Error("UpdateGenAIKey should not be called when encryption fails")
				return nil
			},
		}
		vault := &mockVault{
			EncryptFunc: func(plaintext string) (string, error) {
				return "", errors.New("bad key")
			},
		}

		uc := NewAuthUsecase(mockRepo, &mockSessionRepository{}, &mockJWTGenerator{}, vault)
		err := uc.SetGenAICredential(ctx, 3, "sk-genai-abc123")

		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})

	t.Run("get decrypts the stored key", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				return &entity.User{ID: id, GenAIKeyEnc: "enc:sk-genai-abc123"}, nil
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		key, err := uc.GenAICredential(ctx, 3)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "sk-genai-abc123" {
			t.Errorf("unexpected key: %q", key)
		}
	})

	t.Run("get returns empty string when no key is stored", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByIDFunc: func(ctx context.Context, id uint) (*entity.User, error) {
				return &entity.User{ID: id}, nil
			},
		}

		uc := newTestUsecase(mockRepo, &mockSessionRepository{})
		key, err := uc.GenAICredential(ctx, 3)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "" {
			t.Errorf("expected empty key, got: %q", key)
		}
	})
}
