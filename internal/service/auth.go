package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/hash"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	Tokens        *tokens.Issuer
	Now           func() time.Time
	CheckPassword func(hash, password string) bool
}

// decoyHash is compared against when the login identifier matches nobody,
// so both failure paths pay for one bcrypt comparison.
var decoyHash = sync.OnceValue(func() string {
	h, err := hash.HashPassword("esscera-decoy-password")
	if err != nil {
		panic(fmt.Sprintf("decoy password hash: %v", err))
	}
	return h
})

// Client describes where a session was opened from.
type Client struct {
	Device string
	IP     string
}

type SignupInput struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) checkPassword(hashed, password string) bool {
	if s.CheckPassword != nil {
		return s.CheckPassword(hashed, password)
	}
	return hash.CheckPassword(hashed, password)
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput, client Client) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, invalid("Email, username, and password are required")
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	taken, err := s.Repo.UserTaken(ctx, in.Email, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("user with this email or username already exists: %w", ErrConflict)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user with this email or username already exists: %w", ErrConflict)
		}
		return nil, err
	}

	l.Info("signup_success", "user_id", user.ID)
	return s.issue(ctx, user, client)
}

// Login accepts either the username or the email as identifier. Unknown
// users and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, identifier, password string, client Client) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalid("Username and password are required")
	}

	user, err := s.Repo.FindUserByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.checkPassword(decoyHash(), password)
			l.Warn("login_failed", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.checkPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user, client)
}

func (s *AuthService) issue(ctx context.Context, user *models.User, client Client) (*AuthResult, error) {
	token, exp, err := s.Tokens.Create(tokens.Payload{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Repo.CreateSession(ctx, &models.Session{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(token),
		Device:    client.Device,
		IPAddress: client.IP,
		ExpiresAt: exp,
	}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// GetSession resolves a token to its user. It returns nil without error
// for a missing, malformed or expired token, for a revoked session, and
// for a deleted account. Expired session rows are removed on sight.
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.User, error) {
	claims := s.Tokens.Verify(token)
	if claims == nil {
		return nil, nil
	}

	sess, err := s.Repo.FindSessionByTokenHash(ctx, tokens.Sha256Hex(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !sess.ExpiresAt.After(s.now()) {
		if err := s.Repo.DeleteSessionByID(ctx, sess.ID); err != nil {
			logging.FromContext(ctx).Warn("expired_session_cleanup_failed", "session_id", sess.ID, "error", err)
		}
		return nil, nil
	}

	if sess.UserID.String() != claims.UserID {
		return nil, nil
	}

	user, err := s.Repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the session behind token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := s.Repo.DeleteSessionByTokenHash(ctx, tokens.Sha256Hex(token))
	return err
}

func (s *AuthService) LogoutAllDevices(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Repo.DeleteSessionsByUser(ctx, userID)
	if err == nil {
		logging.FromContext(ctx).Info("sessions_revoked", "user_id", userID, "count", n)
	}
	return n, err
}

func (s *AuthService) LogoutEveryone(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteAllSessions(ctx)
	if err == nil {
		logging.FromContext(ctx).Info("sessions_revoked", "scope", "all", "count", n)
	}
	return n, err
}

func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpiredSessions(ctx, s.now())
}

func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	return s.Repo.ListSessionsByUser(ctx, userID)
}
