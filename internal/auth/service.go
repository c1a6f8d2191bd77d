package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"birthday-inbox/internal/database"
	"birthday-inbox/internal/metrics"
	"birthday-inbox/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Service handles authentication logic
type Service struct {
	userRepo       *database.UserRepo
	sessionRepo    *database.SessionRepo
	auditRepo      *database.AuditRepo
	logger         *zap.Logger
	sessionTimeout time.Duration
}

// NewService creates a new auth service
func NewService(db *sql.DB, logger *zap.Logger, sessionTimeout time.Duration) *Service {
	if sessionTimeout <= 0 {
		sessionTimeout = 24 * time.Hour
	}
	return &Service{
		userRepo:       database.NewUserRepo(db),
		sessionRepo:    database.NewSessionRepo(db),
		auditRepo:      database.NewAuditRepo(db),
		logger:         logger,
		sessionTimeout: sessionTimeout,
	}
}

// LoginResponse represents a successful login
type LoginResponse struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account. The username is trimmed; a case variant of
// an existing username yields database.ErrUserAlreadyExists.
func (s *Service) Register(ctx context.Context, username, password, ipAddress string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: passwordHash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrUserAlreadyExists) {
			metrics.Registrations.WithLabelValues(metrics.ResultRejected).Inc()
			s.logger.Info("username already exists", zap.String("username", username))
			return nil, err
		}
		metrics.Registrations.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.Registrations.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("user registered", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	s.audit(ctx, user.Username, models.ActionRegister, user.Username, nil, ipAddress)

	return user, nil
}

// Login authenticates a user and creates a session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, ipAddress, userAgent string) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.authenticateLocal(ctx, username, req.Password)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}
	if user == nil {
		metrics.Logins.WithLabelValues(metrics.ResultRejected).Inc()
		s.logger.Info("invalid credentials", zap.String("username", username), zap.String("ip", ipAddress))
		s.audit(ctx, username, models.ActionLoginFailed, username, nil, ipAddress)
		return nil, ErrInvalidCredentials
	}

	token, session, err := s.sessionRepo.Create(ctx, user.ID, ipAddress, userAgent, s.sessionTimeout)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("login successful", zap.String("username", user.Username))
	s.audit(ctx, user.Username, models.ActionLogin, user.Username, nil, ipAddress)

	return &LoginResponse{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// authenticateLocal verifies credentials against the database. A nil user
// with a nil error means the credentials did not match.
func (s *Service) authenticateLocal(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	valid, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, nil
	}

	return user, nil
}

// Logout invalidates a session
func (s *Service) Logout(ctx context.Context, token, username, ipAddress string) error {
	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return err
	}
	s.logger.Info("logged out", zap.String("username", username))
	s.audit(ctx, username, models.ActionLogout, username, nil, ipAddress)
	return nil
}

// ResetPassword overwrites the password of an existing user and revokes the
// user's sessions. Only the username identifies the account.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword, ipAddress string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || newPassword == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			metrics.PasswordResets.WithLabelValues(metrics.ResultRejected).Inc()
			s.logger.Info("password reset for unknown user", zap.String("username", username))
		} else {
			metrics.PasswordResets.WithLabelValues(metrics.ResultFailure).Inc()
		}
		return nil, err
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		metrics.PasswordResets.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		metrics.PasswordResets.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("update password: %w", err)
	}

	revoked, err := s.sessionRepo.DeleteAllForUser(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to revoke sessions after password reset",
			zap.String("username", user.Username), zap.Error(err))
	}

	metrics.PasswordResets.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("password updated", zap.String("username", user.Username), zap.Int64("sessions_revoked", revoked))
	s.audit(ctx, user.Username, models.ActionPasswordReset, user.Username, nil, ipAddress)

	return user, nil
}

// ValidateToken validates a session token and returns the user
func (s *Service) ValidateToken(ctx context.Context, token string) (*models.User, *models.Session, error) {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// PurgeExpiredSessions removes sessions past their expiry
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

func (s *Service) audit(ctx context.Context, username, action, target string, details interface{}, ipAddress string) {
	if err := s.auditRepo.Log(ctx, username, action, target, details, ipAddress); err != nil {
		// Audit failures never fail the request
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
