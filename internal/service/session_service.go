package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrUserDisabled       = errors.New("user is disabled")
)

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type SessionView struct {
	ID         uint       `json:"id"`
	UserAgent  string     `json:"user_agent"`
	IP         string     `json:"ip"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Current    bool       `json:"current"`
}

type SessionServiceInterface interface {
	Login(ctx context.Context, email, password, userAgent, ip string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ListActiveSessions(userID uint, currentHash string) ([]SessionView, error)
	RevokeSession(ctx context.Context, userID, sessionID uint) (bool, error)
}

type SessionService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtMgr     *security.JWTManager
	pepper     string
	accessTTL  time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

func NewSessionService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	jwtMgr *security.JWTManager,
	pepper string,
	accessTTL, sessionTTL time.Duration,
) *SessionService {
	return &SessionService{
		users:      users,
		sessions:   sessions,
		jwtMgr:     jwtMgr,
		pepper:     pepper,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) Login(ctx context.Context, email, password, userAgent, ip string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		return nil, ErrUserDisabled
	}

	refreshToken, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	session := &domain.Session{
		UserID:           user.ID,
		RefreshTokenHash: security.HashRefreshToken(refreshToken, s.pepper),
		UserAgent:        userAgent,
		IP:               ip,
		ExpiresAt:        now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	accessToken, err := s.jwtMgr.SignAccessToken(user.ID, user.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	hash := security.HashRefreshToken(refreshToken, s.pepper)
	session, err := s.sessions.FindByHash(hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	now := s.now()
	if !session.Active(now) {
		return nil, ErrSessionExpired
	}
	user, err := s.users.FindByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, ErrUserDisabled
	}
	if err := s.sessions.TouchLastUsed(session.ID, now); err != nil {
		return nil, err
	}
	accessToken, err := s.jwtMgr.SignAccessToken(user.ID, user.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	hash := security.HashRefreshToken(refreshToken, s.pepper)
	err := s.sessions.RevokeByHash(hash)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *SessionService) ListActiveSessions(userID uint, currentHash string) ([]SessionView, error) {
	sessions, err := s.sessions.ListActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, SessionView{
			ID:         sess.ID,
			UserAgent:  sess.UserAgent,
			IP:         sess.IP,
			CreatedAt:  sess.CreatedAt,
			LastUsedAt: sess.LastUsedAt,
			ExpiresAt:  sess.ExpiresAt,
			Current:    currentHash != "" && sess.RefreshTokenHash == currentHash,
		})
	}
	return views, nil
}

func (s *SessionService) RevokeSession(ctx context.Context, userID, sessionID uint) (bool, error) {
	return s.sessions.RevokeByIDForUser(userID, sessionID)
}

// CurrentSessionHash hashes a raw refresh token for session comparison.
func (s *SessionService) CurrentSessionHash(refreshToken string) string {
	if refreshToken == "" {
		return ""
	}
	return security.HashRefreshToken(refreshToken, s.pepper)
}
