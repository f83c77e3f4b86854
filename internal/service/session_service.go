package service

import (
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
)

// SessionService issues and checks UI sessions. The token handed to the
// client is the session ID fernet-encrypted with the configured key; the
// database row carries the authoritative expiry. Tokens are signed with the
// first key and verified against all of them, so keys can rotate without
// invalidating live sessions.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	keys        []*fernet.Key
	ttl         time.Duration
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService with the provided dependencies.
func NewSessionService(sessionRepo *repository.SessionRepository, keys []*fernet.Key, ttl time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		keys:        keys,
		ttl:         ttl,
		log:         log,
	}
}

// Login creates a session and returns its encrypted token.
func (s *SessionService) Login() (string, model.Session, error) {
	now := time.Now().UTC().Truncate(time.Second)
	session := model.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := fernet.EncryptAndSign([]byte(session.ID), s.keys[0])
	if err != nil {
		return "", model.Session{}, err
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", model.Session{}, err
	}

	s.log.Info().Str("sessionId", session.ID).Time("expiresAt", session.ExpiresAt).Msg("session created")
	return string(token), session, nil
}

// Validate decrypts a token and checks the stored session. Returns
// ErrInvalidSessionToken when the token fails verification and
// ErrSessionExpired when the row has lapsed; an expired row is removed on
// the spot.
func (s *SessionService) Validate(token string) (model.Session, error) {
	id := s.decrypt(token)
	if id == "" {
		return model.Session{}, apperrors.ErrInvalidSessionToken
	}

	session, err := s.sessionRepo.GetSessionOnID(id)
	if err != nil {
		return model.Session{}, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		if err := s.sessionRepo.DeleteSession(session.ID); err != nil {
			s.log.Warn().Err(err).Str("sessionId", session.ID).Msg("removing expired session failed")
		}
		return model.Session{}, apperrors.ErrSessionExpired
	}

	return session, nil
}

// Logout deletes the session behind the token.
func (s *SessionService) Logout(token string) error {
	id := s.decrypt(token)
	if id == "" {
		return apperrors.ErrInvalidSessionToken
	}

	if err := s.sessionRepo.DeleteSession(id); err != nil {
		return err
	}

	s.log.Info().Str("sessionId", id).Msg("session ended")
	return nil
}

// CleanupExpired removes every lapsed session row. The scheduler runs this
// periodically; Validate also removes rows it finds expired.
func (s *SessionService) CleanupExpired() (int64, error) {
	n, err := s.sessionRepo.DeleteExpiredSessions(time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("removed", n).Msg("expired sessions cleaned up")
	}
	return n, nil
}

// decrypt returns the session ID inside a token, or "" when the token fails
// verification or is older than the session TTL.
func (s *SessionService) decrypt(token string) string {
	if token == "" {
		return ""
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), s.ttl, s.keys)
	if msg == nil {
		return ""
	}
	return string(msg)
}
