package service_test

import (
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
	"github.com/caffeinepub/trade-setup-analyzer/internal/testutil"
)

func TestLoginIssuesValidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSessionService(t, db, time.Hour)

	token, session, err := svc.Login()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = uuid.Parse(session.ID)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.Equal(session.CreatedAt.Add(time.Hour)))

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSessionService(t, db, time.Hour)

	_, err := svc.Validate("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSessionToken)

	_, err = svc.Validate("not-a-fernet-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSessionToken)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSessionService(t, db, time.Hour)

	foreign, err := fernet.EncryptAndSign([]byte(uuid.New().String()), testutil.MakeSessionKey(t))
	require.NoError(t, err)

	_, err = svc.Validate(string(foreign))
	assert.ErrorIs(t, err, apperrors.ErrInvalidSessionToken)
}

func TestValidateUnknownSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	key := testutil.MakeSessionKey(t)
	svc := service.NewSessionService(repository.NewSessionRepository(db), []*fernet.Key{key}, time.Hour, testutil.NopLogger())

	token, err := fernet.EncryptAndSign([]byte(uuid.New().String()), key)
	require.NoError(t, err)

	_, err = svc.Validate(string(token))
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestValidateRemovesExpiredSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	key := testutil.MakeSessionKey(t)
	repo := repository.NewSessionRepository(db)
	svc := service.NewSessionService(repo, []*fernet.Key{key}, time.Hour, testutil.NopLogger())

	// Row lapsed an hour ago; the token itself is fresh.
	now := time.Now().UTC().Truncate(time.Second)
	session := model.Session{
		ID:        uuid.New().String(),
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(session))

	token, err := fernet.EncryptAndSign([]byte(session.ID), key)
	require.NoError(t, err)

	_, err = svc.Validate(string(token))
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	_, err = svc.Validate(string(token))
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestLogoutDeletesSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSessionService(t, db, time.Hour)

	token, _, err := svc.Login()
	require.NoError(t, err)

	require.NoError(t, svc.Logout(token))

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	assert.ErrorIs(t, svc.Logout(token), apperrors.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Logout("garbage"), apperrors.ErrInvalidSessionToken)
}

func TestCleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	key := testutil.MakeSessionKey(t)
	repo := repository.NewSessionRepository(db)
	svc := service.NewSessionService(repo, []*fernet.Key{key}, time.Hour, testutil.NopLogger())

	now := time.Now().UTC().Truncate(time.Second)
	live := model.Session{ID: uuid.New().String(), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(live))
	for i := 0; i < 2; i++ {
		expired := model.Session{
			ID:        uuid.New().String(),
			CreatedAt: now.Add(-3 * time.Hour),
			ExpiresAt: now.Add(-time.Hour),
		}
		require.NoError(t, repo.Create(expired))
	}

	removed, err := svc.CleanupExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, err = repo.GetSessionOnID(live.ID)
	assert.NoError(t, err)
}
