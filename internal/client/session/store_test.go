package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/client/storage"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewStore(ctx, db, []byte("local-secret-local-secret-local-"))
	require.NoError(t, err)
	return s, db
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	in := models.Session{AccessToken: "a1", RefreshToken: "r1", UserID: "7"}
	require.NoError(t, s.Save(ctx, in))

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeySession)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "r1", "refresh token must not be stored in clear text")

	reopened, err := NewStore(ctx, db, []byte("local-secret-local-secret-local-"))
	require.NoError(t, err)
	got, ok, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)
	assert.Equal(t, "a1", reopened.AccessToken())
	assert.Equal(t, "r1", reopened.RefreshToken())
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := setupStore(t)

	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_UpdateAccessToken_CompareAndSwap(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, models.Session{AccessToken: "a1", RefreshToken: "r1", UserID: "7"}))

	applied, err := s.UpdateAccessToken(ctx, "a1", "a2")
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, "a2", s.AccessToken())

	// A second refresher that started from a1 lost the race: its token is dropped.
	applied, err = s.UpdateAccessToken(ctx, "a1", "stale")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "a2", s.AccessToken())

	got, _, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
}

func TestStore_UpdateAccessToken_Concurrent(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, models.Session{AccessToken: "a1", RefreshToken: "r1"}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, next := range []string{"x", "y", "z"} {
		wg.Add(1)
		go func(next string) {
			defer wg.Done()
			ok, err := s.UpdateAccessToken(ctx, "a1", next)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}(next)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Contains(t, []string{"x", "y", "z"}, s.AccessToken())
}

func TestStore_UpdateAccessToken_NoSession(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.UpdateAccessToken(context.Background(), "", "a2")
	require.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestStore_ClearNotifies(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, models.Session{AccessToken: "a", RefreshToken: "r"}))

	called := 0
	s.OnClear(func() { called++ })
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, 1, called)
	assert.Empty(t, s.AccessToken())
	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	got, ok := TokenExpiry(tok)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
	_, ok = TokenExpiry("")
	assert.False(t, ok)
}
