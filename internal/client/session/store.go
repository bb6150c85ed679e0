// Package session owns the single persisted authentication record.
//
// Two independent timing sources write the access token: the HTTP client's
// refresh-on-401 hook and the proactive refresh ticker. Both go through
// UpdateAccessToken, a compare-and-swap that re-reads the persisted record
// inside a transaction and only writes when it still holds the token the
// caller refreshed from. Last successful refresh wins; a stale one is dropped.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/dmitrijs2005/pdftranslator/internal/cryptox"
	"github.com/dmitrijs2005/pdftranslator/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	key     []byte
	current models.Session
	onClear []func()
}

// NewStore derives the sealing key from secret and the per-database salt
// (created on first use) and returns a store with no session loaded.
func NewStore(ctx context.Context, db *sql.DB, secret []byte) (*Store, error) {
	repo := metadata.NewSQLiteRepository(db)

	salt, err := repo.Get(ctx, metadata.KeySealSalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		if salt, err = cryptox.RandomBytes(16); err != nil {
			return nil, err
		}
		if err := repo.Set(ctx, metadata.KeySealSalt, salt); err != nil {
			return nil, err
		}
	}

	return &Store{db: db, key: cryptox.DeriveKey(secret, salt)}, nil
}

// Key returns the sealing key so other local secrets (the API key) can be
// stored the same way.
func (s *Store) Key() []byte {
	return s.key
}

// Load reads the persisted session into memory. ok is false when there is
// none.
func (s *Store) Load(ctx context.Context) (models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.read(ctx, metadata.NewSQLiteRepository(s.db))
	if err != nil {
		return models.Session{}, false, err
	}
	s.current = sess
	return sess, sess.Valid(), nil
}

// Current returns the in-memory copy of the session.
func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) AccessToken() string {
	return s.Current().AccessToken
}

func (s *Store) RefreshToken() string {
	return s.Current().RefreshToken
}

// Save persists sess (login) and makes it current.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, metadata.NewSQLiteRepository(s.db), sess); err != nil {
		return err
	}
	s.current = sess
	return nil
}

// UpdateAccessToken stores next only if the persisted access token still
// equals expected. It reports whether the write was applied; when it was not,
// the in-memory copy is resynchronised with what is persisted.
func (s *Store) UpdateAccessToken(ctx context.Context, expected, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type result struct {
		applied bool
		sess    models.Session
	}

	res, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (result, error) {
		repo := metadata.NewSQLiteRepository(tx)

		persisted, err := s.read(ctx, repo)
		if err != nil {
			return result{}, err
		}
		if !persisted.Valid() {
			return result{}, common.ErrNotLoggedIn
		}
		if persisted.AccessToken != expected {
			return result{applied: false, sess: persisted}, nil
		}

		persisted.AccessToken = next
		if err := s.write(ctx, repo, persisted); err != nil {
			return result{}, err
		}
		return result{applied: true, sess: persisted}, nil
	})
	if err != nil {
		return false, err
	}

	s.current = res.sess
	return res.applied, nil
}

// Clear removes the persisted session and notifies OnClear subscribers.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := metadata.NewSQLiteRepository(s.db).Delete(ctx, metadata.KeySession)
	s.current = models.Session{}
	subs := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return err
}

// OnClear registers fn to run after every Clear.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// AccessExpiry decodes the exp claim of the current access token without
// verifying it. ok is false for opaque tokens or tokens without exp.
func (s *Store) AccessExpiry() (time.Time, bool) {
	return TokenExpiry(s.AccessToken())
}

// TokenExpiry reads the exp claim of a JWT without verifying the signature.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *Store) read(ctx context.Context, repo metadata.Repository) (models.Session, error) {
	sealed, err := repo.Get(ctx, metadata.KeySession)
	if err != nil {
		return models.Session{}, err
	}
	if sealed == nil {
		return models.Session{}, nil
	}

	var sess models.Session
	if err := cryptox.Open(sealed, s.key, &sess); err != nil {
		return models.Session{}, fmt.Errorf("open session record: %w", err)
	}
	return sess, nil
}

func (s *Store) write(ctx context.Context, repo metadata.Repository, sess models.Session) error {
	sealed, err := cryptox.Seal(sess, s.key)
	if err != nil {
		return fmt.Errorf("seal session record: %w", err)
	}
	return repo.Set(ctx, metadata.KeySession, sealed)
}
