// Package metadata is the key/value repository behind the client's durable
// local state.
package metadata

import (
	"context"
)

// Fixed keys of the values kept in local storage.
const (
	KeySession        = "session"
	KeySystemPrompt   = "system_prompt"
	KeyUserPrompt     = "user_prompt"
	KeyPreferredModel = "preferred_model"
	KeyAPIKey         = "api_key"
	KeySealSalt       = "seal_salt"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
