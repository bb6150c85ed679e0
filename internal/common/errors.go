// Package common defines shared constants and sentinel errors used across
// the client layers of pdftranslator. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Intake errors.
	ErrInvalidFileType = errors.New("invalid file type: only application/pdf is accepted")
	ErrNoFile          = errors.New("no file selected")
	ErrInvalidRange    = errors.New("invalid page range")

	// Pipeline errors.
	ErrPromptsRequired     = errors.New("system prompt and user prompt are required")
	ErrTokenBudgetExceeded = errors.New("extracted tokens exceed the translation budget")
	ErrExtraction          = errors.New("extraction failed")
	ErrTranslation         = errors.New("translation failed")
	ErrEdit                = errors.New("edit failed")
	ErrUpdate              = errors.New("update failed")
	ErrUpload              = errors.New("upload failed")

	// ErrAlreadyInitiated is the distinguished translation failure raised when
	// translation records already exist for a file.
	ErrAlreadyInitiated = errors.New("translation already initiated")

	// Auth errors.
	ErrNotLoggedIn = errors.New("not logged in")
	ErrInvalidKey  = errors.New("invalid API key")

	// Validation / item-specific errors.
	ErrorIncorrectPrompt = errors.New("system message, user message and prompt type are required")
	ErrorNotFound        = errors.New("not found")
)
