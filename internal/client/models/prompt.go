package models

import (
	"fmt"
	"strings"
)

// PromptType classifies a prompt preset.
type PromptType string

const (
	PromptTypeTranslation PromptType = "translation"
	PromptTypeEditing     PromptType = "editing"
)

func ParsePromptType(s string) (PromptType, error) {
	switch PromptType(strings.ToLower(strings.TrimSpace(s))) {
	case PromptTypeTranslation:
		return PromptTypeTranslation, nil
	case PromptTypeEditing:
		return PromptTypeEditing, nil
	}
	return "", fmt.Errorf("unknown prompt type %q", s)
}

// Prompt is a reusable system/user message pair.
type Prompt struct {
	ID            int64      `json:"id,omitempty"`
	SystemMessage string     `json:"system_message"`
	UserMessage   string     `json:"user_message"`
	PromptType    PromptType `json:"prompt_type"`
	CreatedAt     Timestamp  `json:"created_at"`
	UpdatedAt     Timestamp  `json:"updated_at"`
}
