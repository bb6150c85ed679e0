package models

// Settings are the per-user model preferences kept by the backend.
type Settings struct {
	PreferredModel string `json:"preferred_model"`
	APIKey         string `json:"openai_api_key"`
}

// Profile is returned by GET /auth/profile.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ModelInfo describes a selectable language model.
type ModelInfo struct {
	ID            string
	Name          string
	ContextWindow int
	MaxOutput     int
}

// Models lists the models offered in settings. The first entry is the default.
var Models = []ModelInfo{
	{ID: "gpt-4o", Name: "GPT-4o", ContextWindow: 128000, MaxOutput: 16384},
	{ID: "chatgpt-4o-latest", Name: "ChatGPT-4o Latest", ContextWindow: 128000, MaxOutput: 16384},
	{ID: "gpt-4o-mini", Name: "GPT-4o mini", ContextWindow: 128000, MaxOutput: 16384},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", ContextWindow: 128000, MaxOutput: 4096},
	{ID: "gpt-4", Name: "GPT-4", ContextWindow: 8192, MaxOutput: 8192},
}

// LookupModel returns the catalogue entry for id, falling back to the
// default model when id is unknown.
func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return Models[0], false
}
