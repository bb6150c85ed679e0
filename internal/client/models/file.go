package models

// UploadedFile is a PDF persisted by the backend together with the range and
// prompts chosen at upload time.
type UploadedFile struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	FilePath     string    `json:"file_path,omitempty"`
	PageCount    *int      `json:"page_count"`
	PageRange    string    `json:"page_range,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	UserPrompt   string    `json:"user_prompt,omitempty"`
	UploadedAt   Timestamp `json:"uploaded_at"`
}

// FileField names an editable column of UploadedFile.
type FileField string

const (
	FileFieldPageCount    FileField = "page_count"
	FileFieldPageRange    FileField = "page_range"
	FileFieldSystemPrompt FileField = "system_prompt"
	FileFieldUserPrompt   FileField = "user_prompt"
)

// FileUpdate is the body of PUT /files/:id.
type FileUpdate struct {
	PageCount    *int   `json:"page_count"`
	PageRange    string `json:"page_range"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

// UpdateBody returns the full editable state of f.
func (f UploadedFile) UpdateBody() FileUpdate {
	return FileUpdate{
		PageCount:    f.PageCount,
		PageRange:    f.PageRange,
		SystemPrompt: f.SystemPrompt,
		UserPrompt:   f.UserPrompt,
	}
}

// Range parses PageRange; ok is false when it is empty or malformed.
func (f UploadedFile) Range() (PageRange, bool) {
	r, err := ParsePageRange(f.PageRange)
	return r, err == nil
}
