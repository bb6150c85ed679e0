package models

import "fmt"

// TranslationRecord is one chunk of a file moving through
// extract → translate → edit. Each text is nil until its stage ran.
type TranslationRecord struct {
	ID             int64     `json:"id"`
	FileID         int64     `json:"file_id"`
	PageRange      string    `json:"page_range"`
	ExtractedText  *string   `json:"extracted_text"`
	TranslatedText *string   `json:"translated_text"`
	EditedText     *string   `json:"edited_text"`
	DateAt         Timestamp `json:"date_at"`
	EditedAt       Timestamp `json:"edited_at"`
}

// TranslationField names one of the three text columns.
type TranslationField string

const (
	FieldExtracted  TranslationField = "extracted_text"
	FieldTranslated TranslationField = "translated_text"
	FieldEdited     TranslationField = "edited_text"
)

// ParseTranslationField accepts the column name or a short alias.
func ParseTranslationField(s string) (TranslationField, error) {
	switch s {
	case string(FieldExtracted), "extracted":
		return FieldExtracted, nil
	case string(FieldTranslated), "translated":
		return FieldTranslated, nil
	case string(FieldEdited), "edited":
		return FieldEdited, nil
	}
	return "", fmt.Errorf("unknown translation field %q", s)
}

// Field returns the value of f, "" when unset.
func (r TranslationRecord) Field(f TranslationField) string {
	var p *string
	switch f {
	case FieldExtracted:
		p = r.ExtractedText
	case FieldTranslated:
		p = r.TranslatedText
	case FieldEdited:
		p = r.EditedText
	}
	if p == nil {
		return ""
	}
	return *p
}

// SetField replaces exactly one text column.
func (r *TranslationRecord) SetField(f TranslationField, v string) {
	switch f {
	case FieldExtracted:
		r.ExtractedText = &v
	case FieldTranslated:
		r.TranslatedText = &v
	case FieldEdited:
		r.EditedText = &v
	}
}

// BestText returns the most refined text available: edited, then
// translated, then extracted.
func (r TranslationRecord) BestText() string {
	for _, f := range []TranslationField{FieldEdited, FieldTranslated, FieldExtracted} {
		if v := r.Field(f); v != "" {
			return v
		}
	}
	return ""
}
