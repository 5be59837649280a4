package models

import (
	"encoding/json"
	"strings"
)

// LocalizedText is either a single string valid for every language or a map
// from language tag to text. In JSON both forms are accepted.
type LocalizedText struct {
	Text         string
	Translations map[string]string
}

// Text returns a LocalizedText that matches any language.
func Text(s string) LocalizedText {
	return LocalizedText{Text: s}
}

// Translations returns a LocalizedText keyed by language tag.
func Translations(m map[string]string) LocalizedText {
	return LocalizedText{Translations: m}
}

func (t LocalizedText) IsZero() bool {
	return t.Text == "" && len(t.Translations) == 0
}

// Localize returns the text for the first language that has one. Each
// language is tried exactly, then by its base tag ("de-CH" falls back to "de").
// Empty language entries are skipped.
func (t LocalizedText) Localize(languages ...string) (string, bool) {
	if t.Text != "" {
		return t.Text, true
	}
	for _, lang := range languages {
		if lang == "" {
			continue
		}
		if s, ok := t.lookup(lang); ok {
			return s, true
		}
		if base := baseLanguage(lang); base != lang {
			if s, ok := t.lookup(base); ok {
				return s, true
			}
		}
	}
	return "", false
}

func (t LocalizedText) lookup(lang string) (string, bool) {
	if s, ok := t.Translations[lang]; ok && s != "" {
		return s, true
	}
	for k, s := range t.Translations {
		if s != "" && strings.EqualFold(k, lang) {
			return s, true
		}
	}
	return "", false
}

func baseLanguage(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		return lang[:i]
	}
	return lang
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.Text != "" || len(t.Translations) == 0 {
		return json.Marshal(t.Text)
	}
	return json.Marshal(t.Translations)
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = LocalizedText{Text: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = LocalizedText{Translations: m}
	return nil
}
