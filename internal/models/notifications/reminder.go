package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const ReminderType = "reminder"

// ReminderContent is the text of the scheduled reminder. One message is
// picked per UTC day, rotating through Messages.
type ReminderContent struct {
	Title    LocalizedText     `json:"title"`
	Messages []LocalizedText   `json:"messages"`
	Data     map[string]string `json:"data,omitempty"`
}

// DefaultReminderContent is used when no content file is configured.
func DefaultReminderContent() ReminderContent {
	return ReminderContent{
		Title: Translations(map[string]string{
			"en": "Reminder",
			"de": "Erinnerung",
			"es": "Recordatorio",
		}),
		Messages: []LocalizedText{
			Translations(map[string]string{
				"en": "You have tasks waiting for today. Open the app to take a look.",
				"de": "Für heute warten Aufgaben auf dich. Öffne die App, um sie anzusehen.",
				"es": "Tienes tareas pendientes para hoy. Abre la aplicación para verlas.",
			}),
			Translations(map[string]string{
				"en": "A quick check-in keeps your data up to date.",
				"de": "Ein kurzer Check-in hält deine Daten aktuell.",
				"es": "Un breve registro mantiene tus datos al día.",
			}),
		},
	}
}

// LoadReminderContent reads reminder content from a JSON file.
func LoadReminderContent(path string) (ReminderContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ReminderContent{}, fmt.Errorf("read reminder content: %w", err)
	}
	var content ReminderContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return ReminderContent{}, fmt.Errorf("parse reminder content %s: %w", path, err)
	}
	if err := content.Validate(); err != nil {
		return ReminderContent{}, fmt.Errorf("reminder content %s: %w", path, err)
	}
	return content, nil
}

func (c ReminderContent) Validate() error {
	if c.Title.IsZero() {
		return errors.New("title is required")
	}
	if len(c.Messages) == 0 {
		return errors.New("at least one message is required")
	}
	for i, m := range c.Messages {
		if m.IsZero() {
			return fmt.Errorf("message %d is empty", i)
		}
	}
	return nil
}

// ForDate builds the reminder for the UTC day containing t. The same day
// always yields the same message.
func (c ReminderContent) ForDate(t time.Time) Notification {
	day := t.UTC().Truncate(24 * time.Hour)
	idx := day.YearDay() % len(c.Messages)

	data := make(map[string]string, len(c.Data)+3)
	for k, v := range c.Data {
		data[k] = v
	}
	data["type"] = ReminderType
	data["messageIndex"] = strconv.Itoa(idx)
	data["date"] = day.Format("2006-01-02")

	return NewNotification(c.Title, c.Messages[idx], data)
}
