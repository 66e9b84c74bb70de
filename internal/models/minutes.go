package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// MinutesFormat tags the representation of a meeting's minutes.
type MinutesFormat string

const (
	// MinutesText is opaque free text.
	MinutesText MinutesFormat = "text"
	// MinutesStructured is a sequence of discussion rows.
	MinutesStructured MinutesFormat = "structured"
)

// MinuteRow is one discussion item in structured minutes. Row contents
// are passed through unvalidated.
type MinuteRow struct {
	ID         string     `json:"id,omitempty"`
	Discussion string     `json:"discussion"`
	Resolution string     `json:"resolution"`
	OwnerID    *uuid.UUID `json:"owner_id,omitempty"`
	Deadline   string     `json:"deadline,omitempty"`
}

// Minutes is a tagged variant: free text or structured rows. The format
// is decided at creation time and carried explicitly.
type Minutes struct {
	Format MinutesFormat `json:"format"`
	Text   string        `json:"text,omitempty"`
	Rows   []MinuteRow   `json:"rows,omitempty"`
}

// TextMinutes builds free-text minutes.
func TextMinutes(text string) *Minutes {
	return &Minutes{Format: MinutesText, Text: text}
}

// StructuredMinutes builds row-based minutes.
func StructuredMinutes(rows []MinuteRow) *Minutes {
	return &Minutes{Format: MinutesStructured, Rows: rows}
}

// PlainText renders the minutes as a single text blob, for export and
// for feeding the summarization service.
func (m *Minutes) PlainText() string {
	if m == nil {
		return ""
	}
	if m.Format == MinutesText {
		return m.Text
	}
	var b strings.Builder
	for _, r := range m.Rows {
		b.WriteString(r.Discussion)
		if r.Resolution != "" {
			b.WriteString(" | Resolution: ")
			b.WriteString(r.Resolution)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ImportLegacyMinutes converts a raw minutes blob from the legacy store,
// where structured rows were serialized into the same string field as
// free text and recognized by their JSON-array prefix. Used only at the
// ingestion boundary; everything downstream carries the tagged form.
func ImportLegacyMinutes(raw string) *Minutes {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, `[{"id":`) || strings.HasPrefix(raw, `[{"discussion":`) {
		var rows []MinuteRow
		if err := json.Unmarshal([]byte(raw), &rows); err == nil {
			return StructuredMinutes(rows)
		}
	}
	return TextMinutes(raw)
}
