package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestImportLegacyMinutes(t *testing.T) {
	t.Parallel()

	t.Run("plain text stays text", func(t *testing.T) {
		m := ImportLegacyMinutes("Discussed release criteria for batch 17.")
		if m.Format != MinutesText {
			t.Fatalf("format = %s, want text", m.Format)
		}
		if m.Text == "" || len(m.Rows) != 0 {
			t.Fatalf("unexpected content: %+v", m)
		}
	})

	t.Run("row array detected by prefix", func(t *testing.T) {
		raw := `[{"discussion":"HVAC requalification","resolution":"approved","deadline":"2026-09-15"}]`
		m := ImportLegacyMinutes(raw)
		if m.Format != MinutesStructured {
			t.Fatalf("format = %s, want structured", m.Format)
		}
		if len(m.Rows) != 1 || m.Rows[0].Discussion != "HVAC requalification" {
			t.Fatalf("rows = %+v", m.Rows)
		}
	})

	t.Run("id-first row array detected", func(t *testing.T) {
		raw := `[{"id":"r1","discussion":"Vendor audit","resolution":"deferred"}]`
		m := ImportLegacyMinutes(raw)
		if m.Format != MinutesStructured {
			t.Fatalf("format = %s, want structured", m.Format)
		}
	})

	t.Run("text resembling JSON but malformed stays text", func(t *testing.T) {
		raw := `[{"discussion": broken`
		m := ImportLegacyMinutes(raw)
		if m.Format != MinutesText {
			t.Fatalf("format = %s, want text", m.Format)
		}
		if m.Text != raw {
			t.Fatalf("text altered: %q", m.Text)
		}
	})

	t.Run("empty yields nil", func(t *testing.T) {
		if m := ImportLegacyMinutes(""); m != nil {
			t.Fatalf("got %+v, want nil", m)
		}
	})
}

func TestMinutesTaggedRoundTrip(t *testing.T) {
	t.Parallel()

	original := StructuredMinutes([]MinuteRow{
		{ID: "r1", Discussion: "Stability data review", Resolution: "extend study"},
		{ID: "r2", Discussion: "Audit readiness", Resolution: "schedule mock audit", Deadline: "2026-10-01"},
	})
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Minutes
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Format != MinutesStructured || len(restored.Rows) != 2 {
		t.Fatalf("restored = %+v", restored)
	}
	if restored.Rows[1].Deadline != "2026-10-01" {
		t.Fatalf("deadline lost: %+v", restored.Rows[1])
	}
}

func TestMinutesPlainText(t *testing.T) {
	t.Parallel()

	if got := TextMinutes("raw notes").PlainText(); got != "raw notes" {
		t.Fatalf("text minutes plaintext = %q", got)
	}

	m := StructuredMinutes([]MinuteRow{
		{Discussion: "Batch 17 release", Resolution: "approved"},
		{Discussion: "Open deviations"},
	})
	got := m.PlainText()
	if !strings.Contains(got, "Batch 17 release") || !strings.Contains(got, "approved") {
		t.Fatalf("structured plaintext = %q", got)
	}

	var none *Minutes
	if none.PlainText() != "" {
		t.Fatal("nil minutes should render empty")
	}
}

func TestMeetingFinalizationDerivation(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()

	empty := &Meeting{}
	if empty.IsFinalized() {
		t.Fatal("meeting without attendees can never finalize")
	}

	m := &Meeting{Attendees: []uuid.UUID{a, b}, FinalizedBy: []uuid.UUID{a}}
	if m.IsFinalized() {
		t.Fatal("partial sign-off reported as finalized")
	}
	m.FinalizedBy = append(m.FinalizedBy, b)
	if !m.IsFinalized() {
		t.Fatal("full sign-off not reported as finalized")
	}

	// Stray signatures from removed attendees do not break the check.
	m.FinalizedBy = append(m.FinalizedBy, uuid.New())
	if !m.IsFinalized() {
		t.Fatal("superset of signatures not reported as finalized")
	}
}
