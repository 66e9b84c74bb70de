package database

import (
	"strings"
	"testing"
)

// Deleting a meeting must not strand or destroy its directive tasks:
// the provenance link clears and the tasks live on.
func TestSchemaTaskMeetingReferenceIsWeak(t *testing.T) {
	t.Parallel()

	sql, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, line := range strings.Split(string(sql), "\n") {
		if strings.Contains(line, "meeting_id") && strings.Contains(line, "REFERENCES meetings") && !strings.Contains(line, "NOT NULL") {
			if !strings.Contains(line, "ON DELETE SET NULL") {
				t.Fatalf("tasks.meeting_id keeps the meeting alive: %q", line)
			}
			return
		}
	}
	t.Fatal("tasks.meeting_id column not found in schema")
}
