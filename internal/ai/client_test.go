package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/swisspharma/opsboard-backend/config"
	"github.com/swisspharma/opsboard-backend/internal/models"
)

func geminiStub(t *testing.T, status int, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") == "" {
			t.Error("missing API key header")
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": status, "message": "quota exceeded"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": replyText}},
				}},
			},
		})
	}))
}

func testClient(baseURL string) *Client {
	return NewClient(config.GeminiConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "gemini-3-flash-preview",
		AppraisalModel: "gemini-3-pro-preview",
		TimeoutSec:     5,
	}, nil)
}

func TestSummarizeMinutes(t *testing.T) {
	t.Parallel()

	srv := geminiStub(t, http.StatusOK, "# MINUTES OF MEETING\n\n@Bilal to compile trend data.")
	defer srv.Close()

	got, err := testClient(srv.URL).SummarizeMinutes(context.Background(), "rough notes @Bilal trend data")
	if err != nil {
		t.Fatalf("SummarizeMinutes: %v", err)
	}
	if !strings.Contains(got, "@Bilal") {
		t.Fatalf("mention lost in summary: %q", got)
	}
}

func TestSummarizeMinutesEmptyInputSkipsCall(t *testing.T) {
	t.Parallel()

	// No server at all: blank input must not reach the network.
	c := testClient("http://127.0.0.1:0")
	got, err := c.SummarizeMinutes(context.Background(), "   ")
	if err != nil {
		t.Fatalf("blank input: %v", err)
	}
	if got != "   " {
		t.Fatalf("blank input altered: %q", got)
	}
}

func TestExtractTasks(t *testing.T) {
	t.Parallel()

	reply := `[{"title":"Compile trend data","description":"Quarterly stability trends","taggedName":"Bilal","priority":"Q1"}]`
	srv := geminiStub(t, http.StatusOK, reply)
	defer srv.Close()

	got, err := testClient(srv.URL).ExtractTasks(context.Background(), "minutes with @Bilal")
	if err != nil {
		t.Fatalf("ExtractTasks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("tasks = %d, want 1", len(got))
	}
	if got[0].TaggedName != "Bilal" || got[0].Priority != "Q1" {
		t.Fatalf("task = %+v", got[0])
	}
}

func TestExtractTasksMalformedReply(t *testing.T) {
	t.Parallel()

	srv := geminiStub(t, http.StatusOK, "not json at all")
	defer srv.Close()

	_, err := testClient(srv.URL).ExtractTasks(context.Background(), "minutes")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("malformed reply: got %v, want ErrExternalService", err)
	}
}

func TestBackendErrorWrapsExternalService(t *testing.T) {
	t.Parallel()

	srv := geminiStub(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := testClient(srv.URL).SummarizeMinutes(context.Background(), "notes")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("backend failure: got %v, want ErrExternalService", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("backend message lost: %v", err)
	}
}

func TestMissingAPIKeyFailsSoft(t *testing.T) {
	t.Parallel()

	c := NewClient(config.GeminiConfig{BaseURL: "http://example.invalid", TimeoutSec: 1}, nil)
	_, err := c.SummarizeMinutes(context.Background(), "notes")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("missing key: got %v, want ErrExternalService", err)
	}
}

func TestGenerateAppraisal(t *testing.T) {
	t.Parallel()

	srv := geminiStub(t, http.StatusOK, `{"score":8.5,"justification":"Consistent delivery across Q1 directives."}`)
	defer srv.Close()

	got, err := testClient(srv.URL).GenerateAppraisal(context.Background(), "Bilal Hashmi", "Senior", "on-time completion", AppraisalEvidence{
		TasksAssigned:    12,
		TasksCompleted:   11,
		MeetingsAttended: 9,
		AuditEntries:     40,
	})
	if err != nil {
		t.Fatalf("GenerateAppraisal: %v", err)
	}
	if got.Score != 8.5 || got.Justification == "" {
		t.Fatalf("appraisal = %+v", got)
	}
}

func TestMatchTaggedName(t *testing.T) {
	t.Parallel()

	users := []models.UserPublic{
		{ID: uuid.New(), FullName: "Dr. Amara Qureshi"},
		{ID: uuid.New(), FullName: "Bilal Hashmi"},
	}
	if id := matchTaggedName(users, "bilal"); id != users[1].ID {
		t.Fatalf("first-name match failed")
	}
	if id := matchTaggedName(users, "Dr. Amara Qureshi"); id != users[0].ID {
		t.Fatalf("full-name match failed")
	}
	if id := matchTaggedName(users, "nobody"); id != uuid.Nil {
		t.Fatalf("unmatched name resolved to %s", id)
	}
	if id := matchTaggedName(users, "  "); id != uuid.Nil {
		t.Fatalf("blank name resolved to %s", id)
	}
}
