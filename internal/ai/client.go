package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swisspharma/opsboard-backend/config"
)

// ErrExternalService wraps any failure of the generative AI backend so
// callers can map it to a distinct response without parsing messages.
var ErrExternalService = errors.New("external AI service error")

// ExtractedTask is one actionable item the model pulled from minutes.
// TaggedName is the @mention owner, without the @; resolution against
// the personnel directory happens at the HTTP layer.
type ExtractedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TaggedName  string `json:"taggedName"`
	Priority    string `json:"priority"`
}

// Appraisal is the model's KPI verdict for one user.
type Appraisal struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// Client calls the Gemini generateContent REST API.
type Client struct {
	cfg    config.GeminiConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Gemini client. An empty API key is allowed; every
// call then fails with ErrExternalService.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		logger: logger,
	}
}

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *inlineDataPart `json:"inlineData,omitempty"`
}

type inlineDataPart struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, model string, parts []generatePart, cfg *generationConfig) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrExternalService)
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []generateContent{{Parts: parts}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrExternalService, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrExternalService, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrExternalService)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// SummarizeMinutes rewrites raw notes into a structured minutes report.
// Ownership @mentions in the notes must survive verbatim so the task
// extraction pass can still resolve them.
func (c *Client) SummarizeMinutes(ctx context.Context, rawNotes string) (string, error) {
	if strings.TrimSpace(rawNotes) == "" {
		return rawNotes, nil
	}
	prompt := `Synthesize the following pharmaceutical meeting notes into a highly professional and structured "Minutes of Meeting" (MoM) report.

The output MUST follow this exact structure:

# MINUTES OF MEETING

## 1. MEETING OBJECTIVES
(Concise list of what the session aimed to achieve)

## 2. KEY DISCUSSIONS & DELIBERATIONS
(Detailed summary of technical and operational points discussed)

## 3. DECISIONS & RESOLUTIONS
(Formal record of all items finalized and approved)

## 4. ACTION ITEMS & DIRECTIVES
(Bullet points for each directive. CRITICAL: Maintain all @Name mentions exactly as they appear in the original text.)

Ensure the tone is professional, technical, and suitable for a pharmaceutical corporate environment.

Notes:
` + rawNotes
	return c.generate(ctx, c.cfg.Model, []generatePart{{Text: prompt}}, nil)
}

// ExtractTasks pulls actionable directives with @mention owners out of
// finalized minutes.
func (c *Client) ExtractTasks(ctx context.Context, minutes string) ([]ExtractedTask, error) {
	if strings.TrimSpace(minutes) == "" {
		return nil, nil
	}
	prompt := `Examine these meeting minutes and extract a structured list of actionable responsibilities.

CRITICAL INSTRUCTION: Identify ownership tags using the @symbol (e.g., @Sarah).

For each task, provide:
1. A high-level professional 'title'.
2. A 'description' detailing the technical scope.
3. The 'taggedName' (without the @).
4. The 'priority' ('Q1', 'Q2', or 'Q3').

Minutes:
` + minutes

	schema := json.RawMessage(`{
		"type": "ARRAY",
		"items": {
			"type": "OBJECT",
			"properties": {
				"title": {"type": "STRING"},
				"description": {"type": "STRING"},
				"taggedName": {"type": "STRING"},
				"priority": {"type": "STRING"}
			},
			"required": ["title", "description", "priority"]
		}
	}`)

	text, err := c.generate(ctx, c.cfg.Model, []generatePart{{Text: prompt}},
		&generationConfig{ResponseMimeType: "application/json", ResponseSchema: schema})
	if err != nil {
		return nil, err
	}

	var out []ExtractedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed task list: %v", ErrExternalService, err)
	}
	return out, nil
}

// TranscribeAudio condenses recorded meeting audio into bulleted key
// points. The audio may mix languages; output is English only.
func (c *Client) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	parts := []generatePart{
		{InlineData: &inlineDataPart{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}},
		{Text: "Transcribe the audio. The audio may be in English, Urdu, or a mix. CRITICAL: Extract and present ONLY the important points, main decisions, and actionable items in a concise English bulleted list. Do not include conversational filler or irrelevant data."},
	}
	return c.generate(ctx, c.cfg.Model, parts, nil)
}

// AppraisalEvidence is the factual record set fed to the appraisal model.
type AppraisalEvidence struct {
	TasksAssigned    int `json:"tasks_assigned"`
	TasksCompleted   int `json:"tasks_completed"`
	MeetingsAttended int `json:"meetings_attended"`
	AuditEntries     int `json:"audit_entries"`
}

// GenerateAppraisal scores a user's performance against their KPIs. It
// uses the stronger appraisal model.
func (c *Client) GenerateAppraisal(ctx context.Context, userName, role, kpis string, evidence AppraisalEvidence) (*Appraisal, error) {
	records, _ := json.Marshal(evidence)
	prompt := fmt.Sprintf(
		"Act as a senior auditor for Swiss Pharmaceuticals. Conduct an appraisal for %s (%s) based on records: %s against KPIs: %s. Return JSON with score and justification.",
		userName, role, records, kpis)

	schema := json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"score": {"type": "NUMBER"},
			"justification": {"type": "STRING"}
		},
		"required": ["score", "justification"]
	}`)

	text, err := c.generate(ctx, c.cfg.AppraisalModel, []generatePart{{Text: prompt}},
		&generationConfig{ResponseMimeType: "application/json", ResponseSchema: schema})
	if err != nil {
		return nil, err
	}

	var out Appraisal
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed appraisal: %v", ErrExternalService, err)
	}
	return &out, nil
}
