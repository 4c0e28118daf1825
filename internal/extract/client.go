// Package extract turns post markdown into a candidate week schedule using
// an OpenAI-compatible chat-completions endpoint. Its output is untrusted:
// structural validation happens in the pipeline, not here.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/gymweek/internal/models"
)

const systemPrompt = `You extract gym training schedules from Dutch blog posts.
Respond with a single JSON object:
{"week_id":"<start>-<end> as printed in the post, e.g. 20/10/2024-26/10/2024",
 "days":[{"date":"dd.mm","day_name":"short day name, e.g. ma, di",
          "sessions":[{"type":"...","exercises":["..."],
                       "training_method":"...","main_part_duration":"e.g. 21 min"}]}]}
A day without training gets an empty sessions array. Keep exercise order as printed.
Do not invent days that are not in the post.`

// Client calls the extraction model.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// candidateWeek mirrors the JSON the model is asked to produce.
type candidateWeek struct {
	WeekID string `json:"week_id"`
	Days   []struct {
		Date     string                   `json:"date"`
		DayName  string                   `json:"day_name"`
		Sessions []models.TrainingSession `json:"sessions"`
	} `json:"days"`
}

// Parse extracts a candidate WeekSubmission from post markdown. Day dates
// remain partial (carried in DisplayDate); the pipeline resolves them to
// canonical dates.
func (c *Client) Parse(ctx context.Context, markdown string) (*models.WeekSubmission, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: markdown},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction model: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("extraction model returned no choices")
	}

	var cand candidateWeek
	if err := json.Unmarshal([]byte(stripFences(chat.Choices[0].Message.Content)), &cand); err != nil {
		return nil, fmt.Errorf("decoding extracted schedule: %w", err)
	}

	sub := &models.WeekSubmission{WeekID: cand.WeekID}
	for _, d := range cand.Days {
		sub.Days = append(sub.Days, models.DaySchedule{
			DayName:     d.DayName,
			DisplayDate: d.Date,
			Sessions:    d.Sessions,
		})
	}
	return sub, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit despite the json_object response format.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
