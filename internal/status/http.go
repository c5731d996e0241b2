package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/lifecycle"
)

// HTTPReporter posts reports as JSON to the configured tracking service.
type HTTPReporter struct {
	baseURL     string
	providerTag string
	httpClient  *http.Client
}

// NewHTTP builds a reporter from report config. Returns a NopReporter when
// no base URL is configured.
func NewHTTP(cfg config.ReportConfig) Reporter {
	if cfg.BaseURL == "" {
		return NopReporter{}
	}
	return &HTTPReporter{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		providerTag: cfg.ProviderTag,
		httpClient:  &http.Client{},
	}
}

type milestoneReport struct {
	BotID    string `json:"bot_id"`
	EventID  string `json:"event_id"`
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

type unsupportedReport struct {
	BotID    string `json:"bot_id"`
	EventID  string `json:"event_id"`
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

type admissionFailureReport struct {
	BotID     string `json:"bot_id"`
	EventID   string `json:"event_id"`
	Provider  string `json:"provider"`
	BodyText  string `json:"body_text"`
	Retryable bool   `json:"retryable"`
	Attempt   int    `json:"attempt"`
}

// ReportMilestone appends one status value to the bot's history.
func (r *HTTPReporter) ReportMilestone(ctx context.Context, id Identity, milestone lifecycle.Milestone) error {
	return r.post(ctx, id.Token, "/bots/status", milestoneReport{
		BotID:    id.BotID,
		EventID:  id.EventID,
		Provider: r.providerTag,
		Status:   string(milestone),
	})
}

// ReportUnsupportedMeeting flags a meeting the agent cannot join.
func (r *HTTPReporter) ReportUnsupportedMeeting(ctx context.Context, id Identity, reason string) error {
	return r.post(ctx, id.Token, "/bots/unsupported", unsupportedReport{
		BotID:    id.BotID,
		EventID:  id.EventID,
		Provider: r.providerTag,
		Reason:   reason,
	})
}

// ReportAdmissionFailure records a denied or timed-out admission request.
func (r *HTTPReporter) ReportAdmissionFailure(ctx context.Context, id Identity, detail AdmissionFailureDetail) error {
	return r.post(ctx, id.Token, "/bots/admission-failure", admissionFailureReport{
		BotID:     id.BotID,
		EventID:   id.EventID,
		Provider:  r.providerTag,
		BodyText:  detail.BodyText,
		Retryable: detail.Retryable,
		Attempt:   detail.Attempt,
	})
}

func (r *HTTPReporter) post(ctx context.Context, token, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create report request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("report error %d: %s", resp.StatusCode, string(errBody))
	}
	return nil
}
