package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/domain"
)

var ErrSummaryRequired = errors.New("issue summary cannot be empty")

// CreateIssueRequest carries everything the remote tracker needs to create
// an issue. ExternalRef, when set, is forwarded as a label so duplicate
// remote issues caused by at-least-once delivery stay traceable.
type CreateIssueRequest struct {
	Summary     string
	Description string
	IssueType   string
	DueDate     *time.Time
	Priority    domain.Priority
	ExternalRef string
}

// Port is the remote tracker contract the application consumes.
type Port interface {
	CreateIssue(ctx context.Context, req CreateIssueRequest) (string, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]any) error
	DeleteIssue(ctx context.Context, key string) error
}

type Config struct {
	BaseURL    string
	Email      string
	APIToken   string
	ProjectKey string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, l *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   20 * time.Second,
		},
		logger: l,
	}
}

func (c *Client) CreateIssue(ctx context.Context, req CreateIssueRequest) (string, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return "", ErrSummaryRequired
	}
	issueType := req.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := issueFields{
		Project:     projectField{Key: c.cfg.ProjectKey},
		Summary:     req.Summary,
		Description: adfFromText(req.Description),
		IssueType:   nameField{Name: issueType},
	}
	if req.DueDate != nil {
		fields.DueDate = req.DueDate.UTC().Format("2006-01-02")
	}
	if req.Priority != "" {
		fields.Priority = &nameField{Name: priorityName(req.Priority)}
	}
	if req.ExternalRef != "" {
		fields.Labels = []string{"taskbridge-" + req.ExternalRef}
	}

	var created createIssueResponse
	err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", createIssueBody{Fields: fields}, &created)
	if err != nil {
		c.logger.Error("Failed to create Jira issue",
			zap.String("project_key", c.cfg.ProjectKey), zap.Error(err))
		return "", err
	}
	if created.Key == "" {
		return "", errors.New("jira create issue response missing key")
	}
	c.logger.Info("Created Jira issue",
		zap.String("issue_key", created.Key), zap.String("project_key", c.cfg.ProjectKey))
	return created.Key, nil
}

func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	err := c.do(ctx, http.MethodPut, "/rest/api/3/issue/"+key, map[string]any{"fields": fields}, nil)
	if err != nil {
		c.logger.Error("Failed to update Jira issue", zap.String("issue_key", key), zap.Error(err))
		return err
	}
	c.logger.Info("Updated Jira issue", zap.String("issue_key", key))
	return nil
}

func (c *Client) DeleteIssue(ctx context.Context, key string) error {
	err := c.do(ctx, http.MethodDelete, "/rest/api/3/issue/"+key, nil, nil)
	if err != nil {
		c.logger.Error("Failed to delete Jira issue", zap.String("issue_key", key), zap.Error(err))
		return err
	}
	c.logger.Info("Deleted Jira issue", zap.String("issue_key", key))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal jira request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build jira request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira responded %d for %s %s: %s", resp.StatusCode, method, path, string(snippet))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode jira response: %w", err)
		}
	}
	return nil
}

// priorityName converts the domain enum into Jira's priority names.
func priorityName(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "High"
	case domain.PriorityLow:
		return "Low"
	default:
		return "Medium"
	}
}
