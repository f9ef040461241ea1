package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
)

const maxBodyBytes = 64 << 10

// Client talks to the subsidy management REST API
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an API client. A non-positive timeout means 30 seconds.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.OrNop(log),
	}
}

// Verify interface compliance
var (
	_ repositories.InventoryRepository   = (*Client)(nil)
	_ repositories.BeneficiaryRepository = (*Client)(nil)
	_ repositories.ProgramRepository     = (*Client)(nil)
)

// SearchBeneficiaries calls GET /beneficiaries?search=
func (c *Client) SearchBeneficiaries(ctx context.Context, query string) ([]entities.Beneficiary, error) {
	var out []entities.Beneficiary
	endpoint := "/beneficiaries?search=" + url.QueryEscape(query)
	if err := c.getList(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListInventoryItems calls GET /inventory/items
func (c *Client) ListInventoryItems(ctx context.Context) ([]entities.InventoryItem, error) {
	var out []entities.InventoryItem
	if err := c.getList(ctx, "/inventory/items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProgram calls POST /subsidy-programs. A 422 becomes
// *entities.ConflictError or *entities.FieldValidationError; any other
// non-201 status becomes *entities.ResponseError.
func (c *Client) CreateProgram(ctx context.Context, submission entities.ProgramSubmission) (*entities.CreatedProgram, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subsidy-programs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create program request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", http.MethodPost),
		zap.String("path", "/subsidy-programs"),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var result struct {
			Program *entities.CreatedProgram `json:"program"`
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if result.Program == nil {
			return nil, &entities.ResponseError{StatusCode: resp.StatusCode, Message: "response has no program"}
		}
		return result.Program, nil
	case http.StatusUnprocessableEntity:
		return nil, decodeRejection(resp.StatusCode, raw)
	default:
		return nil, &entities.ResponseError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
}

type rejection struct {
	Message   string                       `json:"message"`
	Conflicts []entities.InventoryConflict `json:"conflicts"`
	Errors    map[string][]string          `json:"errors"`
}

func decodeRejection(status int, raw []byte) error {
	var r rejection
	if err := json.Unmarshal(raw, &r); err != nil {
		return &entities.ResponseError{StatusCode: status, Message: ""}
	}
	switch {
	case len(r.Conflicts) > 0:
		return &entities.ConflictError{Message: r.Message, Conflicts: r.Conflicts}
	case len(r.Errors) > 0:
		return &entities.FieldValidationError{Message: r.Message, Errors: r.Errors}
	default:
		return &entities.ResponseError{StatusCode: status, Message: r.Message}
	}
}

// errorMessage extracts {"message": ...} from an error body
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}

// getList fetches a JSON array, bare or wrapped in {"data": [...]}
func (c *Client) getList(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", http.MethodGet),
		zap.String("path", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return &entities.ResponseError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		trimmed = envelope.Data
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
