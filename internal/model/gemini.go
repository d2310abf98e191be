package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures a GeminiClient. Zero-valued BaseURL, Timeout and
// HTTPClient fields get defaults.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// GeminiClient calls the generateContent API. Gemini function calls carry no
// invocation id of their own, so the client mints one per call and maps it
// back to the function name when results return.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	callSeq    atomic.Int64
}

// NewGeminiClient creates a client for the generateContent API.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// ModelID returns the provider model identifier.
func (c *GeminiClient) ModelID() string {
	return c.model
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, req *Request) (*Reply, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	body := geminiRequest{
		Contents: buildGeminiContents(req),
		Tools:    buildGeminiTools(req.Tools),
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling gemini",
		zap.String("model", c.model),
		zap.Int("contents", len(body.Contents)),
		zap.Int("tools", len(req.Tools)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	candidate := parsed.Candidates[0]
	reply := &Reply{}
	hasFunctionCall := false
	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			hasFunctionCall = true
			reply.Blocks = append(reply.Blocks, ContentBlock{
				Type:  BlockToolUse,
				ID:    fmt.Sprintf("fc_%d", c.callSeq.Add(1)),
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			})
		case part.Text != "":
			reply.Blocks = append(reply.Blocks, ContentBlock{Type: BlockText, Text: part.Text})
		}
	}
	reply.StopReason = mapGeminiFinishReason(candidate.FinishReason, hasFunctionCall)
	if parsed.UsageMetadata != nil {
		reply.Usage = &Usage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  parsed.UsageMetadata.TotalTokenCount,
		}
	}
	return reply, nil
}

// buildGeminiContents converts block messages to Gemini contents. Tool
// results are matched back to their function name through the tool_use
// block that carries the same invocation id.
func buildGeminiContents(req *Request) []geminiContent {
	nameByID := make(map[string]string)
	for _, msg := range req.Messages {
		for _, b := range msg.Blocks {
			if b.Type == BlockToolUse && b.ID != "" {
				nameByID[b.ID] = b.Name
			}
		}
	}

	contents := make([]geminiContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		var parts []geminiPart
		for _, b := range msg.Blocks {
			switch b.Type {
			case BlockText:
				if b.Text != "" {
					parts = append(parts, geminiPart{Text: b.Text})
				}
			case BlockToolUse:
				parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: b.Name, Args: b.Input}})
			case BlockToolResult:
				parts = append(parts, geminiPart{FunctionResponse: &geminiFunctionResponse{
					Name:     nameByID[b.ToolUseID],
					Response: map[string]any{"content": b.ResultText()},
				}})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}
	return contents
}

func buildGeminiTools(defs []ToolDefinition) []geminiTool {
	if len(defs) == 0 {
		return nil
	}
	declarations := make([]geminiFunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		declarations = append(declarations, geminiFunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.InputSchema,
		})
	}
	return []geminiTool{{FunctionDeclarations: declarations}}
}

func mapGeminiFinishReason(reason string, hasFunctionCall bool) string {
	if hasFunctionCall {
		return StopToolUse
	}
	switch reason {
	case "STOP", "":
		return StopEndTurn
	case "MAX_TOKENS":
		return StopMaxTokens
	default:
		return reason
	}
}
