package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/privguard/privguard-go/core"
)

// NERDetector finds unstructured entities (persons, locations,
// organizations) by delegating to an external NER model server over MCP
// stdio transport. The engine never sees the model; it only consumes the
// labeled spans the server returns.
type NERDetector struct {
	Client *client.StdioMCPClient
	Config NERConfig

	rateLimiter   *RateLimiter
	errorReporter *ErrorReporter
}

// nerEntity mirrors the wire format of the ner.detect tool: a JSON array
// of aggregated entities with code-point offsets into the request text
type nerEntity struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// NewNERDetector initializes a NER detector with configuration. An empty
// serverPath triggers discovery through environment variables and common
// installation locations.
func NewNERDetector(serverPath string, config *NERConfig) (*NERDetector, error) {
	serverConfig, err := GetNERServerConfig(serverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to configure NER server: %w", err)
	}

	config = LoadNERConfig(config)

	if serverConfig.Transport != "stdio" {
		return nil, fmt.Errorf("unsupported NER transport type: %s", serverConfig.Transport)
	}

	// MCP client expects nil or []string for options
	var opts []string
	if len(serverConfig.Options) > 0 {
		opts = make([]string, 0, len(serverConfig.Options))
		for k, v := range serverConfig.Options {
			opts = append(opts, fmt.Sprintf("%s=%v", k, v))
		}
	}

	mcpClient, err := client.NewStdioMCPClient(serverConfig.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create NER stdio client: %w", err)
	}

	var rateLimiter *RateLimiter
	if config.RateLimitEnabled {
		rateLimiter = NewRateLimiter(config.RequestsPerMinute, 1*time.Minute)
	}

	logger := log.New(os.Stdout, "[NER] ", log.LstdFlags)

	detector := &NERDetector{
		Client:        mcpClient,
		Config:        *config,
		rateLimiter:   rateLimiter,
		errorReporter: NewErrorReporter(logger),
	}

	logger.Printf("NER detector initialized with server: %s, languages: %d, RateLimit=%v",
		serverConfig.Path, len(config.Models), config.RateLimitEnabled)

	return detector, nil
}

// Name identifies the detector in diagnostics
func (d *NERDetector) Name() string {
	return "ner"
}

// resolveLanguage maps the requested language selector to a model,
// falling back to the default language with a warning diagnostic when
// the selector is unknown. The fallback is never an error.
func (d *NERDetector) resolveLanguage(language string) (string, string) {
	if model, ok := d.Config.Models[language]; ok {
		return language, model
	}

	core.LogDetectorEvent(d.Name(), "language_fallback", core.SeverityWarning, map[string]string{
		"requested": language,
		"fallback":  d.Config.DefaultLanguage,
	})

	return d.Config.DefaultLanguage, d.Config.Models[d.Config.DefaultLanguage]
}

// Detect calls the NER server and converts its entities into spans.
// Transport and tool failures are fatal for the call; entity-level
// anomalies (out-of-bounds offsets, empty labels) are dropped with a
// diagnostic.
func (d *NERDetector) Detect(ctx context.Context, text, language string) ([]core.Span, error) {
	requestID := uuid.NewString()

	language, model := d.resolveLanguage(language)

	if d.rateLimiter != nil && d.Config.RateLimitEnabled {
		limited, count, resetTime := d.rateLimiter.CheckLimit(d.Name())
		if limited {
			rateLimitErr := newDetectorError(ErrorCategoryRateLimit, d.Name(),
				fmt.Errorf("rate limit exceeded: %d requests (limit: %d)",
					count, d.Config.RequestsPerMinute),
				requestID,
				map[string]interface{}{
					"current_count": count,
					"limit":         d.Config.RequestsPerMinute,
					"reset_time":    resetTime.Format(time.RFC3339),
				})
			d.errorReporter.ReportError(rateLimitErr)
			return nil, rateLimitErr
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.Config.Timeout)
	defer cancel()

	request := mcp.CallToolRequest{}
	request.Params.Name = d.Config.ToolName
	request.Params.Arguments = map[string]interface{}{
		"text":       text,
		"model":      model,
		"language":   language,
		"request_id": requestID,
	}

	// Call the NER server with retries
	var result *mcp.CallToolResult
	var err error
	var lastError error

	for attempt := 0; attempt <= d.Config.RetryCount; attempt++ {
		if attempt > 0 {
			// Wait before retry with exponential backoff
			backoffTime := d.Config.RetryBackoff * time.Duration(1<<(attempt-1))
			time.Sleep(backoffTime)
		}

		result, err = d.Client.CallTool(callCtx, request)
		lastError = err

		if err == nil {
			break
		}

		// Don't retry if context is done
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			timeoutErr := newDetectorError(ErrorCategoryTimeout, d.Name(),
				fmt.Errorf("NER call timeout or canceled: %w", err),
				requestID, nil)
			d.errorReporter.ReportError(timeoutErr)
			return nil, timeoutErr
		}
	}

	if err != nil {
		finalErr := newDetectorError(categorizeError(lastError), d.Name(),
			fmt.Errorf("NER call failed after %d attempts: %w", d.Config.RetryCount+1, lastError),
			requestID, nil)
		d.errorReporter.ReportError(finalErr)
		return nil, finalErr
	}

	if result.IsError {
		resultErr := newDetectorError(ErrorCategoryModel, d.Name(),
			fmt.Errorf("NER tool returned an error: %v", result.Result),
			requestID, nil)
		d.errorReporter.ReportError(resultErr)
		return nil, resultErr
	}

	// Extract the JSON payload from the tool result
	payload := ""
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			payload += textContent.Text
		}
	}

	entities, err := parseEntities(payload)
	if err != nil {
		parseErr := newDetectorError(ErrorCategoryModel, d.Name(),
			fmt.Errorf("failed to decode NER response: %w", err),
			requestID, nil)
		d.errorReporter.ReportError(parseErr)
		return nil, parseErr
	}

	return d.entitiesToSpans(text, entities), nil
}

// parseEntities decodes the tool payload into entities
func parseEntities(payload string) ([]nerEntity, error) {
	var entities []nerEntity
	if payload == "" {
		return entities, nil
	}

	if err := json.Unmarshal([]byte(payload), &entities); err != nil {
		return nil, err
	}

	return entities, nil
}

// entitiesToSpans converts wire entities into spans. Content is always
// sliced from the request text rather than taken from the entity's word
// field, since model tokenizers normalize whitespace and casing.
func (d *NERDetector) entitiesToSpans(text string, entities []nerEntity) []core.Span {
	runes := []rune(text)

	spans := make([]core.Span, 0, len(entities))
	for _, e := range entities {
		if e.EntityGroup == "" || e.Start < 0 || e.Start >= e.End || e.End > len(runes) {
			core.LogDetectorEvent(d.Name(), "entity_dropped", core.SeverityWarning, map[string]string{
				"label": e.EntityGroup,
				"start": strconv.Itoa(e.Start),
				"end":   strconv.Itoa(e.End),
			})
			continue
		}

		spans = append(spans, core.Span{
			Start:   e.Start,
			End:     e.End,
			Label:   e.EntityGroup,
			Content: string(runes[e.Start:e.End]),
		})
	}

	return spans
}

// Close shuts down the underlying server process
func (d *NERDetector) Close() error {
	return d.Client.Close()
}
