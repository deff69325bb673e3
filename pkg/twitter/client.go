package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hashclip/pkg/config"
	"hashclip/pkg/logger"
)

// Error types for X API operations
type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeParsing        ErrorType = "parsing"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Error represents an X API error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("x api %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Client is an X API v2 client authenticated with a bearer token
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new X API client from cfg
func NewClient(cfg config.TwitterConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "hashclip/1.0"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"Authorization": "Bearer " + cfg.BearerToken,
			"User-Agent":    userAgent,
			"Accept":        "application/json",
		},
		baseURL: baseURL,
		logger:  log.WithField("component", "twitter"),
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"path":   req.URL.Path,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"path":     req.URL.Path,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps HTTP status codes to classified errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"path":   resp.Request.URL.Path,
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		c.logger.WarnWithFields("request rejected", fields)
		return &Error{
			Type:    ErrorTypeInvalidRequest,
			Message: "request rejected by the API",
			Code:    resp.StatusCode,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "bearer token rejected",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		if reset := resp.Header.Get("x-rate-limit-reset"); reset != "" {
			fields["reset"] = reset
		}
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 500 {
			c.logger.ErrorWithFields("server error", fields)
			return &Error{
				Type:    ErrorTypeServerError,
				Message: "server error",
				Code:    resp.StatusCode,
			}
		}
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", fields)
			return &Error{
				Type:    ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// SearchRecent runs one recent-search request. A body that reports
// errors without returning any data is treated as a failed request.
func (c *Client) SearchRecent(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	url := GetSearchURL(c.baseURL, params)

	c.logger.DebugWithFields("searching recent posts", map[string]interface{}{
		"query":       params.Query,
		"max_results": ClampResults(params.MaxResults),
	})

	var response SearchResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("search request failed", map[string]interface{}{
			"query": params.Query,
			"error": err.Error(),
		})
		return nil, err
	}

	if len(response.Data) == 0 && len(response.Errors) > 0 {
		first := response.Errors[0]
		msg := first.Detail
		if msg == "" {
			msg = first.Title
		}
		return nil, &Error{
			Type:    ErrorTypeInvalidRequest,
			Message: msg,
			Code:    http.StatusOK,
		}
	}
	for _, apiErr := range response.Errors {
		c.logger.WarnWithFields("search returned partial errors", map[string]interface{}{
			"title":  apiErr.Title,
			"detail": apiErr.Detail,
		})
	}

	c.logger.DebugWithFields("search completed", map[string]interface{}{
		"query":        params.Query,
		"result_count": len(response.Data),
	})

	return &response, nil
}
