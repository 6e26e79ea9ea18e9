package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

// DefaultTimeout is the client-side deadline applied to one analyzer call
// when the caller's context carries none.
const DefaultTimeout = 90 * time.Second

// Client issues analyzer requests. It owns classification of transport,
// status and decode failures into the scan error taxonomy; callers only see
// model.*Error values.
type Client struct {
	rc      *resty.Client
	timeout time.Duration
	logger  interfaces.Logger
}

// New builds a Client for the analyzer service at baseURL. timeout <= 0
// selects DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger interfaces.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetLogger(newRestyLogger(logger))

	return &Client{rc: rc, timeout: timeout, logger: logger}
}

// Timeout returns the configured per-call deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Submit POSTs body to the analyzer path and returns the parsed result
// envelope. Exactly one request is issued; there is no retry.
func (c *Client) Submit(ctx context.Context, path string, body []byte) (*model.AnalysisResult, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, c.classifyTransport(err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode(),
			Message:    extractServerMessage(resp.Body()),
		}
	}

	res, err := model.ParseAnalysisResult(resp.Body())
	if err != nil {
		c.logger.Warn("analyzer returned OK with undecodable body",
			interfaces.F("path", path),
			interfaces.F("error", err.Error()))
		return nil, err
	}
	return res, nil
}

func (c *Client) classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &model.TimeoutError{Deadline: c.timeout}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &model.TimeoutError{Deadline: c.timeout}
	}
	return &model.NetworkError{Err: err}
}

// extractServerMessage pulls a human-readable error out of a failure body.
// Backends answer {error: ...} or {message: ...}; anything else falls back to
// empty so HTTPError renders its generic status text.
func extractServerMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// restyLogger forwards resty's internal logging onto interfaces.Logger.
type restyLogger struct {
	logger interfaces.Logger
}

func newRestyLogger(logger interfaces.Logger) resty.Logger {
	return &restyLogger{logger: logger.With(interfaces.F("component", "apiclient"))}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
