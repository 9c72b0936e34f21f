package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	maxResponseBytes = 1 << 20 // 1 MiB
	rawBodyLimit     = 200
	userAgent        = "social-listening-gateway/1.0"
)

// Orchestrator performs trigger calls. It holds no per-call state and is safe
// for concurrent use.
type Orchestrator struct {
	httpClient *http.Client
	authToken  string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAuthToken attaches a bearer token to every trigger call.
func WithAuthToken(token string) Option {
	return func(o *Orchestrator) { o.authToken = token }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = c }
}

// New creates an Orchestrator whose calls time out after timeout.
func New(timeout time.Duration, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SubmitJob sends req once and interprets the reply with m. Every network,
// status or decoding problem comes back as a failure Result; the error is
// non-nil only when req itself is malformed.
func (o *Orchestrator) SubmitJob(ctx context.Context, req JobRequest, m Mapping) (Result, error) {
	httpReq, err := o.build(ctx, req)
	if err != nil {
		return Result{}, err
	}

	logger := slog.With("endpoint", m.Name, "method", req.Method)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("Trigger call failed", "error", err)
		res := failure(KindTransport, MessageTransport)
		res.Detail = err.Error()
		return res, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		logger.Warn("Reading trigger response failed", "status", resp.StatusCode, "error", err)
		res := failure(KindTransport, MessageTransport)
		res.HTTPStatus = resp.StatusCode
		res.Detail = err.Error()
		return res, nil
	}
	if len(raw) > maxResponseBytes {
		logger.Warn("Trigger response over size limit", "status", resp.StatusCode, "limit", maxResponseBytes)
		res := failure(KindResponseFormat, MessageTooLarge)
		res.HTTPStatus = resp.StatusCode
		res.RawBody = truncate(string(raw[:rawBodyLimit*4]), rawBodyLimit)
		res.Detail = fmt.Sprintf("response exceeds %d bytes", maxResponseBytes)
		return res, nil
	}

	logger.Debug("Trigger response", "status", resp.StatusCode, "bytes", len(raw))
	return interpret(resp.StatusCode, raw, m), nil
}

func (o *Orchestrator) build(ctx context.Context, req JobRequest) (*http.Request, error) {
	if req.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidRequest)
	}
	u, err := url.Parse(req.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint %q: %v", ErrInvalidRequest, req.Endpoint, err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: endpoint %q is not an absolute http(s) URL", ErrInvalidRequest, req.Endpoint)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader = http.NoBody
	switch req.Method {
	case http.MethodGet:
		if req.Body != nil {
			return nil, fmt.Errorf("%w: GET request must not carry a body", ErrInvalidRequest)
		}
	case http.MethodPost:
		if req.Body == nil {
			return nil, fmt.Errorf("%w: POST request requires a JSON body", ErrInvalidRequest)
		}
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: body is not JSON-serializable: %v", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(payload)
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if o.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.authToken)
	}
	return httpReq, nil
}

// interpret turns a status code and raw body into a Result.
func interpret(status int, raw []byte, m Mapping) Result {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		res := failure(KindResponseFormat, MessageUnreadable)
		res.HTTPStatus = status
		res.RawBody = truncate(string(raw), rawBodyLimit)
		return res
	}
	body, _ := parsed.(map[string]any)

	if status >= 200 && status < 300 && body != nil && m.isSuccess(body) {
		message := stringField(body, "message")
		if message == "" {
			message = m.DefaultMessage
		}
		runID, idField := m.runID(body)

		extra := make(map[string]any, len(body))
		for k, v := range body {
			switch k {
			case "status", "message", idField:
				continue
			}
			extra[k] = v
		}
		return success(message, runID, extra)
	}

	excerpt := truncate(string(raw), rawBodyLimit)
	var res Result
	switch msg := stringField(body, "message"); {
	case status == http.StatusUnauthorized:
		res = failure(KindPermission, MessageAccessDenied)
	case msg != "":
		res = failure(KindRemote, msg)
	default:
		res = failure(KindRemote, fmt.Sprintf("HTTP %d: %s", status, excerpt))
	}
	res.HTTPStatus = status
	res.RawBody = excerpt
	res.Detail = stringField(body, "error")
	return res
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
