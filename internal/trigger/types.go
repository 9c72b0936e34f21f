// Package trigger sends one-shot trigger calls to remote job endpoints and
// normalizes whatever comes back into a single Result shape.
package trigger

import (
	"errors"
	"net/http"
)

// ErrInvalidRequest marks a JobRequest that could never be sent. It is a
// programmer error, not a remote failure.
var ErrInvalidRequest = errors.New("invalid job request")

// JobRequest describes a single outbound trigger call.
type JobRequest struct {
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"` // http.MethodGet | http.MethodPost
	Query    map[string]string `json:"query,omitempty"`
	Body     any               `json:"body,omitempty"` // POST only
}

// NewGet builds a GET trigger with query parameters.
func NewGet(endpoint string, query map[string]string) JobRequest {
	return JobRequest{Endpoint: endpoint, Method: http.MethodGet, Query: query}
}

// NewPost builds a POST trigger with a JSON body.
func NewPost(endpoint string, body any) JobRequest {
	return JobRequest{Endpoint: endpoint, Method: http.MethodPost, Body: body}
}

// Status tags a Result as success or failure.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// FailureKind says why a trigger call failed.
type FailureKind string

const (
	KindTransport      FailureKind = "transport"
	KindResponseFormat FailureKind = "response_format"
	KindRemote         FailureKind = "remote"
	KindPermission     FailureKind = "permission"
)

// Fixed failure messages.
const (
	MessageTransport    = "transport error"
	MessageUnreadable   = "unreadable server response"
	MessageTooLarge     = "server response too large"
	MessageAccessDenied = "Access Denied: the service rejected the request. Please ensure your permissions are correct or contact support."
)

// Result is the normalized outcome of a trigger call. Success results carry
// Message, RunID and Extra; failure results carry Kind, Message, HTTPStatus,
// RawBody and Detail.
type Result struct {
	Status     Status         `json:"status"`
	Message    string         `json:"message"`
	RunID      string         `json:"run_id,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
	Kind       FailureKind    `json:"kind,omitempty"`
	HTTPStatus int            `json:"http_status,omitempty"`
	RawBody    string         `json:"raw_body,omitempty"`
	Detail     string         `json:"detail,omitempty"`
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Text renders Extra[key] as text, or "" when it is absent.
func (r Result) Text(key string) string {
	return scalarString(r.Extra[key])
}

func success(message, runID string, extra map[string]any) Result {
	return Result{Status: StatusSuccess, Message: message, RunID: runID, Extra: extra}
}

func failure(kind FailureKind, message string) Result {
	return Result{Status: StatusFailure, Kind: kind, Message: message}
}
