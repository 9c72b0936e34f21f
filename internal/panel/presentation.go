package panel

import (
	"fmt"
	"strings"

	"social-listening-gateway/internal/trigger"
)

// Severity tells the UI which kind of modal to show.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityConfirm Severity = "confirm"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const supportFooter = "If the problem continues, please contact support."

// Presentation is what the control panel renders in its popup.
type Presentation struct {
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Severity Severity        `json:"severity"`
	Detail   string          `json:"detail,omitempty"`
	Result   *trigger.Result `json:"result,omitempty"`
}

// ValidationError is bad or missing operator input caught before any call.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func invalid(title, format string, args ...any) *ValidationError {
	return &ValidationError{Title: title, Message: fmt.Sprintf(format, args...)}
}

func warning(err *ValidationError) Presentation {
	return Presentation{Title: err.Title, Body: err.Message, Severity: SeverityWarning}
}

func confirm(title, body string) Presentation {
	return Presentation{Title: title, Body: body, Severity: SeverityConfirm}
}

func systemError(err error) Presentation {
	return Presentation{
		Title:    "System Error",
		Body:     "An unexpected system error occurred. Please contact support and provide these details:\n" + err.Error(),
		Severity: SeverityError,
		Detail:   err.Error(),
	}
}

// technicalDetail is the support-facing line for a failed call.
func technicalDetail(res trigger.Result) string {
	var parts []string
	if res.HTTPStatus != 0 {
		parts = append(parts, fmt.Sprintf("HTTP Status: %d", res.HTTPStatus))
	}
	if res.Detail != "" {
		parts = append(parts, res.Detail)
	}
	if res.RawBody != "" {
		parts = append(parts, "Raw Response: "+res.RawBody)
	}
	return strings.Join(parts, ", ")
}
