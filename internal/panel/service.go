// Package panel implements the control-panel actions: topic clustering,
// social link scraping and search-link collection.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"social-listening-gateway/internal/ai"
	"social-listening-gateway/internal/config"
	"social-listening-gateway/internal/trigger"
)

const summaryTimeout = 10 * time.Second

// Submitter sends one trigger call.
type Submitter interface {
	SubmitJob(ctx context.Context, req trigger.JobRequest, m trigger.Mapping) (trigger.Result, error)
}

// Service runs panel actions against the configured endpoints.
type Service struct {
	cfg        *config.Config
	submitter  Submitter
	summarizer ai.Summarizer
}

// NewService creates a Service. summarizer may be nil.
func NewService(cfg *config.Config, submitter Submitter, summarizer ai.Summarizer) *Service {
	return &Service{cfg: cfg, submitter: submitter, summarizer: summarizer}
}

// submit sends req and renders failures. ok is false when the returned
// Presentation is already final.
func (s *Service) submit(ctx context.Context, req trigger.JobRequest, m trigger.Mapping, lead string) (trigger.Result, Presentation, bool) {
	logger := slog.With("action", m.Name)

	res, err := s.submitter.SubmitJob(ctx, req, m)
	if err != nil {
		logger.Error("Trigger request rejected", "error", err)
		return res, systemError(err), false
	}
	if !res.OK() {
		logger.Warn("Trigger failed", "kind", res.Kind, "status", res.HTTPStatus, "message", res.Message)
		return res, s.failure(ctx, lead, res), false
	}

	logger.Info("Trigger accepted", "runId", res.RunID)
	return res, Presentation{}, true
}

func (s *Service) failure(ctx context.Context, lead string, res trigger.Result) Presentation {
	body := lead + " Please try again.\n\nDetails: " + res.Message
	if hint := s.summarize(ctx, res); hint != "" {
		body += "\n\nWhat this means: " + hint
	}
	body += "\n\n" + supportFooter

	return Presentation{
		Title:    "Error",
		Body:     body,
		Severity: SeverityError,
		Detail:   technicalDetail(res),
		Result:   &res,
	}
}

func (s *Service) summarize(ctx context.Context, res trigger.Result) string {
	if s.summarizer == nil || res.RawBody == "" || res.Kind == trigger.KindPermission {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(ctx, res.RawBody)
	if err != nil {
		slog.Debug("Summary unavailable", "error", err)
		return ""
	}
	return summary
}

// render turns a validation error into a warning and anything else into a
// system error.
func render(err error) Presentation {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return warning(verr)
	}
	return systemError(err)
}
