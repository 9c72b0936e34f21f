package panel

import (
	"context"
	"fmt"
	"strings"

	"social-listening-gateway/internal/pkg/models"
	"social-listening-gateway/internal/trigger"
)

var platformLabels = map[string]string{
	"reddit": "Reddit",
	"quora":  "Quora",
}

type scrapePayload struct {
	URLs []string `json:"urls"`
}

// HasPlatform reports whether platform can be scraped with the current config.
func (s *Service) HasPlatform(platform string) bool {
	_, ok := s.cfg.DatasetID(platform)
	return ok && platformLabels[strings.ToLower(platform)] != ""
}

// Scrape sends the pasted links of one platform to the social scraper.
// Tracking parameters are stripped from every link first.
func (s *Service) Scrape(ctx context.Context, platform string, req *models.ScrapeRequest) Presentation {
	platform = strings.ToLower(platform)
	label := platformLabels[platform]
	datasetID, ok := s.cfg.DatasetID(platform)
	if label == "" || !ok {
		return systemError(fmt.Errorf("unsupported scrape platform %q", platform))
	}

	links := trigger.ExtractTrimmedNonEmptyValues(req.Links, true)
	if len(links) == 0 {
		return render(invalid("No Links Found", "No %s links found. Please paste links before running.", label))
	}

	if !req.Confirmed {
		return confirm("Confirm Scraping", fmt.Sprintf(
			"You are about to send %d %s links for processing. This may take some time.\n\nContinue?",
			len(links), label))
	}

	jobReq := trigger.NewPost(s.cfg.SocialEndpoint, scrapePayload{URLs: links})
	jobReq.Query = map[string]string{"dataset_id": datasetID}

	res, p, ok := s.submit(ctx, jobReq, trigger.ScrapeMapping, label+" links failed to send.")
	if !ok {
		return p
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s links sent successfully!\n\n", label)
	fmt.Fprintf(&b, "Links submitted: %d\n", len(links))
	if res.RunID != "" {
		fmt.Fprintf(&b, "Tracking ID (Snapshot ID): %s\n", res.RunID)
	}
	b.WriteString("\nContent collection is now in progress.")

	return Presentation{Title: "Success!", Body: b.String(), Severity: SeverityInfo, Result: &res}
}
