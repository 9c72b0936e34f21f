package panel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"social-listening-gateway/internal/pkg/models"
	"social-listening-gateway/internal/trigger"
)

const (
	searchSource = "reddit"
	sitePrefix   = "site:reddit.com "
)

type searchPlan struct {
	query     string
	fullQuery string
	page      trigger.Page
}

func validateSearch(req *models.SearchRequest) (searchPlan, error) {
	if !strings.EqualFold(strings.TrimSpace(req.Source), searchSource) {
		return searchPlan{}, invalid("Missing Info", "Please ensure the Source field contains %q.", searchSource)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return searchPlan{}, invalid("Missing Info",
			`Please enter a search phrase or keyword in the Search Query field before clicking "Get Results".`)
	}

	page, err := trigger.ResolvePageOffset(req.StartPage.String())
	if err != nil {
		return searchPlan{}, invalid("Invalid Input",
			`The "Start Page Number" must be a non-negative whole number (e.g., 0 or 1 for the first page, 2 for the second page).`)
	}

	return searchPlan{query: query, fullQuery: sitePrefix + query, page: page}, nil
}

// Search asks the search-link collector for one page of results.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) Presentation {
	plan, err := validateSearch(req)
	if err != nil {
		return render(err)
	}

	params := map[string]string{"q": plan.fullQuery}
	if plan.page.Offset > 0 {
		params["start"] = strconv.Itoa(plan.page.Offset)
	}

	res, p, ok := s.submit(ctx, trigger.NewGet(s.cfg.SearchEndpoint, params), trigger.SearchMapping,
		"Something went wrong while trying to get search links.")
	if !ok {
		return p
	}

	rows := res.Text("rows_inserted")
	if rows == "" {
		rows = "an unknown number of"
	}

	var b strings.Builder
	b.WriteString("Successfully collected search links!\n\n")
	fmt.Fprintf(&b, "For the search: %q\n", plan.query)
	fmt.Fprintf(&b, "(Full query used: %q)\n", plan.fullQuery)
	fmt.Fprintf(&b, "Starting from page number: %d\n", plan.page.DisplayPage)
	fmt.Fprintf(&b, "Links found and saved: %s", rows)
	b.WriteString("\n\nClick \"View Results\" to see the collected links.")

	return Presentation{Title: "Success!", Body: b.String(), Severity: SeverityInfo, Result: &res}
}
