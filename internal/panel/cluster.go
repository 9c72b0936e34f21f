package panel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"social-listening-gateway/internal/pkg/models"
	"social-listening-gateway/internal/trigger"
)

const minClusters = 2

type clusterPayload struct {
	IDs         []string `json:"ids"`
	NumClusters int      `json:"n_clusters"`
	Description string   `json:"description"`
}

func validateCluster(req *models.ClusterRequest) (clusterPayload, error) {
	ids := trigger.ExtractTrimmedNonEmptyValues(req.IDs, false)
	if len(ids) == 0 {
		return clusterPayload{}, invalid("No Content Selected",
			"Please paste the IDs of the social content you want to analyze into the ID column before starting.")
	}

	n, err := strconv.Atoi(req.NumClusters.String())
	if err != nil || n < minClusters {
		return clusterPayload{}, invalid("Invalid Number",
			"Please enter a whole number (e.g., 5, 10) that is %d or greater.", minClusters)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return clusterPayload{}, invalid("Title Needed",
			"You must enter a title for this analysis to proceed.")
	}

	return clusterPayload{IDs: ids, NumClusters: n, Description: description}, nil
}

// Cluster starts a topic clustering run over the pasted content IDs.
func (s *Service) Cluster(ctx context.Context, req *models.ClusterRequest) Presentation {
	payload, err := validateCluster(req)
	if err != nil {
		return render(err)
	}

	if !req.Confirmed {
		return confirm("Confirm Analysis Start", fmt.Sprintf(
			"You are about to start analyzing %d pieces of content to find %d topics.\n\n"+
				"Your analysis title: %q\n\n"+
				"This will trigger a process in the cloud and may take a few minutes to complete.\n\nDo you want to continue?",
			len(payload.IDs), payload.NumClusters, payload.Description))
	}

	res, p, ok := s.submit(ctx, trigger.NewPost(s.cfg.ClusterEndpoint, payload), trigger.ClusterMapping,
		"Something went wrong while trying to start your topic analysis.")
	if !ok {
		return p
	}

	runID := res.RunID
	if runID == "" {
		runID = "N/A"
	}

	var b strings.Builder
	b.WriteString("Topic analysis has started successfully!\n\n")
	fmt.Fprintf(&b, "Your unique Analysis ID: %s\n", runID)
	if execution := res.Text("workflow_execution_name"); execution != "" {
		fmt.Fprintf(&b, "(Cloud Process ID: %s)\n", lastSegment(execution))
	}
	fmt.Fprintf(&b, "\nYour results will appear in the '%s'.\n", s.cfg.DashboardName)
	fmt.Fprintf(&b, "Please use your Analysis ID or the title %q to find your results.", payload.Description)

	return Presentation{Title: "Analysis Started!", Body: b.String(), Severity: SeverityInfo, Result: &res}
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
