package trigger

import "strings"

// Mapping describes how one endpoint reports success.
type Mapping struct {
	Name           string
	DefaultMessage string
	// IDFields are tried in order; dotted paths reach into nested objects.
	IDFields []string
	// ImplicitSuccess treats a 2xx body without a "status" field as success.
	ImplicitSuccess bool
}

var (
	ClusterMapping = Mapping{
		Name:           "cluster",
		DefaultMessage: "Process started.",
		IDFields:       []string{"run_id"},
	}
	ScrapeMapping = Mapping{
		Name:           "scrape",
		DefaultMessage: "Data upload initiated.",
		IDFields:       []string{"bright_data_response.snapshot_id", "snapshot_id", "job_id"},
	}
	SearchMapping = Mapping{
		Name:            "search",
		DefaultMessage:  "Scraper job triggered successfully.",
		ImplicitSuccess: true,
	}
	// DefaultMapping recognizes any of the common identifier fields.
	DefaultMapping = Mapping{
		Name:           "default",
		DefaultMessage: "Job triggered.",
		IDFields:       []string{"run_id", "job_id", "snapshot_id"},
	}
)

// isSuccess decides whether a 2xx body reports success.
func (m Mapping) isSuccess(body map[string]any) bool {
	status, present := body["status"]
	if !present {
		return m.ImplicitSuccess
	}
	s, _ := status.(string)
	return s == "success"
}

// runID returns the first non-empty id and the field it was read from.
func (m Mapping) runID(body map[string]any) (string, string) {
	for _, field := range m.IDFields {
		if v, ok := lookup(body, field); ok {
			if id := scalarString(v); id != "" {
				return id, field
			}
		}
	}
	return "", ""
}

func lookup(body map[string]any, path string) (any, bool) {
	var cur any = body
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
