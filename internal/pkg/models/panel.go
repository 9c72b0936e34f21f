package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ClusterRequest is posted by the "Topic Modeler" sheet.
type ClusterRequest struct {
	IDs         []any      `json:"ids"`
	NumClusters CellString `json:"n_clusters"`
	Description string     `json:"description"`
	Confirmed   bool       `json:"confirmed"`
}

// ScrapeRequest is posted by the "Social Scraper" sheet.
type ScrapeRequest struct {
	Links     []any `json:"links"`
	Confirmed bool  `json:"confirmed"`
}

// SearchRequest is posted by the "Search Links" sheet.
type SearchRequest struct {
	Source    string     `json:"source"`
	Query     string     `json:"query"`
	StartPage CellString `json:"start_page"`
}

// SocketMessage is one action sent over the panel websocket.
type SocketMessage struct {
	ID       string          `json:"id"`
	Action   string          `json:"action"`             // "cluster" | "scrape" | "search"
	Platform string          `json:"platform,omitempty"` // scrape only
	Payload  json.RawMessage `json:"payload"`
}

// SocketReply answers one SocketMessage.
type SocketReply struct {
	ID           string `json:"id"`
	Type         string `json:"type"` // "result" | "error"
	Presentation any    `json:"presentation,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CellString holds a cell value that may arrive as a JSON string, number or
// null.
type CellString string

func (c *CellString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CellString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cell value must be a string or number: %w", err)
	}
	*c = CellString(n.String())
	return nil
}

// String returns the trimmed cell text.
func (c CellString) String() string {
	return strings.TrimSpace(string(c))
}
