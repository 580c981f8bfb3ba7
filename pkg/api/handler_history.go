package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultIncidentLimit = 20
	defaultSearchK       = 5
)

// listIncidentsHandler handles GET /history/incidents?limit=&offset=,
// served straight from the vector store's listing tool.
func (s *Server) listIncidentsHandler(c *gin.Context) {
	limit := intQuery(c, "limit", defaultIncidentLimit)
	offset := intQuery(c, "offset", 0)

	raw, err := s.tools.Invoke(c.Request.Context(), "list_incidents", map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, IncidentsListResponse{Items: decodeIncidents(raw)})
}

// searchIncidentsHandler handles GET /history/incidents/search?query=&k=.
func (s *Server) searchIncidentsHandler(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "query parameter is required"})
		return
	}
	k := intQuery(c, "k", defaultSearchK)

	hits, err := s.memory.QuerySimilar(c.Request.Context(), query, k)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	items := make([]IncidentResponse, 0, len(hits))
	for _, hit := range hits {
		items = append(items, IncidentResponse{
			ID:         hit.Incident.ID,
			Summary:    hit.Incident.Summary,
			RootCause:  hit.Incident.RootCause,
			Outcome:    hit.Incident.Outcome,
			Similarity: hit.Similarity,
		})
	}
	c.JSON(http.StatusOK, IncidentsListResponse{Items: items})
}

// decodeIncidents converts the listing tool's generic result into wire rows.
func decodeIncidents(raw any) []IncidentResponse {
	m, ok := raw.(map[string]any)
	if !ok {
		return []IncidentResponse{}
	}
	encoded, err := json.Marshal(m["incidents"])
	if err != nil {
		return []IncidentResponse{}
	}
	var items []IncidentResponse
	if err := json.Unmarshal(encoded, &items); err != nil {
		return []IncidentResponse{}
	}
	if items == nil {
		items = []IncidentResponse{}
	}
	return items
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
