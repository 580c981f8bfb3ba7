package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/tooltransport"
)

// fakeVectorStore emulates the memory tools behind the transport: saved
// incidents are "similar" when they share a word with the query.
type fakeVectorStore struct {
	rows []map[string]any
}

func (f *fakeVectorStore) Invoke(_ context.Context, tool string, args map[string]any) (any, error) {
	switch tool {
	case "save_to_memory":
		row := map[string]any{
			"id":      fmt.Sprintf("inc-%d", len(f.rows)+1),
			"summary": args["summary"],
		}
		if rc, ok := args["root_cause"]; ok {
			row["root_cause"] = rc
		}
		f.rows = append(f.rows, row)
		return map[string]any{"id": row["id"]}, nil

	case "query_vector_memory":
		query, _ := args["query"].(string)
		var matches []any
		for _, row := range f.rows {
			summary, _ := row["summary"].(string)
			if sharesWord(summary, query) {
				match := map[string]any{"similarity": 0.9}
				for k, v := range row {
					match[k] = v
				}
				matches = append(matches, match)
			}
		}
		return map[string]any{"matches": matches}, nil

	default:
		return nil, &tooltransport.ToolInvocationError{Tool: tool, Type: "unknown_tool"}
	}
}

func sharesWord(a, b string) bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		words[w] = true
	}
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if words[w] {
			return true
		}
	}
	return false
}

func TestSaveThenQueryReturnsSavedIncident(t *testing.T) {
	svc := New(&fakeVectorStore{})
	ctx := context.Background()

	id, err := svc.Append(ctx, models.MemoryIncident{
		Summary:   "sales dipped after campaign pause",
		RootCause: "marketing budget cut mid-week",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	hits, err := svc.QuerySimilar(ctx, "sales dipped after campaign pause", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, id, hits[0].Incident.ID)
	assert.Equal(t, "marketing budget cut mid-week", hits[0].Incident.RootCause)
	assert.Greater(t, hits[0].Similarity, 0.0)
}

func TestQuerySimilarNoMatches(t *testing.T) {
	svc := New(&fakeVectorStore{})

	hits, err := svc.QuerySimilar(context.Background(), "unrelated question", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestAppendOmitsEmptyOptionalFields(t *testing.T) {
	store := &fakeVectorStore{}
	svc := New(store)

	_, err := svc.Append(context.Background(), models.MemoryIncident{Summary: "only a summary"})
	require.NoError(t, err)
	_, hasRootCause := store.rows[0]["root_cause"]
	assert.False(t, hasRootCause)
}

type malformedTransport struct{ result any }

func (m *malformedTransport) Invoke(context.Context, string, map[string]any) (any, error) {
	return m.result, nil
}

func TestAppendMalformedResultIsInvocationError(t *testing.T) {
	svc := New(&malformedTransport{result: "not an object"})

	_, err := svc.Append(context.Background(), models.MemoryIncident{Summary: "s"})

	var invErr *tooltransport.ToolInvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestQuerySimilarMissingMatchesKeyIsEmpty(t *testing.T) {
	svc := New(&malformedTransport{result: map[string]any{}})

	hits, err := svc.QuerySimilar(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
