// Package planner turns a user query into an ordered battle plan of agent
// tasks: an LLM composes the plan from the registered agent catalog, with a
// deterministic keyword planner as fallback.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// Planner produces a battle plan for a query against the registered agents.
type Planner struct {
	llm      llmclient.Client
	registry AgentCatalog
}

// AgentCatalog is the planner-facing view of the agent registry: metadata
// lookup only, no Agent instances.
type AgentCatalog interface {
	GetAll() map[models.AgentName]*models.AgentMetadata
	Has(name models.AgentName) bool
}

// New builds a Planner.
func New(llm llmclient.Client, registry AgentCatalog) *Planner {
	return &Planner{llm: llm, registry: registry}
}

type plannedTask struct {
	Agent      string         `json:"agent"`
	Objective  string         `json:"objective"`
	Parameters map[string]any `json:"parameters"`
	Priority   int            `json:"priority"`
}

// Plan composes a battle plan for the current state's user query and recent
// conversation. It never returns an error: an LLM failure or unparsable
// response falls back to the deterministic keyword planner.
func (p *Planner) Plan(ctx context.Context, state *models.GraphState) []models.AgentTask {
	system := p.buildSystemPrompt()
	user := p.buildUserMessage(state)

	raw, err := p.llm.Complete(ctx, llmclient.Request{System: system, User: user})
	if err == nil {
		if tasks := p.parseAndFilter(raw, state.UserQuery); len(tasks) > 0 {
			return tasks
		}
	}

	return keywordPlan(state.UserQuery, state.Metadata)
}

func (p *Planner) buildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are the planner for an e-commerce operations reasoning system. ")
	sb.WriteString("Break the user's question into a battle plan: a JSON array of tasks, each ")
	sb.WriteString("{\"agent\": string, \"objective\": string, \"parameters\": object, \"priority\": int (1=highest)}. ")
	sb.WriteString("Respond with the JSON array only, no prose and no code fences.\n\n")
	sb.WriteString("## Available agents\n\n")

	agents := p.registry.GetAll()
	names := make([]models.AgentName, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, name := range names {
		meta := agents[name]
		sb.WriteString(fmt.Sprintf("### %s (%s)\n%s\n", meta.DisplayName, meta.Name, meta.Description))
		for _, cap := range meta.Capabilities {
			sb.WriteString(fmt.Sprintf("- mode %q: %s. parameters: %s. e.g. %q / %q\n",
				cap.Name, cap.Description, strings.Join(cap.Parameters, ", "),
				cap.ExampleQueries[0], cap.ExampleQueries[1]))
		}
		if len(meta.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("  trigger keywords: %s\n", strings.Join(meta.Keywords, ", ")))
		}
	}

	sb.WriteString("\nThis is a slimmed agent architecture: each agent only has the capabilities listed " +
		"above. A query outside an agent's capabilities will come back as cannot_handle and be rerouted " +
		"to data_analyst, so do not assign compound or comparative work to a narrow specialist; send it " +
		"to data_analyst directly.\n")

	return sb.String()
}

func (p *Planner) buildUserMessage(state *models.GraphState) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(state.UserQuery)

	if n := len(state.ConversationHistory); n > 0 {
		start := n - 3
		if start < 0 {
			start = 0
		}
		sb.WriteString("\n\nRecent conversation:\n")
		for _, turn := range state.ConversationHistory[start:] {
			sb.WriteString("- " + turn + "\n")
		}
	}
	if len(state.Metadata) > 0 {
		encoded, err := json.Marshal(state.Metadata)
		if err == nil {
			sb.WriteString("\nCaller metadata: " + string(encoded))
		}
	}
	return sb.String()
}

var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

func (p *Planner) parseAndFilter(raw, userQuery string) []models.AgentTask {
	cleaned := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	if start := strings.Index(cleaned, "["); start > 0 {
		cleaned = cleaned[start:]
	}
	if end := strings.LastIndex(cleaned, "]"); end >= 0 && end < len(cleaned)-1 {
		cleaned = cleaned[:end+1]
	}

	var parsed []plannedTask
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil
	}

	tasks := make([]models.AgentTask, 0, len(parsed))
	for _, pt := range parsed {
		name := models.AgentName(pt.Agent)
		if !p.registry.Has(name) {
			continue
		}
		params := pt.Parameters
		if params == nil {
			params = map[string]any{}
		}
		if mode, ok := params["mode"]; ok {
			params["mode"] = fmt.Sprintf("%v", mode)
		}
		params["query"] = userQuery

		tasks = append(tasks, models.AgentTask{
			Agent:      name,
			Objective:  pt.Objective,
			Parameters: params,
			Priority:   pt.Priority,
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Priority < tasks[j].Priority })
	return tasks
}

var topProductsPattern = regexp.MustCompile(`top\s*(\d+)`)

// keywordPlan is the deterministic fallback used when the LLM call fails or
// yields no usable tasks. Categories accumulate; within a category the first
// matching rule wins.
func keywordPlan(query string, metadata map[string]any) []models.AgentTask {
	lower := strings.ToLower(query)
	var tasks []models.AgentTask
	priority := 1

	isTopProductQuery := containsAny(lower, "top", "best", "highest", "most sold") &&
		containsAny(lower, "product", "item", "sku", "selling")

	switch {
	case isTopProductQuery:
		limit := 5
		if m := topProductsPattern.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				limit = n
			}
		}
		tasks = append(tasks, newTask(models.AgentSales, "top_products", map[string]any{
			"mode": "top_products", "query": query, "limit": limit,
		}, priority))
		priority++
	case containsAny(lower, "sale", "revenue", "trend", "income"):
		tasks = append(tasks, newTask(models.AgentSales, "summary", map[string]any{
			"mode": "summary", "query": query,
		}, priority))
		priority++
	}

	if containsAny(lower, "stock", "inventory", "restock") {
		productIDs := []int{1, 2, 3}
		if focus, ok := metadata["focus_product_ids"].([]int); ok && len(focus) > 0 {
			productIDs = focus
		}
		tasks = append(tasks, newTask(models.AgentInventory, "check_stock", map[string]any{
			"mode": "check_stock", "query": query, "product_ids": productIDs,
		}, priority))
		priority++
	}

	if containsAny(lower, "campaign", "ad", "roas", "spend") {
		tasks = append(tasks, newTask(models.AgentMarketing, "campaign_spend", map[string]any{
			"mode": "campaign_spend", "query": query,
		}, priority))
		priority++
	}

	if containsAny(lower, "ticket", "support", "sentiment", "complaint") {
		tasks = append(tasks, newTask(models.AgentSupport, "sentiment_analysis", map[string]any{
			"mode": "sentiment_analysis", "query": query,
		}, priority))
		priority++
	}

	if containsAny(lower, "why", "reason", "cause", "explain", "happened") {
		tasks = append(tasks, newTask(models.AgentHistorian, "query", map[string]any{
			"mode": "query", "query": query,
		}, priority))
		priority++
	}

	if len(tasks) == 0 {
		tasks = append(tasks, newTask(models.AgentSales, "summary", map[string]any{
			"mode": "summary", "query": query,
		}, 1))
	}

	return tasks
}

func newTask(agentName models.AgentName, objective string, params map[string]any, priority int) models.AgentTask {
	return models.AgentTask{Agent: agentName, Objective: objective, Parameters: params, Priority: priority}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
