package agent

import (
	"fmt"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// BuildRegistry constructs the six fixed domain agents from their metadata
// and shared dependencies, and returns them wrapped in a Registry.
func BuildRegistry(
	meta map[models.AgentName]*models.AgentMetadata,
	transport toolInvoker,
	llm llmclient.Client,
	mem memoryQuerier,
) (*Registry, error) {
	agents := make(map[models.AgentName]Agent, len(meta))

	for _, name := range []models.AgentName{
		models.AgentSales, models.AgentInventory, models.AgentMarketing,
		models.AgentSupport, models.AgentDataAnalyst, models.AgentHistorian,
	} {
		m, ok := meta[name]
		if !ok {
			return nil, fmt.Errorf("agent factory: missing metadata for %s", name)
		}
		switch name {
		case models.AgentSales:
			agents[name] = NewSalesAgent(*m, transport)
		case models.AgentInventory:
			agents[name] = NewInventoryAgent(*m, transport)
		case models.AgentMarketing:
			agents[name] = NewMarketingAgent(*m, transport)
		case models.AgentSupport:
			agents[name] = NewSupportAgent(*m, transport)
		case models.AgentDataAnalyst:
			agents[name] = NewDataAnalystAgent(*m, llm)
		case models.AgentHistorian:
			agents[name] = NewHistorianAgent(*m, mem)
		}
	}

	return NewRegistry(agents), nil
}
