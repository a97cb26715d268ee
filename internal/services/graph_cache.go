package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// GraphCache hands out compiled scenario graphs. Scenario versions are
// immutable once created, so a compiled graph never goes stale.
type GraphCache struct {
	scenarioRepo repositories.ScenarioRepository
	mu           sync.RWMutex
	graphs       map[uuid.UUID]*Graph
}

func NewGraphCache(scenarioRepo repositories.ScenarioRepository) *GraphCache {
	return &GraphCache{
		scenarioRepo: scenarioRepo,
		graphs:       make(map[uuid.UUID]*Graph),
	}
}

func (c *GraphCache) Get(scenarioID uuid.UUID) (*Graph, error) {
	c.mu.RLock()
	graph, ok := c.graphs[scenarioID]
	c.mu.RUnlock()
	if ok {
		return graph, nil
	}

	scenario, err := c.scenarioRepo.FindByID(scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	graph, err = CompileGraph(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario graph: %w", err)
	}

	c.mu.Lock()
	c.graphs[scenarioID] = graph
	c.mu.Unlock()

	return graph, nil
}
