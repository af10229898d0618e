package analysis

import (
	"sync"

	"github.com/edp1096/spkline/pkg/network"
)

// Service serializes recomputes. Results are written node by node, so two
// recomputes over the same forests must never overlap.
type Service struct {
	mu     sync.Mutex
	engine *Engine
}

func NewService(e *Engine) *Service {
	return &Service{engine: e}
}

func (s *Service) Recompute(in Input) (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Recompute(in)
}

func (s *Service) SuggestCables(in Input, topology network.Topology, nodeID, brand string) ([]Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SuggestCables(in, topology, nodeID, brand)
}

func (s *Service) Engine() *Engine {
	return s.engine
}

func (s *Service) Verify(in Input) (VerifyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Verify(in)
}
