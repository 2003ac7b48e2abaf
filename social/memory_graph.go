package social

import (
	"context"
	"sync"

	"github.com/strandhq/strand/model"
)

// MemoryGraph is an in-memory GraphStore used by tests and local tooling.
// It holds edges and friendships behind one mutex; InTransaction provides
// atomicity but not rollback, which is sufficient for the happy-path state
// machine checks it backs.
type MemoryGraph struct {
	mu          sync.Mutex
	edges       map[string]map[string]bool
	friendships map[string]bool
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		edges:       map[string]map[string]bool{},
		friendships: map[string]bool{},
	}
}

func pairKey(a, b string) string {
	first, second := model.CanonicalPair(a, b)
	return first + "|" + second
}

func (m *MemoryGraph) EdgeExists(_ context.Context, follower, following string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edges[follower][following], nil
}

func (m *MemoryGraph) CreateEdge(_ context.Context, follower, following string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edges[follower][following] {
		return false, nil
	}
	if m.edges[follower] == nil {
		m.edges[follower] = map[string]bool{}
	}
	m.edges[follower][following] = true
	return true, nil
}

func (m *MemoryGraph) DeleteEdge(_ context.Context, follower, following string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.edges[follower][following] {
		return false, nil
	}
	delete(m.edges[follower], following)
	return true, nil
}

func (m *MemoryGraph) FollowedIds(_ context.Context, follower string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.edges[follower] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryGraph) FriendshipExists(_ context.Context, a, b string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.friendships[pairKey(a, b)], nil
}

func (m *MemoryGraph) UpsertFriendship(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friendships[pairKey(a, b)] = true
	return nil
}

func (m *MemoryGraph) DeleteFriendship(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friendships, pairKey(a, b))
	return nil
}

func (m *MemoryGraph) InTransaction(_ context.Context, fn func(tx GraphStore) error) error {
	return fn(m)
}
