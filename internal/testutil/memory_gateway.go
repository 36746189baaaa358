package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"courier/internal/model"
)

// MemoryGateway is an in-memory stand-in for the relational gateway with
// the same soft-failure contract: operations on a disconnected gateway
// degrade instead of crashing, Connect is the only hard failure point.
type MemoryGateway struct {
	mu        sync.Mutex
	connected bool
	nextID    int64
	rows      map[int64]model.Message

	// ConnectErr makes Connect fail; SaveErr makes every Save fail.
	ConnectErr error
	SaveErr    error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{nextID: 1, rows: make(map[int64]model.Message)}
}

func (g *MemoryGateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ConnectErr != nil {
		return g.ConnectErr
	}
	g.connected = true
	return nil
}

func (g *MemoryGateway) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
	return nil
}

func (g *MemoryGateway) IsConnected(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *MemoryGateway) Save(ctx context.Context, msg *model.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return errors.New("storage not connected")
	}
	if g.SaveErr != nil {
		return g.SaveErr
	}
	msg.ID = g.nextID
	g.nextID++
	g.rows[msg.ID] = *msg
	return nil
}

func (g *MemoryGateway) Recent(ctx context.Context) ([]model.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return nil, nil
	}
	out := make([]model.Message, 0, len(g.rows))
	for _, msg := range g.rows {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out, nil
}

func (g *MemoryGateway) DeleteByID(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return errors.New("storage not connected")
	}
	if _, ok := g.rows[id]; !ok {
		return errors.New("message not found")
	}
	delete(g.rows, id)
	return nil
}

func (g *MemoryGateway) ClearAll(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return errors.New("storage not connected")
	}
	g.rows = make(map[int64]model.Message)
	return nil
}

func (g *MemoryGateway) Count(ctx context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return 0, nil
	}
	return len(g.rows), nil
}
