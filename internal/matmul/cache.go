package matmul

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/subgraph"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Key identifies one compiled shape-rewrite program. Two multiplications
// share a program exactly when every field matches.
type Key struct {
	Device      tensor.Device
	DType       string // tensor.Type.String of the first operand
	D1, D2      int
	TransposeA  bool
	TransposeB  bool
	ComputeMode ops.ComputeMode
	Format      ops.Format
	Strategy    ops.Strategy
	Path        Path
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%dx%d/tA=%t/tB=%t/%s/%s/%s",
		k.Path, k.Device, k.DType, k.D1, k.D2, k.TransposeA, k.TransposeB, k.ComputeMode, k.Format, k.Strategy)
}

func (k Key) param() ops.MatMulParam {
	return ops.MatMulParam{
		TransposeA:  k.TransposeA,
		TransposeB:  k.TransposeB,
		ComputeMode: k.ComputeMode,
		Format:      k.Format,
		Strategy:    k.Strategy,
	}
}

// Store holds compiled programs. Implementations must be safe for concurrent
// use; LoadOrStore keeps the first program stored under a key.
type Store interface {
	Load(key Key) (*subgraph.Program, bool)
	LoadOrStore(key Key, p *subgraph.Program) (actual *subgraph.Program, loaded bool)
}

// MapStore is the default Store, backed by a sync.Map.
type MapStore struct {
	m sync.Map
}

// Load returns the program stored under key.
func (s *MapStore) Load(key Key) (*subgraph.Program, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*subgraph.Program), true
}

// LoadOrStore stores p unless a program is already present.
func (s *MapStore) LoadOrStore(key Key, p *subgraph.Program) (*subgraph.Program, bool) {
	v, loaded := s.m.LoadOrStore(key, p)
	return v.(*subgraph.Program), loaded
}

// Cache builds programs lazily and keeps them for its lifetime.
// Concurrent misses on the same key build once.
type Cache struct {
	store  Store
	group  singleflight.Group
	builds atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore replaces the default in-memory store.
func WithStore(s Store) CacheOption {
	return func(c *Cache) {
		c.store = s
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{store: &MapStore{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Builds returns how many programs this cache has compiled.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

// Get returns the program for key, compiling it on first use.
func (c *Cache) Get(key Key) (*subgraph.Program, error) {
	if p, ok := c.store.Load(key); ok {
		return p, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if p, ok := c.store.Load(key); ok {
			return p, nil
		}
		p, err := Compile(key)
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)
		slog.Debug("matmul program compiled", "key", key.String(), "ops", len(p.Ops()))
		actual, _ := c.store.LoadOrStore(key, p)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*subgraph.Program), nil
}
