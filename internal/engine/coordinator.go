package engine

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"formnerd/internal/form"
	"formnerd/internal/match"
)

// Coordinator holds independent sessions keyed by surface identifier.
// Sessions for distinct surfaces share nothing but the read path into the
// knowledge store.
type Coordinator struct {
	cfg      Config
	store    form.KnowledgeStore
	approver form.Approver
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewCoordinator creates a coordinator. The approver may be shared across
// sessions; it must tolerate concurrent requests.
func NewCoordinator(cfg Config, store form.KnowledgeStore, approver form.Approver, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cfg:      cfg,
		store:    store,
		approver: approver,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Start begins a resolution run for the surface. Any live session for the
// same surface identifier is cancelled first: at most one non-terminal
// session per surface.
func (c *Coordinator) Start(ctx context.Context, surfaceID string, surface form.Surface, opts Options) *Session {
	c.mu.Lock()
	if prev, ok := c.sessions[surfaceID]; ok && !prev.State().IsTerminal() {
		c.logger.Info("replacing live session for surface", zap.String("surface", surfaceID))
		prev.Cancel()
	}

	matcher := match.NewMatcher(c.cfg.Threshold)
	s := newSession(ctx, surfaceID, surface, c.store, matcher, c.approver, c.cfg, opts, c.logger)
	c.sessions[surfaceID] = s
	c.mu.Unlock()

	go s.run()
	return s
}

// Get returns the session for a surface, or nil.
func (c *Coordinator) Get(surfaceID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[surfaceID]
}

// Cancel terminates the session for a surface, if any. Sessions for other
// surfaces are unaffected.
func (c *Coordinator) Cancel(surfaceID string) {
	c.mu.Lock()
	s := c.sessions[surfaceID]
	c.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// List returns snapshots of all known sessions, ordered by surface id.
func (c *Coordinator) List() []Snapshot {
	c.mu.Lock()
	snaps := make([]Snapshot, 0, len(c.sessions))
	for _, s := range c.sessions {
		snaps = append(snaps, s.Snapshot())
	}
	c.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].SurfaceID < snaps[j].SurfaceID })
	return snaps
}
