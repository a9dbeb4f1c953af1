// Package engine drives the multi-step, pausable field resolution process:
// one state machine per session, one session per host surface.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formnerd/internal/answer"
	"formnerd/internal/form"
	"formnerd/internal/match"
	"formnerd/internal/question"
	"formnerd/internal/safety"
)

// ErrSurface wraps failures of the form-surface collaborator. They are fatal
// to the session: retrying against a surface in an unknown state risks
// double-applying values.
var ErrSurface = errors.New("form surface failure")

// Options control per-session behavior.
type Options struct {
	// AutoPlayback applies matched answers without suspending for approval.
	AutoPlayback bool
	// AutoProceed triggers one safety-gated proceed control on completion.
	AutoProceed bool
}

// Config holds engine tunables. Zero values fall back to defaults.
type Config struct {
	// Threshold a similarity score must strictly exceed to propose a match.
	Threshold float64
	// MinPromptLen is the minimum cleaned prompt length worth matching.
	MinPromptLen int
	// ProceedDelay is the visible delay before an auto-proceed invocation.
	ProceedDelay time.Duration
}

const (
	defaultMinPromptLen = 3
	defaultProceedDelay = 1500 * time.Millisecond
)

func (c Config) minPromptLen() int {
	if c.MinPromptLen <= 0 {
		return defaultMinPromptLen
	}
	return c.MinPromptLen
}

func (c Config) proceedDelay() time.Duration {
	if c.ProceedDelay <= 0 {
		return defaultProceedDelay
	}
	return c.ProceedDelay
}

// Snapshot is a point-in-time view of a session for introspection.
type Snapshot struct {
	ID           string `json:"id"`
	SurfaceID    string `json:"surface_id"`
	State        string `json:"state"`
	CurrentIndex int    `json:"current_index"`
	FieldCount   int    `json:"field_count"`
	Processed    int    `json:"processed"`
	Skipped      int    `json:"skipped"`
	LastError    string `json:"last_error,omitempty"`
}

// Session owns one resolution run over the ordered fields of one surface.
// All mutable state lives here; nothing is shared between sessions.
type Session struct {
	id        string
	surfaceID string
	opts      Options
	cfg       Config

	surface  form.Surface
	store    form.KnowledgeStore
	matcher  *match.Matcher
	approver form.Approver
	logger   *zap.Logger

	mu           sync.RWMutex
	state        State
	fields       []form.Field
	currentIndex int
	processed    map[int]bool
	skipped      map[int]bool
	lastErr      error

	pauseRequested bool
	resumeCh       chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}
}

func newSession(ctx context.Context, surfaceID string, surface form.Surface, store form.KnowledgeStore,
	matcher *match.Matcher, approver form.Approver, cfg Config, opts Options, logger *zap.Logger) *Session {
	sctx, cancel := context.WithCancel(ctx)
	return &Session{
		id:        uuid.NewString(),
		surfaceID: surfaceID,
		opts:      opts,
		cfg:       cfg,
		surface:   surface,
		store:     store,
		matcher:   matcher,
		approver:  approver,
		logger:    logger.With(zap.String("surface", surfaceID)),
		state:     StateIdle,
		processed: make(map[int]bool),
		skipped:   make(map[int]bool),
		ctx:       sctx,
		cancel:    cancel,
		events:    make(chan Event, eventBuffer),
		done:      make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SurfaceID returns the identifier of the surface this session operates on.
func (s *Session) SurfaceID() string { return s.surfaceID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the fatal error for sessions in StateError.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Events returns the session's progress/log channel.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns a consistent view of the session's progress.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ID:           s.id,
		SurfaceID:    s.surfaceID,
		State:        s.state.String(),
		CurrentIndex: s.currentIndex,
		FieldCount:   len(s.fields),
		Processed:    len(s.processed),
		Skipped:      len(s.skipped),
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// Pause requests suspension. The session parks before its next step, or
// abandons an in-flight approval wait; currentIndex and all marks are kept
// so Resume continues exactly where it left off.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsTerminal() || s.pauseRequested {
		return
	}
	s.pauseRequested = true
	s.resumeCh = make(chan struct{})
}

// Resume releases a pause. A no-op unless the session is pause-requested.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pauseRequested {
		return
	}
	s.pauseRequested = false
	close(s.resumeCh)
	s.resumeCh = nil
}

// Cancel terminates the session immediately from any state, discarding any
// in-flight approval wait.
func (s *Session) Cancel() {
	s.cancel()
}

// transition moves the state machine, enforcing the transition table. An
// invalid transition indicates a driver bug and is surfaced as StateError.
func (s *Session) transition(to State) {
	s.mu.Lock()
	from := s.state
	if !allowedTransition(from, to) {
		s.state = StateError
		s.lastErr = fmt.Errorf("invalid state transition %s -> %s", from, to)
		s.mu.Unlock()
		s.logger.Error("invalid session transition",
			zap.String("from", from.String()), zap.String("to", to.String()))
		return
	}
	s.state = to
	s.mu.Unlock()
	if from != to {
		s.emit("debug", fmt.Sprintf("state %s -> %s", from, to))
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastErr = err
	idx := s.currentIndex
	s.mu.Unlock()
	s.logger.Error("session failed", zap.Error(err), zap.Int("last_index", idx))
	s.emit("error", fmt.Sprintf("session failed at index %d: %v", idx, err))
}

func (s *Session) finish(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.emit("info", "session "+state.String())
}

// advance marks the current index processed or skipped and moves on. This is
// the only place currentIndex changes, which keeps it monotone and the two
// index sets disjoint.
func (s *Session) advance(processed bool) {
	s.mu.Lock()
	idx := s.currentIndex
	if processed {
		s.processed[idx] = true
	} else {
		s.skipped[idx] = true
	}
	s.currentIndex++
	s.mu.Unlock()
}

// run is the session driver. It executes as a single goroutine; suspension
// points are channel receives guarded by the session context.
func (s *Session) run() {
	defer close(s.done)

	s.transition(StateScanning)
	fields, err := s.surface.DiscoverFields(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			s.finish(StateCancelled)
			return
		}
		s.fail(fmt.Errorf("%w: discover fields: %v", ErrSurface, err))
		return
	}

	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()

	if len(fields) == 0 {
		s.logger.Info("no fillable fields found")
		s.complete()
		return
	}
	s.emit("info", fmt.Sprintf("scanned %d fields", len(fields)))
	s.transition(StateRunning)

	for {
		if s.ctx.Err() != nil {
			s.finish(StateCancelled)
			return
		}
		if !s.waitIfPaused() {
			s.finish(StateCancelled)
			return
		}

		s.mu.RLock()
		idx := s.currentIndex
		total := len(s.fields)
		s.mu.RUnlock()
		if idx >= total {
			break
		}

		if err := s.step(idx, total); err != nil {
			if s.ctx.Err() != nil {
				s.finish(StateCancelled)
				return
			}
			s.fail(err)
			return
		}
	}

	s.complete()
}

// step resolves one field. On return the session has either advanced past the
// field or retained its index because of a pause.
func (s *Session) step(idx, total int) error {
	field := s.fields[idx]
	log := s.logger.With(zap.Int("index", idx), zap.String("field", field.ID))

	prompt := question.Extract(field)
	if len(prompt) < s.cfg.minPromptLen() {
		log.Debug("no usable question, skipping")
		s.advance(false)
		return nil
	}

	entries, err := s.store.GetAll(s.ctx)
	if err != nil {
		return fmt.Errorf("knowledge base read: %w", err)
	}

	res := s.matcher.FindBest(prompt, entries)
	if res == nil {
		log.Debug("no match above threshold, skipping", zap.String("prompt", prompt))
		s.advance(false)
		return nil
	}

	at := answer.Classify(field)
	log.Debug("match found",
		zap.String("prompt", prompt),
		zap.String("question", res.Entry.Question),
		zap.Float64("score", res.Score),
		zap.String("answer_type", string(at)))

	if !s.opts.AutoPlayback {
		decision, paused, err := s.awaitApproval(form.ApprovalRequest{
			SessionID:        s.id,
			Question:         prompt,
			ProposedAnswer:   res.Entry.Answer,
			AvailableOptions: field.Options,
			Current:          idx + 1,
			Total:            total,
		})
		if err != nil {
			return err
		}
		if paused {
			// Index retained; the field is re-matched after resume.
			return nil
		}
		if decision == form.DecisionReject {
			log.Info("answer rejected by user")
			s.advance(false)
			return nil
		}
	}

	applied, err := answer.Apply(s.ctx, s.surface, field, at, res.Entry.Answer)
	if err != nil {
		return fmt.Errorf("%w: apply value: %v", ErrSurface, err)
	}
	if !applied {
		log.Warn("matched answer could not be resolved onto field",
			zap.String("answer", res.Entry.Answer), zap.Strings("options", field.Options))
		s.emit("warn", fmt.Sprintf("unresolvable value for field %q", field.ID))
		s.advance(false)
		return nil
	}

	log.Info("answer applied", zap.Float64("score", res.Score))
	s.emit("info", fmt.Sprintf("applied answer to field %q (%d/%d)", field.ID, idx+1, total))
	s.advance(true)
	return nil
}

// awaitApproval suspends in StateWaitingUser until the approver decides, a
// pause arrives, or the session is cancelled. paused=true means the approval
// wait was abandoned and the session has already parked and resumed. Each wait
// gets its own derived context so an abandoned request is cancelled rather
// than left in flight alongside the re-issued one after resume.
func (s *Session) awaitApproval(req form.ApprovalRequest) (decision form.Decision, paused bool, err error) {
	s.transition(StateWaitingUser)
	s.emit("info", fmt.Sprintf("awaiting approval for %q (%d/%d)", req.Question, req.Current, req.Total))

	reqCtx, cancelReq := context.WithCancel(s.ctx)
	defer cancelReq()

	type outcome struct {
		decision form.Decision
		err      error
	}
	ch := make(chan outcome, 1)
	go func() {
		d, reqErr := s.approver.Request(reqCtx, req)
		ch <- outcome{decision: d, err: reqErr}
	}()

	for {
		s.mu.RLock()
		resumeCh := s.resumeCh
		pauseReq := s.pauseRequested
		s.mu.RUnlock()

		if pauseReq {
			cancelReq() // release the abandoned request before parking
			if !s.parkPaused(resumeCh) {
				return 0, false, s.ctx.Err()
			}
			return 0, true, nil
		}

		select {
		case out := <-ch:
			if out.err != nil {
				if s.ctx.Err() != nil {
					return 0, false, s.ctx.Err()
				}
				return 0, false, fmt.Errorf("approval collaborator: %w", out.err)
			}
			if out.decision == form.DecisionPause {
				s.Pause()
				continue
			}
			s.transition(StateRunning)
			return out.decision, false, nil
		case <-s.ctx.Done():
			return 0, false, s.ctx.Err()
		case <-time.After(50 * time.Millisecond):
			// Re-check for an external pause request.
		}
	}
}

// waitIfPaused parks the session when a pause is pending. Returns false when
// cancelled while parked.
func (s *Session) waitIfPaused() bool {
	s.mu.RLock()
	pauseReq := s.pauseRequested
	resumeCh := s.resumeCh
	s.mu.RUnlock()
	if !pauseReq {
		return true
	}
	return s.parkPaused(resumeCh)
}

func (s *Session) parkPaused(resumeCh chan struct{}) bool {
	s.transition(StatePaused)
	s.logger.Info("session paused", zap.Int("index", s.Snapshot().CurrentIndex))
	select {
	case <-resumeCh:
		s.transition(StateRunning)
		s.logger.Info("session resumed")
		return true
	case <-s.ctx.Done():
		return false
	}
}

// complete terminates the session and, when configured, attempts exactly one
// safety-gated auto-proceed. MayAutoInvoke is the single choke point; nothing
// here can trigger a dangerous control.
func (s *Session) complete() {
	s.finish(StateCompleted)
	s.logger.Info("session completed", zap.Any("snapshot", s.Snapshot()))

	if !s.opts.AutoProceed {
		return
	}

	controls, err := s.surface.FindControls(s.ctx)
	if err != nil {
		s.logger.Warn("auto-proceed aborted: control discovery failed", zap.Error(err))
		return
	}

	for _, c := range controls {
		if !safety.MayAutoInvoke(c) || c.Invoke == nil {
			continue
		}
		s.emit("info", fmt.Sprintf("auto-proceed via %q", c.Text))
		select {
		case <-time.After(s.cfg.proceedDelay()):
		case <-s.ctx.Done():
			return
		}
		if err := c.Invoke(s.ctx); err != nil {
			s.logger.Warn("auto-proceed invocation failed", zap.Error(err))
		}
		return // exactly one attempt, never escalate
	}
	s.logger.Debug("auto-proceed: no eligible control found")
}
