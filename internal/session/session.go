// Package session holds per-user application state that does not survive a
// restart: the navigation stack, the busy flag, the current error banner and
// the ordered progress statuses of the running workflow. It replaces ambient
// context state with an explicit struct owned by one manager.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Step identifies a screen in the client navigation stack.
type Step string

const (
	StepHome      Step = "home"
	StepGenerator Step = "generator"
	StepResult    Step = "result"
	StepBrand     Step = "brand"
	StepChat      Step = "chat"
	StepPricing   Step = "pricing"
)

// Status is one observational progress entry of a workflow run. The list is
// UI state only and never drives control flow.
type Status struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// State is one user's session. The stack always holds at least one entry
// after creation.
type State struct {
	mu       sync.Mutex
	stack    []Step
	busy     bool
	errMsg   string
	statuses []Status
	current  uuid.UUID // current project, zero when none
}

// NavigateTo pushes step onto the stack and makes it current.
func (s *State) NavigateTo(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, step)
}

// GoBack pops one entry and makes the new top current. Popping the last
// entry is a no-op; an empty stack falls back to the home screen.
func (s *State) GoBack() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	if len(s.stack) == 0 {
		s.stack = []Step{StepHome}
	}
	return s.stack[len(s.stack)-1]
}

// Current returns the top of the stack.
func (s *State) Current() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return StepHome
	}
	return s.stack[len(s.stack)-1]
}

// Stack returns a copy of the navigation stack, oldest first.
func (s *State) Stack() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Step, len(s.stack))
	copy(out, s.stack)
	return out
}

// BeginOp marks the session busy and clears the error banner and status list.
func (s *State) BeginOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = true
	s.errMsg = ""
	s.statuses = nil
}

// EndOp clears the busy flag and records errMsg (empty on success). Runs in
// the workflow finalizer regardless of outcome.
func (s *State) EndOp(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.errMsg = errMsg
}

func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *State) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// SetError sets the error banner without touching the busy flag. Used by
// guard failures that never start an operation.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// PushStatus appends a pending status entry and returns its index.
func (s *State) PushStatus(stage, label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, Status{Stage: stage, Label: label})
	return len(s.statuses) - 1
}

// MarkDone marks the status at idx as finished.
func (s *State) MarkDone(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 0 && idx < len(s.statuses) {
		s.statuses[idx].Done = true
	}
}

// Statuses returns a copy of the progress list in append order.
func (s *State) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

// SetCurrentProject records which project the user is editing.
func (s *State) SetCurrentProject(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
}

func (s *State) CurrentProject() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Manager hands out session states keyed by user id. Sessions reset to the
// home screen on every process start; the stack is never persisted.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*State
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*State)}
}

// For returns the user's session, creating it on first use.
func (m *Manager) For(userID uuid.UUID) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &State{stack: []Step{StepHome}}
		m.sessions[userID] = s
	}
	return s
}
