package workspace

import (
	"context"
	"fmt"
	"strings"
)

// EventType classifies store notifications.
type EventType string

const (
	EventTerminal      EventType = "terminal"
	EventTerminalClear EventType = "terminal_clear"
	EventState         EventType = "state"
)

// Event is delivered to listeners after each applied action.
type Event struct {
	TenantID string         `json:"tenant_id"`
	Type     EventType      `json:"type"`
	Action   string         `json:"action,omitempty"`
	Entry    *TerminalEntry `json:"entry,omitempty"`
}

// Listener receives store events. It must not block.
type Listener func(Event)

// AddTerminalOutput prepends an entry to the terminal buffer.
func (s *Store) AddTerminalOutput(ctx context.Context, typ OutputType, message string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown output type %q", ErrInvalidInput, typ)
	}
	// The entry is minted under the store lock so buffer order matches id order.
	_, err := s.transition(ctx, func(State) ([]Action, error) {
		return []Action{AppendTerminal{Entry: s.newEntry(typ, message)}}, nil
	})
	return err
}

// ClearTerminal empties the terminal buffer.
func (s *Store) ClearTerminal(ctx context.Context) error {
	return s.dispatch(ctx, ClearTerminal{})
}

// Terminal returns the terminal buffer, newest first.
func (s *Store) Terminal() []TerminalEntry {
	return s.Snapshot().TerminalOutput
}

// newEntry builds an entry whose id pairs the millisecond clock with a
// process-wide counter, so bursts within one millisecond stay unique.
func (s *Store) newEntry(typ OutputType, message string) TerminalEntry {
	now := s.deps.Clock()
	return TerminalEntry{
		ID:        fmt.Sprintf("output-%d-%d", now.UnixMilli(), s.seq.Add(1)),
		Type:      typ,
		Message:   message,
		Timestamp: now,
	}
}

// Subscribe registers fn for store events and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) publish(a Action) {
	ev := Event{TenantID: s.tenantID, Type: EventState, Action: actionName(a)}
	switch a := a.(type) {
	case AppendTerminal:
		entry := a.Entry
		ev.Type = EventTerminal
		ev.Entry = &entry
	case ClearTerminal:
		ev.Type = EventTerminalClear
	}

	s.lmu.RLock()
	defer s.lmu.RUnlock()
	for _, fn := range s.listeners {
		fn(ev)
	}
}

func actionName(a Action) string {
	name := fmt.Sprintf("%T", a)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
