package allocation

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
)

// ErrStoreClosed is returned by Dispatch once the store has been closed
var ErrStoreClosed = errors.New("draft store closed")

// Store owns the program draft of one creation session. All mutations go
// through Dispatch, which swaps in the command's result atomically and then
// notifies change listeners.
type Store struct {
	mu        sync.RWMutex
	id        string
	draft     entities.Draft
	listeners []func()
	closed    bool
	events    events.EventStore
	logger    *zap.Logger
}

// NewStore creates a store holding an empty draft. eventStore may be nil.
func NewStore(eventStore events.EventStore, log *zap.Logger) *Store {
	return &Store{
		id:     uuid.NewString(),
		draft:  entities.NewDraft(),
		events: eventStore,
		logger: logger.OrNop(log),
	}
}

// ID identifies the draft's event stream
func (s *Store) ID() string {
	return s.id
}

// Draft returns the current draft value
func (s *Store) Draft() entities.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// OnChange registers a listener called after every successful mutation
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Dispatch applies a command. On error the draft is left unchanged and no
// listener is called.
func (s *Store) Dispatch(cmd Command) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	next, err := cmd.Apply(s.draft)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("draft command rejected", zap.String("command", cmd.Name()), zap.Error(err))
		s.appendEvent(events.NewDraftCommandRejectedEvent(s.id, cmd.Name(), err))
		return err
	}
	s.draft = next
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	detail := describe(cmd)
	s.logger.Debug("draft updated",
		zap.String("command", cmd.Name()),
		zap.String("detail", detail),
		zap.Int("items", next.ItemCount()),
		zap.Int("beneficiaries", next.BeneficiaryCount()))
	s.appendEvent(events.NewDraftChangedEvent(s.id, cmd.EventType(), events.DraftChanged{
		Command:          cmd.Name(),
		Detail:           detail,
		ItemCount:        next.ItemCount(),
		BeneficiaryCount: next.BeneficiaryCount(),
	}))

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Reset discards the draft and starts over with an empty one
func (s *Store) Reset() {
	s.mu.Lock()
	s.draft = entities.NewDraft()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.appendEvent(events.NewDraftChangedEvent(s.id, events.DraftDiscardedEvent, events.DraftChanged{Command: "discard"}))
	for _, fn := range listeners {
		fn()
	}
}

// Close discards the draft and rejects every later command
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Reset()
}

func (s *Store) appendEvent(e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.AppendEvent(s.id, e); err != nil {
		s.logger.Warn("failed to record draft event", zap.String("event_type", e.Type()), zap.Error(err))
	}
}

// SetMeta replaces the program metadata
func (s *Store) SetMeta(meta entities.ProgramMeta) error {
	return s.Dispatch(&SetMeta{Meta: meta})
}

// AddItem appends a program item and returns it
func (s *Store) AddItem(spec entities.ItemSpec) (entities.ProgramItem, error) {
	cmd := &AddItem{Spec: spec}
	if err := s.Dispatch(cmd); err != nil {
		return entities.ProgramItem{}, err
	}
	return cmd.Added, nil
}

// RemoveItem removes the program item at index
func (s *Store) RemoveItem(index int) error {
	return s.Dispatch(&RemoveItem{Index: index})
}

// UpdateItemField edits one field of the program item at index
func (s *Store) UpdateItemField(index int, field entities.ItemField, value string) error {
	return s.Dispatch(&UpdateItemField{Index: index, Field: field, Value: value})
}

// BindInventory binds the program item at index to an inventory record
func (s *Store) BindInventory(index int, inv entities.InventoryItem) error {
	return s.Dispatch(&BindInventory{Index: index, Inventory: inv})
}

// AddBeneficiary adds one beneficiary; duplicates fail with ErrDuplicateBeneficiary
func (s *Store) AddBeneficiary(candidate entities.Beneficiary) error {
	return s.Dispatch(&AddBeneficiary{Candidate: candidate})
}

// AddManyBeneficiaries adds up to limit candidates and returns how many were added
func (s *Store) AddManyBeneficiaries(candidates []entities.Beneficiary, limit int) (int, error) {
	cmd := &AddManyBeneficiaries{Candidates: candidates, Limit: limit}
	if err := s.Dispatch(cmd); err != nil {
		return 0, err
	}
	return cmd.Added, nil
}

// RemoveBeneficiary removes the beneficiary at index
func (s *Store) RemoveBeneficiary(index int) error {
	return s.Dispatch(&RemoveBeneficiary{Index: index})
}

// SetQuantity sets one allocation cell from raw input
func (s *Store) SetQuantity(beneficiaryIndex, itemIndex int, raw string) error {
	return s.Dispatch(&SetQuantity{BeneficiaryIndex: beneficiaryIndex, ItemIndex: itemIndex, Raw: raw})
}

// BulkSetQuantity merges per-item values into the listed beneficiaries
func (s *Store) BulkSetQuantity(beneficiaryIndices []int, values map[int]string) error {
	return s.Dispatch(&BulkSetQuantity{BeneficiaryIndices: beneficiaryIndices, Values: values})
}

// ClearQuantities unsets every entry of the listed beneficiaries
func (s *Store) ClearQuantities(beneficiaryIndices []int) error {
	return s.Dispatch(&ClearQuantities{BeneficiaryIndices: beneficiaryIndices})
}
