// ABOUTME: In-memory draft store for a tenant's configuration editing session
// ABOUTME: Tracks the working config, knowledge-base list, and pending deletions

package draft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spotfunnel/voiceos-admin/internal/remote"
)

// Draft store errors
var (
	ErrNameRequired    = errors.New("record name is required")
	ErrContentRequired = errors.New("record content is required")
	ErrRecordNotFound  = errors.New("record not found")
	ErrUnknownField    = errors.New("unknown configuration field")
	ErrFieldType       = errors.New("wrong type for configuration field")
)

// Store holds the administrator's working copy of a tenant's configuration:
// the mutable TenantConfiguration snapshot, the current knowledge-base list,
// and the set of persisted record IDs pending deletion. It is purely
// in-memory; nothing here touches the network.
type Store struct {
	mu         sync.Mutex
	config     remote.TenantConfiguration
	records    []remote.KnowledgeBaseRecord
	deletions  []string // insertion order
	deletedIDs map[string]struct{}
}

// New creates an empty draft store.
func New() *Store {
	return &Store{deletedIDs: make(map[string]struct{})}
}

// Load creates a draft store pre-populated with a snapshot, validating every
// record the way AddRecord does. Used when the draft arrives fully formed,
// e.g. in a save request body.
func Load(cfg remote.TenantConfiguration, records []remote.KnowledgeBaseRecord, deletions []string) (*Store, error) {
	s := New()
	s.config = cfg
	for i, rec := range records {
		if rec.Name == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrNameRequired)
		}
		if rec.Content == "" {
			return nil, fmt.Errorf("record %d: %w", i, ErrContentRequired)
		}
	}
	s.records = append(s.records, records...)
	for _, id := range deletions {
		if id == "" {
			continue
		}
		if _, seen := s.deletedIDs[id]; seen {
			continue
		}
		s.deletions = append(s.deletions, id)
		s.deletedIDs[id] = struct{}{}
	}
	return s, nil
}

// Config returns a copy of the working configuration.
func (s *Store) Config() remote.TenantConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetConfig replaces the working configuration wholesale.
func (s *Store) SetConfig(cfg remote.TenantConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// SetField overwrites a single configuration field addressed by path.
// Paths follow the JSON field names, with telephony fields nested under
// "telephony.". No validation is applied beyond the value's type.
func (s *Store) SetField(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch path {
	case "system_prompt":
		return setString(&s.config.SystemPrompt, value)
	case "workflows":
		v, ok := value.([]remote.WorkflowWebhook)
		if !ok {
			return fmt.Errorf("%w: %s", ErrFieldType, path)
		}
		s.config.Workflows = v
		return nil
	case "call_reasons":
		return setStrings(&s.config.CallReasons, value)
	case "call_outcomes":
		return setStrings(&s.config.CallOutcomes, value)
	case "report_fields":
		return setStrings(&s.config.ReportFields, value)
	case "telephony.phone_number":
		return setString(&s.config.Telephony.PhoneNumber, value)
	case "telephony.forwarding_number":
		return setString(&s.config.Telephony.ForwardingNumber, value)
	case "telephony.transfer_contact":
		return setString(&s.config.Telephony.TransferContact, value)
	case "telephony.transfer_number":
		return setString(&s.config.Telephony.TransferNumber, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
}

func setString(dst *string, value any) error {
	v, ok := value.(string)
	if !ok {
		return ErrFieldType
	}
	*dst = v
	return nil
}

func setStrings(dst *[]string, value any) error {
	v, ok := value.([]string)
	if !ok {
		return ErrFieldType
	}
	*dst = v
	return nil
}

// Records returns a copy of the current knowledge-base list.
func (s *Store) Records() []remote.KnowledgeBaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remote.KnowledgeBaseRecord, len(s.records))
	copy(out, s.records)
	return out
}

// AddRecord appends a record that has never been persisted. Name and content
// are required before the record enters the list; any ID on the argument is
// discarded.
func (s *Store) AddRecord(rec remote.KnowledgeBaseRecord) error {
	if rec.Name == "" {
		return ErrNameRequired
	}
	if rec.Content == "" {
		return ErrContentRequired
	}
	rec.ID = ""

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// UpdateRecord replaces the record matching id in place, preserving the ID.
func (s *Store) UpdateRecord(id string, rec remote.KnowledgeBaseRecord) error {
	if rec.Name == "" {
		return ErrNameRequired
	}
	if rec.Content == "" {
		return ErrContentRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id && id != "" {
			rec.ID = id
			s.records[i] = rec
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// RemoveRecord drops the record at position i from the visible list. If the
// record was persisted, its ID enters the deletion set in the same step.
func (s *Store) RemoveRecord(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.records) {
		return ErrRecordNotFound
	}
	id := s.records[i].ID
	s.records = append(s.records[:i], s.records[i+1:]...)
	if id != "" {
		if _, seen := s.deletedIDs[id]; !seen {
			s.deletions = append(s.deletions, id)
			s.deletedIDs[id] = struct{}{}
		}
	}
	return nil
}

// RemoveRecordByID removes the record matching a persisted ID.
func (s *Store) RemoveRecordByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id && id != "" {
			s.records = append(s.records[:i], s.records[i+1:]...)
			if _, seen := s.deletedIDs[id]; !seen {
				s.deletions = append(s.deletions, id)
				s.deletedIDs[id] = struct{}{}
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// PendingDeletions returns the persisted IDs awaiting a remote delete,
// in the order they were removed.
func (s *Store) PendingDeletions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.deletions))
	copy(out, s.deletions)
	return out
}

// Replace overwrites the knowledge-base list wholesale with the canonical
// server list and clears the deletion set. This is how rehydration lands:
// the draft does not reconcile the new list against its own deletion intent.
func (s *Store) Replace(records []remote.KnowledgeBaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]remote.KnowledgeBaseRecord, len(records))
	copy(s.records, records)
	s.deletions = nil
	s.deletedIDs = make(map[string]struct{})
}

// Snapshot returns copies of the config, record list, and deletion set as
// they stand right now. The reconciler reads through this at save time.
func (s *Store) Snapshot() (remote.TenantConfiguration, []remote.KnowledgeBaseRecord, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]remote.KnowledgeBaseRecord, len(s.records))
	copy(records, s.records)
	deletions := make([]string, len(s.deletions))
	copy(deletions, s.deletions)
	return s.config, records, deletions
}
