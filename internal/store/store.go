package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"salebook/m/domain"
)

// ErrDuplicateID reports an Add with a sale id already in the store.
var ErrDuplicateID = errors.New("sale id already exists")

// ParseError reports an import blob that is not a valid snapshot.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "invalid snapshot: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Backend reads and writes the durable snapshot blob. Implementations
// must make Write all-or-nothing: a failed write leaves the prior
// content readable.
type Backend interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// Store owns the durable list of sales. Every mutation rewrites the
// whole snapshot; a mutex serializes writers so concurrent requests
// resolve last-write-wins.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New constructs a Store over the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the durable snapshot. Missing or unreadable data is an
// empty snapshot, never an error.
func (s *Store) Load() []domain.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []domain.Sale {
	data, err := s.backend.Read()
	if err != nil || len(data) == 0 {
		return []domain.Sale{}
	}
	var sales []domain.Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		log.Printf("store: ignoring unreadable snapshot: %v", err)
		return []domain.Sale{}
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales
}

// SaveAll overwrites the durable store with the given snapshot in full.
func (s *Store) SaveAll(sales []domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAll(sales)
}

func (s *Store) saveAll(sales []domain.Sale) error {
	if sales == nil {
		sales = []domain.Sale{}
	}
	data, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.backend.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Add prepends the sale to the durable snapshot and returns the result.
// This is the sole creation path; ids must be unique across the store.
func (s *Store) Add(sale domain.Sale) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sales := s.load()
	for _, existing := range sales {
		if existing.ID == sale.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, sale.ID)
		}
	}
	updated := append([]domain.Sale{sale}, sales...)
	if err := s.saveAll(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Clear removes every sale from the durable store.
func (s *Store) Clear() error {
	return s.SaveAll(nil)
}

// Export serializes the durable snapshot as pretty-printed JSON.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.load(), "", "  ")
}

// ExportFilename names a backup after its calendar date.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("sales_backup_%s.json", t.Format("2006-01-02"))
}

// Import parses the blob as a full snapshot and replaces the durable
// store wholesale. On a parse failure it returns a *ParseError and the
// durable store is left unchanged.
func (s *Store) Import(blob []byte) ([]domain.Sale, error) {
	var sales []domain.Sale
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sales); err != nil {
		return nil, &ParseError{Err: err}
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveAll(sales); err != nil {
		return nil, err
	}
	return sales, nil
}
