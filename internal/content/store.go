// Package content persists the editable site copy (hero text, about
// page, contact details) as one JSON document per language. The
// document is loaded once at startup and kept in memory; admin saves
// persist to disk first, then swap the in-memory copy.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Document is the site content shape: language code to an arbitrary
// section map. The storefront owns the schema; this service only
// stores and serves it.
type Document map[string]json.RawMessage

// Store is a load-once / persist-on-change JSON file store.
type Store struct {
	path string

	mu  sync.RWMutex
	doc Document
}

// Open loads the content document from path, seeding the file with
// seed when it does not exist yet.
func Open(path string, seed Document) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating content dir: %w", err)
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if seed == nil {
			seed = Document{}
		}
		if err := s.persist(seed); err != nil {
			return nil, fmt.Errorf("seeding content file: %w", err)
		}
		s.doc = seed
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading content file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing content file %s: %w", path, err)
	}

	s.doc = doc
	return s, nil
}

// Get returns the current document. The returned map must not be
// mutated by the caller.
func (s *Store) Get() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Replace persists the new document and swaps it in. The old document
// stays visible until the write succeeds.
func (s *Store) Replace(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	if err := s.persist(doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// persist writes the document via a temp file and rename so a crash
// mid-write cannot truncate the live file.
func (s *Store) persist(doc Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling content: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("writing content temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing content file: %w", err)
	}
	return nil
}
