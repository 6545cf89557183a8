// Package storage implements the hbnb object store: an in-memory mapping
// from "ClassName.id" to records, loaded from and flushed to one on-disk
// document. The document is either a JSON file or a SQLite database.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// persister reads and writes the flat document form of every record, keyed
// by "ClassName.id".
type persister interface {
	load() (map[string]map[string]any, error)
	flush(docs map[string]map[string]any) error
	close() error
}

// Engine implements types.Store. Every mutating call flushes the complete
// mapping through the persister before returning.
type Engine struct {
	mu      sync.RWMutex
	closed  bool
	config  types.Config
	path    string
	logger  *zap.Logger
	doc     persister
	objects map[string]*types.Record

	// persisted is the document last read from or written to the backend.
	persisted map[string]map[string]any
}

var _ types.Store = (*Engine)(nil)

// Open validates config, creates DataDir if needed, and loads every record
// from the backend document. A missing document yields an empty store.
func Open(config types.Config, logger *zap.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, config.DocumentName())

	var doc persister
	switch config.Backend {
	case types.BackendSQLite:
		sq, err := openSQLiteDocument(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite document: %w", err)
		}
		doc = sq
	default:
		doc = &jsonDocument{path: path}
	}

	e := &Engine{
		config:  config,
		path:    path,
		logger:  logger.With(zap.String("backend", config.Backend), zap.String("path", path)),
		doc:     doc,
		objects: make(map[string]*types.Record),
	}
	if err := e.loadLocked(); err != nil {
		_ = doc.close()
		return nil, err
	}
	return e, nil
}

// Path returns the location of the backend document.
func (e *Engine) Path() string {
	return e.path
}

// All returns every record ordered by key.
func (e *Engine) All() []*types.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selectLocked(func(*types.Record) bool { return true })
}

// ByClass returns the records of one class ordered by key.
func (e *Engine) ByClass(class string) []*types.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selectLocked(func(r *types.Record) bool { return r.Class == class })
}

// Get returns the record stored under class and id.
func (e *Engine) Get(class, id string) (*types.Record, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, types.ErrStoreClosed
	}
	r, ok := e.objects[types.RecordKey(class, id)]
	if !ok {
		return nil, types.ErrNotFound
	}
	return r, nil
}

// New registers r and flushes the store.
func (e *Engine) New(r *types.Record) error {
	if r == nil || r.ID == "" || strings.Contains(r.ID, " ") {
		return types.ErrInvalidID
	}
	if !types.IsClass(r.Class) {
		return types.ErrUnknownClass
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return types.ErrStoreClosed
	}
	key := r.Key()
	e.objects[key] = r
	e.logger.Debug("record created", zap.String("key", key))
	if err := e.flushLocked(); err != nil {
		e.restoreLocked(key)
		return err
	}
	return nil
}

// Update refreshes r's updated_at and flushes the store.
func (e *Engine) Update(r *types.Record) error {
	if r == nil || r.ID == "" {
		return types.ErrInvalidID
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return types.ErrStoreClosed
	}
	key := r.Key()
	if _, ok := e.objects[key]; !ok {
		return types.ErrNotFound
	}
	r.Touch()
	e.objects[key] = r
	e.logger.Debug("record updated", zap.String("key", key))
	if err := e.flushLocked(); err != nil {
		e.restoreLocked(key)
		return err
	}
	return nil
}

// Delete removes the record stored under class and id and flushes the store.
func (e *Engine) Delete(class, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return types.ErrStoreClosed
	}
	key := types.RecordKey(class, id)
	if _, ok := e.objects[key]; !ok {
		return types.ErrNotFound
	}
	delete(e.objects, key)
	e.logger.Debug("record deleted", zap.String("key", key))
	if err := e.flushLocked(); err != nil {
		e.restoreLocked(key)
		return err
	}
	return nil
}

// Save flushes the in-memory mapping to disk.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return types.ErrStoreClosed
	}
	return e.flushLocked()
}

// Reload discards the in-memory mapping and reads the document again.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return types.ErrStoreClosed
	}
	return e.loadLocked()
}

// Close releases the backend document. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.objects = make(map[string]*types.Record)
	return e.doc.close()
}

// selectLocked returns matching records sorted by key.
// The caller must hold e.mu.
func (e *Engine) selectLocked(match func(*types.Record) bool) []*types.Record {
	keys := make([]string, 0, len(e.objects))
	for k, r := range e.objects {
		if match(r) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]*types.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.objects[k])
	}
	return out
}

// loadLocked replaces e.objects with the document contents. Entries that do
// not rebuild into a record, or whose key does not match their class and id,
// are skipped and logged.
// The caller must hold e.mu write lock.
func (e *Engine) loadLocked() error {
	docs, err := e.doc.load()
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	objects := make(map[string]*types.Record, len(docs))
	persisted := make(map[string]map[string]any, len(docs))
	for key, doc := range docs {
		r, err := types.FromMap(doc)
		if err != nil {
			e.logger.Warn("skipping record", zap.String("key", key), zap.Error(err))
			continue
		}
		if key != r.Key() {
			e.logger.Warn("skipping record: key does not match its class and id",
				zap.String("key", key), zap.String("want", r.Key()))
			continue
		}
		objects[key] = r
		persisted[key] = doc
	}
	e.objects = objects
	e.persisted = persisted
	e.logger.Debug("store loaded", zap.Int("records", len(objects)))
	return nil
}

// flushLocked writes every record through the persister.
// The caller must hold e.mu write lock.
func (e *Engine) flushLocked() error {
	docs := make(map[string]map[string]any, len(e.objects))
	for k, r := range e.objects {
		docs[k] = r.ToMap()
	}
	if err := e.doc.flush(docs); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	e.persisted = docs
	e.logger.Debug("store flushed", zap.Int("records", len(docs)))
	return nil
}

// restoreLocked puts key back to its last persisted state after a failed
// flush, so a later flush cannot write a change the caller saw rejected.
// The caller must hold e.mu write lock.
func (e *Engine) restoreLocked(key string) {
	doc, ok := e.persisted[key]
	if !ok {
		delete(e.objects, key)
		return
	}
	r, err := types.FromMap(doc)
	if err != nil {
		delete(e.objects, key)
		return
	}
	e.objects[key] = r
}
