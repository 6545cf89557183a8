// This file implements the JSON document backend: one JSON object keyed by
// "ClassName.id", rewritten in full on every flush.
package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// jsonDocument persists the mapping to a single JSON file.
type jsonDocument struct {
	path string
}

// load reads the document. A missing or empty file is an empty mapping.
// Entries whose value is not a JSON object are dropped.
func (d *jsonDocument) load() (map[string]map[string]any, error) {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return map[string]map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]map[string]any{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", d.path, err)
	}

	docs := make(map[string]map[string]any, len(raw))
	for key, msg := range raw {
		var doc map[string]any
		if err := json.Unmarshal(msg, &doc); err != nil || doc == nil {
			continue
		}
		docs[key] = doc
	}
	return docs, nil
}

// flush encodes docs and replaces the file atomically.
func (d *jsonDocument) flush(docs map[string]map[string]any) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", d.path, err)
	}
	return writeFileAtomic(d.path, append(data, '\n'))
}

func (d *jsonDocument) close() error {
	return nil
}

// writeFileAtomic writes data using the temp-file, fsync, rename pattern so a
// crash never leaves a truncated document behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".hbnb-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
