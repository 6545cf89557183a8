// This file implements the SQLite document backend: the same key -> record
// mapping stored as rows of one table, replaced inside a single transaction
// on every flush.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// sqliteDocument persists the mapping to a SQLite database file.
type sqliteDocument struct {
	db *sql.DB
}

// openSQLiteDocument opens (creating if needed) the database at path and
// ensures the schema exists.
func openSQLiteDocument(path string) (*sqliteDocument, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &sqliteDocument{db: db}, nil
}

// load reads every row back into its flat document form. Rows whose
// attributes column is not a JSON object are dropped.
func (d *sqliteDocument) load() (map[string]map[string]any, error) {
	rows, err := d.db.Query(selectObjects)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]map[string]any)
	for rows.Next() {
		var key, class, id, attrs, createdAt, updatedAt string
		if err := rows.Scan(&key, &class, &id, &attrs, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		doc := make(map[string]any)
		if err := json.Unmarshal([]byte(attrs), &doc); err != nil {
			continue
		}
		doc[types.AttrClass] = class
		doc[types.AttrID] = id
		doc[types.AttrCreatedAt] = createdAt
		doc[types.AttrUpdatedAt] = updatedAt
		docs[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	return docs, nil
}

// flush replaces every row with docs in one transaction.
func (d *sqliteDocument) flush(docs map[string]map[string]any) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning flush transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteObjects); err != nil {
		return fmt.Errorf("clearing objects: %w", err)
	}

	stmt, err := tx.Prepare(insertObject)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		doc := docs[key]
		attrs := make(map[string]any, len(doc))
		for k, v := range doc {
			if !types.IsReserved(k) {
				attrs[k] = v
			}
		}
		encoded, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("encoding attributes of %s: %w", key, err)
		}
		if _, err := stmt.Exec(key,
			stringField(doc, types.AttrClass),
			stringField(doc, types.AttrID),
			string(encoded),
			stringField(doc, types.AttrCreatedAt),
			stringField(doc, types.AttrUpdatedAt),
		); err != nil {
			return fmt.Errorf("inserting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing flush transaction: %w", err)
	}
	return nil
}

func (d *sqliteDocument) close() error {
	return d.db.Close()
}

// stringField returns doc[name] when it is a string, "" otherwise.
func stringField(doc map[string]any, name string) string {
	s, _ := doc[name].(string)
	return s
}
