package storage

// Schema DDL for the SQLite document.
const (
	createObjects = `CREATE TABLE IF NOT EXISTS objects (
    key TEXT PRIMARY KEY,
    class TEXT NOT NULL,
    id TEXT NOT NULL,
    attributes TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxObjectsClass = `CREATE INDEX IF NOT EXISTS idx_objects_class ON objects(class);`
)

// schemaDDL lists the statements run when the document is opened.
var schemaDDL = []string{
	createObjects,
	idxObjectsClass,
}

const (
	selectObjects = `SELECT key, class, id, attributes, created_at, updated_at FROM objects`
	deleteObjects = `DELETE FROM objects`
	insertObject  = `INSERT INTO objects (key, class, id, attributes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
)
