package assets

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// sqliteSchema creates the asset tables.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS objects (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    location TEXT NOT NULL,
    name TEXT NOT NULL,
    finalized INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (location, name)
);

CREATE INDEX IF NOT EXISTS idx_objects_kind ON objects(kind);

CREATE TABLE IF NOT EXISTS properties (
    object_id TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (object_id, name)
);

CREATE TABLE IF NOT EXISTS links (
    object_id TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
    slot TEXT NOT NULL,
    target_path TEXT NOT NULL,
    PRIMARY KEY (object_id, slot)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const (
	insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`
	getSchemaVersion    = `SELECT MAX(version) FROM schema_version`

	selectObject = `SELECT id, kind, location, name, finalized, created_at, updated_at
FROM objects WHERE location = ? AND name = ?`
	selectObjectsByKind = `SELECT id, kind, location, name, finalized, created_at, updated_at
FROM objects WHERE (? = '' OR kind = ?) ORDER BY location, name`
	insertObject = `INSERT INTO objects (id, kind, location, name, finalized, created_at, updated_at)
VALUES (?, ?, ?, ?, 0, ?, ?)`
	touchObject    = `UPDATE objects SET updated_at = ? WHERE id = ?`
	finalizeObject = `UPDATE objects SET finalized = finalized + 1, updated_at = ? WHERE id = ?`

	selectProperties = `SELECT name, value FROM properties WHERE object_id = ?`
	upsertProperty   = `INSERT INTO properties (object_id, name, value) VALUES (?, ?, ?)
ON CONFLICT (object_id, name) DO UPDATE SET value = excluded.value`
	deleteProperties = `DELETE FROM properties WHERE object_id = ?`

	selectLinks = `SELECT slot, target_path FROM links WHERE object_id = ?`
	upsertLink  = `INSERT INTO links (object_id, slot, target_path) VALUES (?, ?, ?)
ON CONFLICT (object_id, slot) DO UPDATE SET target_path = excluded.target_path`
	deleteLinks = `DELETE FROM links WHERE object_id = ?`
)
