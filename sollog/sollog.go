// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: sollog.go — sqlite-backed solution journal
//
// Purpose:
//   - Keeps a durable record of every solution the miner submitted:
//     which job, which nonce, the canonical proof and its hash.
//   - Operator bookkeeping only — the solver core owns no persisted
//     state and never reads this database.
//
// Notes:
//   - Writes happen at solution cadence (rare), so plain INSERTs with
//     the default journal mode are plenty.
// ─────────────────────────────────────────────────────────────────────────────

package sollog

import (
	"database/sql"

	"cuckatoo/utils"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS solutions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	nonce      TEXT    NOT NULL,
	hash       TEXT    NOT NULL,
	pow        TEXT    NOT NULL,
	found_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS solutions_height ON solutions(height);`

// Journal is an append-only record of submitted solutions.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "sollog: open "+path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sollog: create schema")
	}
	return &Journal{db: db}, nil
}

// Record appends one submitted solution. Nonce and hash are stored as
// text: sqlite INTEGER is signed 64-bit and high nonces would wrap.
func (j *Journal) Record(jobID, height, nonce uint64, hash []byte, pow []uint64) error {
	var powStr string
	for i, n := range pow {
		if i > 0 {
			powStr += " "
		}
		powStr += utils.Utoa(n)
	}
	_, err := j.db.Exec(
		`INSERT INTO solutions (job_id, height, nonce, hash, pow) VALUES (?, ?, ?, ?, ?)`,
		int64(jobID), int64(height), utils.Utoa(nonce), utils.Hex(hash), powStr,
	)
	return errors.Wrap(err, "sollog: insert")
}

// Count returns the number of journaled solutions.
func (j *Journal) Count() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM solutions`).Scan(&n)
	return n, errors.Wrap(err, "sollog: count")
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
