// Package store persists render jobs and their finished view images in
// sqlite. One job covers a full centers x zoom-levels view set.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a job or view does not exist.
var ErrNotFound = errors.New("store: not found")

// Job statuses, in lifecycle order.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job is one render submission.
type Job struct {
	ID            int64
	Params        string // request parameters as submitted, JSON
	Status        string
	TotalViews    int
	FinishedViews int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ViewRef identifies one stored view within a job.
type ViewRef struct {
	CX   float64 `json:"cx"`
	CY   float64 `json:"cy"`
	Zoom int     `json:"zoom"`
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	params TEXT NOT NULL,
	status TEXT NOT NULL,
	total_views INTEGER NOT NULL,
	finished_views INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS views (
	job_id INTEGER NOT NULL REFERENCES jobs(id),
	cx REAL NOT NULL,
	cy REAL NOT NULL,
	zoom INTEGER NOT NULL,
	png BLOB NOT NULL,
	PRIMARY KEY (job_id, cx, cy, zoom)
);
`

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	// WAL mode for better concurrency between the scheduler and the API
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJob records a new pending job and returns its id.
func (s *Store) CreateJob(params string, totalViews int) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO jobs (params, status, total_views) VALUES (?, ?, ?)",
		params, StatusPending, totalViews,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("job id: %w", err)
	}
	return id, nil
}

// JobByID returns a single job.
func (s *Store) JobByID(id int64) (*Job, error) {
	var j Job
	err := s.db.QueryRow(
		`SELECT id, params, status, total_views, finished_views, created_at, updated_at
		 FROM jobs WHERE id = ?`, id,
	).Scan(&j.ID, &j.Params, &j.Status, &j.TotalViews, &j.FinishedViews, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query job: %w", err)
	}
	return &j, nil
}

// SetStatus moves a job to a new lifecycle status.
func (s *Store) SetStatus(id int64, status string) error {
	_, err := s.db.Exec(
		"UPDATE jobs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

// AddView stores one finished view image and bumps the job's finished
// counter in the same transaction.
func (s *Store) AddView(jobID int64, ref ViewRef, png []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO views (job_id, cx, cy, zoom, png) VALUES (?, ?, ?, ?, ?)",
		jobID, ref.CX, ref.CY, ref.Zoom, png,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert view: %w", err)
	}
	if _, err := tx.Exec(
		"UPDATE jobs SET finished_views = finished_views + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		jobID,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("bump finished views: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit view: %w", err)
	}
	return nil
}

// ListViews returns the refs of all stored views of a job, in storage order.
func (s *Store) ListViews(jobID int64) ([]ViewRef, error) {
	rows, err := s.db.Query(
		"SELECT cx, cy, zoom FROM views WHERE job_id = ? ORDER BY rowid", jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()

	var refs []ViewRef
	for rows.Next() {
		var r ViewRef
		if err := rows.Scan(&r.CX, &r.CY, &r.Zoom); err != nil {
			return nil, fmt.Errorf("scan view ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// ViewPNG returns the n-th stored view image of a job (0-based, storage
// order).
func (s *Store) ViewPNG(jobID int64, n int) ([]byte, error) {
	var png []byte
	err := s.db.QueryRow(
		"SELECT png FROM views WHERE job_id = ? ORDER BY rowid LIMIT 1 OFFSET ?",
		jobID, n,
	).Scan(&png)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query view png: %w", err)
	}
	return png, nil
}
