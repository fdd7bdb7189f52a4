package sqlite

import (
	"database/sql"
	"time"

	"recogstats/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one invocation of the reporter.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	OrgCount   int
	Succeeded  int
}

// OrgSummaryRow is the persisted snapshot of one organization's counts.
type OrgSummaryRow struct {
	ID                   int64
	RunID                string
	OrgName              string
	SourceURL            string
	Total                int
	Active               int
	ImageURLCount        int
	LongDescriptionCount int
	MissingEndDateCount  int
	InvalidDateCount     int
	LastModified         string
	ArtifactPath         string
	CreatedAt            time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		started_at  DATETIME NOT NULL,
		finished_at DATETIME,
		org_count   INTEGER NOT NULL DEFAULT 0,
		succeeded   INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS org_summaries (
		id                     INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id                 TEXT NOT NULL,
		org_name               TEXT NOT NULL,
		source_url             TEXT NOT NULL,
		total                  INTEGER NOT NULL,
		active                 INTEGER NOT NULL,
		image_url_count        INTEGER NOT NULL,
		long_description_count INTEGER NOT NULL,
		missing_end_date_count INTEGER NOT NULL,
		invalid_date_count     INTEGER NOT NULL DEFAULT 0,
		last_modified          TEXT DEFAULT '',
		artifact_path          TEXT DEFAULT '',
		created_at             DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_org_summaries_org ON org_summaries(org_name, created_at);
	CREATE INDEX IF NOT EXISTS idx_org_summaries_run ON org_summaries(run_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// StartRun inserts a run row with a fresh id.
func StartRun(db *sql.DB, startedAt time.Time, orgCount int) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (id, started_at, org_count) VALUES (?, ?, ?)`,
		id, startedAt.UTC(), orgCount,
	)
	return id, err
}

func FinishRun(db *sql.DB, runID string, finishedAt time.Time, succeeded int) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, succeeded = ? WHERE id = ?`,
		finishedAt.UTC(), succeeded, runID,
	)
	return err
}

func InsertOrgSummary(db *sql.DB, runID string, res domain.OrgResult, createdAt time.Time) error {
	s := res.Summary
	_, err := db.Exec(
		`INSERT INTO org_summaries (run_id, org_name, source_url, total, active, image_url_count,
		   long_description_count, missing_end_date_count, invalid_date_count, last_modified, artifact_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.OrgName, res.SourceURL, s.Total, s.Active, s.ImageURLCount,
		s.LongDescriptionCount, s.MissingEndDateCount, s.InvalidDateCount, res.LastModified, res.ArtifactPath,
		createdAt.UTC(),
	)
	return err
}

// OrgHistory returns the latest rows for orgName, newest first.
func OrgHistory(db *sql.DB, orgName string, limit int) ([]OrgSummaryRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(
		`SELECT id, run_id, org_name, source_url, total, active, image_url_count, long_description_count,
		        missing_end_date_count, invalid_date_count, last_modified, artifact_path, created_at
		 FROM org_summaries WHERE org_name = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		orgName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrgSummaryRow
	for rows.Next() {
		var r OrgSummaryRow
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.OrgName, &r.SourceURL, &r.Total, &r.Active, &r.ImageURLCount,
			&r.LongDescriptionCount, &r.MissingEndDateCount, &r.InvalidDateCount,
			&r.LastModified, &r.ArtifactPath, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetRun(db *sql.DB, runID string) (Run, error) {
	var r Run
	var finished sql.NullTime
	err := db.QueryRow(
		`SELECT id, started_at, finished_at, org_count, succeeded FROM runs WHERE id = ?`, runID,
	).Scan(&r.ID, &r.StartedAt, &finished, &r.OrgCount, &r.Succeeded)
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return r, err
}
