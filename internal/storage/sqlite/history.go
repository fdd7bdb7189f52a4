package sqlite

import (
	"database/sql"
	"time"

	"recogstats/internal/domain"
)

// History records runs for the reporter pipeline.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

func (h *History) StartRun(startedAt time.Time, orgCount int) (string, error) {
	return StartRun(h.db, startedAt, orgCount)
}

func (h *History) RecordOrg(runID string, res domain.OrgResult, at time.Time) error {
	return InsertOrgSummary(h.db, runID, res, at)
}

func (h *History) FinishRun(runID string, finishedAt time.Time, succeeded int) error {
	return FinishRun(h.db, runID, finishedAt, succeeded)
}
