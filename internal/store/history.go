package store

// RunRecord is one past analysis run, listed newest-first.
type RunRecord struct {
	ID        int64  `json:"id"`
	StartedAt string `json:"started_at"`
	Country   string `json:"country"`
	Total     int    `json:"total"`
	Passed    int    `json:"passed"`
	Discarded int    `json:"discarded"`
}

// GetRuns returns the last N analysis runs (newest first).
func (d *DB) GetRuns(limit int) []RunRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		"SELECT id, started_at, country, total, passed, discarded FROM analysis_runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return []RunRecord{}
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		rows.Scan(&r.ID, &r.StartedAt, &r.Country, &r.Total, &r.Passed, &r.Discarded)
		records = append(records, r)
	}
	if records == nil {
		return []RunRecord{}
	}
	return records
}
