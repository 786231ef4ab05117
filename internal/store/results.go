package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"catalogengine/internal/logger"
	"catalogengine/internal/model"
)

// StartRun inserts an analysis_runs record and returns its id, to be
// referenced by every row SaveAnalyzed persists for this batch.
func (d *DB) StartRun(country string, total, passed, discarded int, startedAt string) (int64, error) {
	result, err := d.sql.Exec(
		"INSERT INTO analysis_runs (started_at, country, total, passed, discarded) VALUES (?, ?, ?, ?, ?)",
		startedAt, country, total, passed, discarded,
	)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return result.LastInsertId()
}

// SaveAnalyzed bulk-inserts analyzed products for a run: one
// transaction per batch, but each row's failure is logged and skipped
// rather than aborting the whole insert.
func (d *DB) SaveAnalyzed(runID int64, records []model.PersistedAnalysis) {
	if runID == 0 || len(records) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		logger.Error(logTag, fmt.Sprintf("SaveAnalyzed begin tx: %v", err))
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO analyzed_products (
		run_id, uuid, name, provider_price, optimal_price,
		sales_7d, sales_30d, stock, trend_pattern, trend_score,
		wow_growth_pct, consistency_pct, passed, discard_reasons,
		market_verdict, analyzed_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		logger.Error(logTag, fmt.Sprintf("SaveAnalyzed prepare: %v", err))
		return
	}
	defer stmt.Close()

	saved := 0
	for _, r := range records {
		growthJSON, _ := json.Marshal(r.WowGrowthPct)
		var verdict *string
		if r.MarketVerdict != nil {
			v := string(*r.MarketVerdict)
			verdict = &v
		}

		_, err := stmt.Exec(
			runID, r.UUID, r.Name, r.ProviderPrice, r.OptimalPrice,
			r.Sales7d, r.Sales30d, r.Stock, string(r.TrendPattern), r.TrendScore,
			string(growthJSON), r.ConsistencyPct, r.Passed, strings.Join(r.DiscardReasons, "; "),
			verdict, r.AnalyzedAt.Format("2006-01-02T15:04:05Z07:00"),
		)
		if err != nil {
			logger.Warn(logTag, fmt.Sprintf("skipping row for %s: %v", r.UUID, err))
			continue
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		logger.Error(logTag, fmt.Sprintf("SaveAnalyzed commit: %v", err))
		return
	}
	logger.Success(logTag, fmt.Sprintf("persisted %d/%d analyzed products for run %d", saved, len(records), runID))
}
