package store

import (
	"fmt"
	"strconv"

	"catalogengine/internal/config"
)

// LoadConfig reads the tuning config from the key-value table. If empty,
// returns config.Default().
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}
	if len(m) == 0 {
		return cfg
	}

	setInt := func(key string, dst *int) {
		if v, ok := m[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := m[key]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setInt("shipping_cost", &cfg.ShippingCost)
	setInt("cpa", &cfg.CPA)
	setFloat("return_rate", &cfg.ReturnRate)
	setFloat("cancel_rate", &cfg.CancelRate)
	setFloat("return_shipping_fraction", &cfg.ReturnShippingFraction)
	setInt("default_cost_when_missing", &cfg.DefaultCostWhenMissing)
	setInt("min_weeks_with_threshold_sales", &cfg.MinWeeksWithThresholdSales)
	setInt("min_sales_per_week", &cfg.MinSalesPerWeek)
	setInt("min_sales_7d", &cfg.MinSales7d)
	setInt("min_active_days", &cfg.MinActiveDays)
	setFloat("max_wow_drop_pct", &cfg.MaxWowDropPct)
	setFloat("min_roi_pct", &cfg.MinROIPct)
	setFloat("max_cost_over_pvp", &cfg.MaxCostOverPVP)
	setFloat("min_margin_pct", &cfg.MinMarginPct)
	setInt("min_stock", &cfg.MinStock)
	setInt("min_price", &cfg.MinPrice)
	setInt("max_price", &cfg.MaxPrice)
	if v, ok := m["country"]; ok {
		cfg.Country = v
	}

	return cfg
}

// SaveConfig writes the tuning config as key-value rows (upsert).
func (d *DB) SaveConfig(cfg *config.Config) error {
	pairs := map[string]string{
		"shipping_cost":                  strconv.Itoa(cfg.ShippingCost),
		"cpa":                            strconv.Itoa(cfg.CPA),
		"return_rate":                    fmt.Sprintf("%g", cfg.ReturnRate),
		"cancel_rate":                    fmt.Sprintf("%g", cfg.CancelRate),
		"return_shipping_fraction":       fmt.Sprintf("%g", cfg.ReturnShippingFraction),
		"default_cost_when_missing":      strconv.Itoa(cfg.DefaultCostWhenMissing),
		"min_weeks_with_threshold_sales": strconv.Itoa(cfg.MinWeeksWithThresholdSales),
		"min_sales_per_week":             strconv.Itoa(cfg.MinSalesPerWeek),
		"min_sales_7d":                   strconv.Itoa(cfg.MinSales7d),
		"min_active_days":                strconv.Itoa(cfg.MinActiveDays),
		"max_wow_drop_pct":               fmt.Sprintf("%g", cfg.MaxWowDropPct),
		"min_roi_pct":                    fmt.Sprintf("%g", cfg.MinROIPct),
		"max_cost_over_pvp":              fmt.Sprintf("%g", cfg.MaxCostOverPVP),
		"min_margin_pct":                 fmt.Sprintf("%g", cfg.MinMarginPct),
		"min_stock":                      strconv.Itoa(cfg.MinStock),
		"min_price":                      strconv.Itoa(cfg.MinPrice),
		"max_price":                      strconv.Itoa(cfg.MaxPrice),
		"country":                        cfg.Country,
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
