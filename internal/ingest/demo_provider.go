package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"catalogengine/internal/model"
)

// DemoProvider generates realistic synthetic products and daily
// histories for offline runs. A seeded RNG gives deterministic output
// across runs instead of wall-clock noise.
type DemoProvider struct {
	rng   *rand.Rand
	now   time.Time
	count int
}

// NewDemoProvider builds a demo provider that will synthesize count
// distinct products across FetchProducts pages.
func NewDemoProvider(count int) *DemoProvider {
	if count <= 0 {
		count = 50
	}
	return &DemoProvider{
		rng:   rand.New(rand.NewSource(424242)),
		now:   time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC),
		count: count,
	}
}

var demoProductNames = []string{
	"Masajeador Cervical", "Pistola de Masaje", "Cargador Inalámbrico",
	"Aspiradora Portátil", "Luz LED para Auto", "Organizador de Closet",
	"Set de Brochas", "Plancha para Cabello", "Audífonos Bluetooth",
	"Soporte para Celular", "Mini Proyector", "Cámara de Seguridad",
}

func (d *DemoProvider) FetchProducts(ctx context.Context, opts FetchOptions) ([]model.ProductRecord, error) {
	start := (opts.Page - 1) * opts.PageSize
	if start >= d.count {
		return nil, nil
	}
	end := start + opts.PageSize
	if end > d.count {
		end = d.count
	}

	out := make([]model.ProductRecord, 0, end-start)
	for i := start; i < end; i++ {
		providerPrice := 15000 + d.rng.Intn(80000)
		profit := providerPrice / 3
		out = append(out, model.ProductRecord{
			UUID:          deterministicUUID(i),
			Name:          fmt.Sprintf("%s #%d", demoProductNames[i%len(demoProductNames)], i),
			ProviderPrice: providerPrice,
			Profit:        profit,
			Stock:         d.rng.Intn(200),
			Sales7d:       d.rng.Intn(150),
			Sales30d:      d.rng.Intn(500),
		})
	}
	return out, nil
}

func (d *DemoProvider) FetchHistories(ctx context.Context, uuids []string) (map[string]model.HistoryResponse, error) {
	out := make(map[string]model.HistoryResponse, len(uuids))
	for _, id := range uuids {
		out[id] = d.syntheticHistory(id)
	}
	return out, nil
}

var demoProviderNames = []string{
	"Distribuciones Bogotá", "Importadora del Valle", "MegaMayorista",
	"Droptienda CO", "Bodega Central", "Comercial Andina",
	"Suministros Caribe", "Global Import SAS",
}

// FetchCompetitors synthesizes a deterministic set of competing
// suppliers for a query: the query string seeds the RNG so the same
// search always returns the same market.
func (d *DemoProvider) FetchCompetitors(ctx context.Context, query, country string) ([]model.Competitor, error) {
	seed := int64(7)
	for _, r := range query {
		seed = seed*31 + int64(r)
	}
	rng := rand.New(rand.NewSource(seed))

	n := 2 + rng.Intn(8)
	out := make([]model.Competitor, 0, n)
	for i := 0; i < n; i++ {
		sales7d := rng.Intn(250)
		out = append(out, model.Competitor{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("catalogengine-demo-%s-%d", query, i))).String(),
			Provider: demoProviderNames[i%len(demoProviderNames)],
			Sales7d:  sales7d,
			Sales30d: sales7d*4 + rng.Intn(200),
			Price:    20000 + rng.Intn(60000),
			Stock:    rng.Intn(300),
		})
	}
	return out, nil
}

// syntheticHistory picks one of a handful of archetype shapes (stable,
// growing, dead-viral, single-spike) keyed off the uuid so the same
// product always gets the same shape across a run.
func (d *DemoProvider) syntheticHistory(productUUID string) model.HistoryResponse {
	seed := int64(0)
	for _, r := range productUUID {
		seed = seed*31 + int64(r)
	}
	rng := rand.New(rand.NewSource(seed))

	archetype := rng.Intn(4)
	days := 84
	points := make([]model.DailyPoint, days)

	for i := 0; i < days; i++ {
		var units int
		switch archetype {
		case 0: // stable
			units = 6 + rng.Intn(5)
		case 1: // growing
			weeksAgo := i / 7
			base := 10 - weeksAgo
			if base < 1 {
				base = 1
			}
			units = base + rng.Intn(3)
		case 2: // dead viral: high sales 56-70 days ago, near-zero since
			if i >= 56 && i <= 70 {
				units = 45 + rng.Intn(10)
			} else {
				units = rng.Intn(3)
			}
		default: // single spike
			if i == 3 {
				units = 500
			} else {
				units = rng.Intn(3)
			}
		}
		points[i] = model.DailyPoint{
			Date:      d.now.AddDate(0, 0, -i),
			SoldUnits: units,
		}
	}

	return model.HistoryResponse{History: points}
}

func deterministicUUID(i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("catalogengine-demo-%d", i))).String()
}
