package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"catalogengine/internal/config"
	"catalogengine/internal/logger"
	"catalogengine/internal/model"
)

// HTTPProvider talks to the vendor dashboard's public and authenticated
// APIs. Outstanding history requests are bounded by a weighted
// semaphore so the upstream never sees more than the configured number
// of calls in flight.
type HTTPProvider struct {
	baseURL    string
	publicAPI  string
	jwt        string
	httpClient *http.Client
	sem        *semaphore.Weighted
	minDelay   time.Duration
}

// NewHTTPProvider constructs a provider bound to the given JWT session
// cookie/bearer token. maxConcurrentHistory bounds outstanding history
// fetches; minDelay paces consecutive requests so the upstream isn't
// hammered.
func NewHTTPProvider(jwt string, maxConcurrentHistory int64, minDelay time.Duration) *HTTPProvider {
	if maxConcurrentHistory <= 0 {
		maxConcurrentHistory = 1
	}
	return &HTTPProvider{
		baseURL:    "https://app.dropkiller.com",
		publicAPI:  "https://extension-api.dropkiller.com",
		jwt:        jwt,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sem:        semaphore.NewWeighted(maxConcurrentHistory),
		minDelay:   minDelay,
	}
}

func (p *HTTPProvider) FetchProducts(ctx context.Context, opts FetchOptions) ([]model.ProductRecord, error) {
	preset, ok := config.CountryPresetFor(opts.Country)
	if !ok {
		preset, _ = config.CountryPresetFor("CO")
	}

	url := fmt.Sprintf("%s/api/products?platform=%s&country=%s&limit=%d&page=%d&s7min=%d&stock-min=%d&price-min=%d&price-max=%d",
		p.baseURL, opts.Platform, preset.Code, opts.PageSize, opts.Page, opts.MinSales, opts.MinStock, opts.MinPrice, opts.MaxPrice)

	var raw struct {
		Products []productDTO `json:"products"`
		Data     []productDTO `json:"data"`
	}
	if err := p.getJSON(ctx, url, &raw); err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}

	items := raw.Products
	if len(items) == 0 {
		items = raw.Data
	}
	out := make([]model.ProductRecord, 0, len(items))
	for _, d := range items {
		out = append(out, d.toRecord())
	}
	return out, nil
}

func (p *HTTPProvider) FetchHistories(ctx context.Context, uuids []string) (map[string]model.HistoryResponse, error) {
	out := make(map[string]model.HistoryResponse, len(uuids))
	if len(uuids) == 0 {
		return out, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "acquire history fetch slot")
	}
	defer p.sem.Release(1)

	ids := uuids[0]
	for _, id := range uuids[1:] {
		ids += "," + id
	}
	url := fmt.Sprintf("%s/api/v3/history?ids=%s", p.publicAPI, ids)

	var raw map[string]historyDTO
	if err := p.getJSON(ctx, url, &raw); err != nil {
		// A failed fetch degrades every requested product to an empty
		// history (SIN_DATOS downstream) instead of failing the batch.
		logger.Warn("INGEST", errors.Wrap(err, "fetch histories").Error())
		for _, id := range uuids {
			out[id] = model.HistoryResponse{}
		}
		return out, nil
	}

	for uuid, dto := range raw {
		out[uuid] = dto.toHistoryResponse()
	}

	if p.minDelay > 0 {
		select {
		case <-time.After(p.minDelay):
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}

// FetchCompetitors searches the product listing for suppliers selling
// under the given query and maps each hit to a Competitor snapshot.
func (p *HTTPProvider) FetchCompetitors(ctx context.Context, query, country string) ([]model.Competitor, error) {
	preset, ok := config.CountryPresetFor(country)
	if !ok {
		preset, _ = config.CountryPresetFor("CO")
	}

	searchURL := fmt.Sprintf("%s/api/products?search=%s&country=%s&limit=15",
		p.baseURL, url.QueryEscape(query), preset.Code)

	var raw struct {
		Products []productDTO `json:"products"`
		Data     []productDTO `json:"data"`
	}
	if err := p.getJSON(ctx, searchURL, &raw); err != nil {
		return nil, errors.Wrap(err, "fetch competitors")
	}

	items := raw.Products
	if len(items) == 0 {
		items = raw.Data
	}
	out := make([]model.Competitor, 0, len(items))
	for _, d := range items {
		out = append(out, model.Competitor{
			ID:       d.UUID,
			Provider: d.ProviderName,
			Sales7d:  d.Sales7d,
			Sales30d: d.Sales30d,
			Price:    d.ProviderPrice,
			Stock:    d.Stock,
		})
	}
	return out, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.jwt)
	req.Header.Set("Cookie", "__session="+p.jwt)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "catalogctl/1.0 (github.com)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ingest %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

type productDTO struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	ProviderName  string `json:"providerName"`
	ProviderPrice int    `json:"providerPrice"`
	Profit        int    `json:"profit"`
	Stock         int    `json:"stock"`
	Sales7d       int    `json:"sales7d"`
	Sales30d      int    `json:"sales30d"`
}

func (d productDTO) toRecord() model.ProductRecord {
	return model.ProductRecord{
		UUID:          d.UUID,
		Name:          d.Name,
		ProviderPrice: d.ProviderPrice,
		Profit:        d.Profit,
		Stock:         d.Stock,
		Sales7d:       d.Sales7d,
		Sales30d:      d.Sales30d,
	}
}

type historyDTO struct {
	CreatedAt    *time.Time `json:"createdAt"`
	Category     *string    `json:"category"`
	ProviderName *string    `json:"providerName"`
	History      []struct {
		Date      string `json:"date"`
		SoldUnits int    `json:"soldUnits"`
		Stock     *int   `json:"stock"`
	} `json:"history"`
}

func (d historyDTO) toHistoryResponse() model.HistoryResponse {
	points := make([]model.DailyPoint, 0, len(d.History))
	for _, h := range d.History {
		t, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		points = append(points, model.DailyPoint{
			Date:      t,
			SoldUnits: h.SoldUnits,
			Stock:     h.Stock,
		})
	}
	return model.HistoryResponse{
		CreatedAt:    d.CreatedAt,
		Category:     d.Category,
		ProviderName: d.ProviderName,
		History:      points,
	}
}
