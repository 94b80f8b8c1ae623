package pricefeed

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// lookback is how far back the polygon source searches for the latest minute bar.
const lookback = 24 * time.Hour

// PolygonAggsIterator is the subset of the polygon aggregate iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIWrapper struct {
	client *polygon.Client
}

func (w *polygonAPIWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonSource uses the close of the most recent minute bar as the price.
type PolygonSource struct {
	api PolygonAPIClient
	now func() time.Time
}

// NewPolygonSource creates a Polygon.io price source.
func NewPolygonSource(apiKey string) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon price provider requires an API key")
	}

	return NewPolygonSourceWithAPI(&polygonAPIWrapper{client: polygon.New(apiKey)}), nil
}

// NewPolygonSourceWithAPI creates a Polygon source on top of an existing client.
func NewPolygonSourceWithAPI(api PolygonAPIClient) *PolygonSource {
	return &PolygonSource{
		api: api,
		now: time.Now,
	}
}

// LastPrice implements Source.
func (p *PolygonSource) LastPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = normalize(symbol)
	to := p.now()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Minute,
		From:       models.Millis(to.Add(-lookback)),
		To:         models.Millis(to),
	}.WithOrder(models.Desc).WithLimit(1)

	iter := p.api.ListAggs(ctx, params)
	if iter.Next() {
		agg := iter.Item()

		return checkPrice(symbol, agg.Close)
	}

	if err := iter.Err(); err != nil {
		return 0, errors.Wrapf(errors.ErrCodePriceUnavailable, err, "failed to fetch %s aggregates from Polygon", symbol)
	}

	return 0, errors.Newf(errors.ErrCodePriceUnavailable, "Polygon returned no bars for %s in the last %s", symbol, lookback)
}
