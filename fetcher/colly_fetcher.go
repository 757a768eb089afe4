package fetcher

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parcel-tax-scraper/config"
)

// CollyFetcher serves sessions backed by plain HTTP requests. Pages that need
// script execution to render will not work with it.
type CollyFetcher struct {
	cfg config.BrowserConfig
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(cfg config.BrowserConfig) *CollyFetcher {
	return &CollyFetcher{cfg: cfg}
}

func (cf *CollyFetcher) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "colly: acquire")
	}
	return &collyDocument{cfg: cf.cfg}, nil
}

func (cf *CollyFetcher) Close() error { return nil }

// collyDocument fetches with a fresh collector on every navigation and then
// behaves like an HTMLDocument.
type collyDocument struct {
	HTMLDocument
	cfg config.BrowserConfig
}

func (d *collyDocument) Navigate(ctx context.Context, url string) error {
	c := colly.NewCollector(
		colly.UserAgent(d.cfg.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(d.cfg.NavigationTimeout())

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		zap.L().Warn("colly request failed",
			zap.String("url", url),
			zap.Int("status", r.StatusCode),
			zap.Error(err),
		)
		fetchErr = err
	})

	start := time.Now()
	if err := c.Visit(url); err != nil {
		return eris.Wrapf(err, "colly: visit %s", url)
	}
	c.Wait()
	if fetchErr != nil {
		return eris.Wrapf(fetchErr, "colly: fetch %s", url)
	}

	zap.L().Debug("colly fetched page",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := d.Load(string(body)); err != nil {
		return err
	}
	return d.HTMLDocument.Navigate(ctx, url)
}
