package fetcher

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"parcel-tax-scraper/config"
)

var (
	// ErrNotLoaded is returned when a document is queried before any navigation.
	ErrNotLoaded = eris.New("document not loaded")
	// ErrElementNotFound is returned when a waited-for selector never appears.
	ErrElementNotFound = eris.New("element not found")
	// ErrUnknownEngine is returned by NewProvider for an unsupported engine name.
	ErrUnknownEngine = eris.New("unknown engine")
)

// Document is a rendered page that can be navigated, waited on and queried.
// Evaluate runs fn against a read-only snapshot of the current DOM.
type Document interface {
	Navigate(ctx context.Context, url string) error
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) error
	Evaluate(ctx context.Context, fn func(doc *goquery.Document) error) error
}

// Session is a Document owned by a single lookup. Close releases every resource
// the session holds and must be called on every exit path.
type Session interface {
	Document
	Close() error
}

// Provider hands out isolated sessions. Implementations are safe for concurrent use.
type Provider interface {
	Acquire(ctx context.Context) (Session, error)
	Close() error
}

// NewProvider builds the provider selected by cfg.Engine.
func NewProvider(cfg config.BrowserConfig) (Provider, error) {
	switch cfg.Engine {
	case config.EngineRod:
		return NewRodFetcher(cfg)
	case config.EngineColly:
		return NewCollyFetcher(cfg), nil
	default:
		return nil, eris.Wrapf(ErrUnknownEngine, "fetcher: %q", cfg.Engine)
	}
}
