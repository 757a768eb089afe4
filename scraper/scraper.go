package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parcel-tax-scraper/fetcher"
	"parcel-tax-scraper/format"
	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/models"
	"parcel-tax-scraper/parser"
)

// ErrInvalidAccount is returned for an empty parcel identifier, before any navigation.
var ErrInvalidAccount = eris.New("invalid account")

const processedDateLayout = "2006-01-02"

// Searcher looks up one parcel and returns its normalized tax record.
type Searcher interface {
	Search(ctx context.Context, account string) (*models.TaxRecord, error)
}

// Pipeline runs the lookup stages against a document that it navigates itself.
type Pipeline struct {
	parser       *parser.Parser
	readyTimeout time.Duration
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces the clock used for processed_date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline for jurisdiction j. readyTimeout bounds the wait for
// the jurisdiction's ready selector after navigation.
func NewPipeline(j jurisdiction.Jurisdiction, readyTimeout time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		parser:       parser.NewParser(j),
		readyTimeout: readyTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run navigates doc to the parcel page of account and builds its record. The stages
// run strictly in order; the first automation failure ends the run.
func (p *Pipeline) Run(ctx context.Context, doc fetcher.Document, account string) (*models.TaxRecord, error) {
	if strings.TrimSpace(account) == "" {
		return nil, ErrInvalidAccount
	}

	j := p.parser.Jurisdiction()
	log := zap.L().With(zap.String("account", account), zap.String("jurisdiction", j.Key))
	fail := func(err error, stage string) error {
		return eris.Wrapf(err, "search %s: %s", account, stage)
	}

	url := j.URLFor(account)
	log.Debug("navigating", zap.String("url", url))
	if err := doc.Navigate(ctx, url); err != nil {
		return nil, fail(err, "navigate")
	}
	if err := doc.WaitForElement(ctx, j.ReadySelector, p.readyTimeout); err != nil {
		return nil, fail(err, "wait for page")
	}

	var status models.PaymentStatus
	if err := doc.Evaluate(ctx, func(d *goquery.Document) error {
		status = p.parser.ClassifyStatus(d)
		return nil
	}); err != nil {
		return nil, fail(err, "classify status")
	}
	log.Debug("classified", zap.String("status", string(status)))

	now := p.now()
	record := models.NewTaxRecord(account)
	if err := doc.Evaluate(ctx, func(d *goquery.Document) error {
		p.parser.ExtractProperty(d, record)
		return nil
	}); err != nil {
		return nil, fail(err, "extract property")
	}
	p.parser.ApplyStatus(record, status)
	record.ProcessedDate = now.UTC().Format(processedDateLayout)

	stage, history := "unpaid history", p.parser.UnpaidHistory
	if status.IsPaid() {
		stage, history = "paid history", p.parser.PaidHistory
	}
	if err := doc.Evaluate(ctx, func(d *goquery.Document) error {
		history(d, record)
		return nil
	}); err != nil {
		return nil, fail(err, stage)
	}

	log.Info("parcel processed",
		zap.String("status", string(status)),
		zap.Int("tax_year", format.CurrentTaxYear(now)),
		zap.Int("history_entries", len(record.TaxHistory)),
	)
	return record, nil
}

// TaxScraper is a Searcher that takes a fresh session from a provider for every lookup.
type TaxScraper struct {
	provider fetcher.Provider
	pipeline *Pipeline
}

// NewTaxScraper creates a TaxScraper.
func NewTaxScraper(provider fetcher.Provider, pipeline *Pipeline) *TaxScraper {
	return &TaxScraper{provider: provider, pipeline: pipeline}
}

// Search acquires a session, runs the pipeline and releases the session on every
// exit path.
func (s *TaxScraper) Search(ctx context.Context, account string) (record *models.TaxRecord, err error) {
	if strings.TrimSpace(account) == "" {
		return nil, ErrInvalidAccount
	}

	session, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "search %s: acquire session", account)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			zap.L().Warn("failed to release session", zap.String("account", account), zap.Error(cerr))
		}
	}()

	start := time.Now()
	record, err = s.pipeline.Run(ctx, session, account)
	if err != nil {
		zap.L().Error("parcel lookup failed",
			zap.String("account", account),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	return record, nil
}
