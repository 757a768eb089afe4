package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// HTMLDocument is a Document over already-rendered HTML. Navigate only records the
// URL; the content is whatever was last loaded.
type HTMLDocument struct {
	doc *goquery.Document
	url string
}

// NewHTMLDocument parses html into a ready document.
func NewHTMLDocument(html string) (*HTMLDocument, error) {
	d := &HTMLDocument{}
	if err := d.Load(html); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the document content.
func (d *HTMLDocument) Load(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return eris.Wrap(err, "html: parse")
	}
	d.doc = doc
	return nil
}

// URL returns the last navigated URL.
func (d *HTMLDocument) URL() string {
	return d.url
}

func (d *HTMLDocument) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "html: navigate")
	}
	d.url = url
	return nil
}

func (d *HTMLDocument) WaitForElement(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "html: wait")
	}
	if d.doc == nil {
		return ErrNotLoaded
	}
	if d.doc.Find(selector).Length() == 0 {
		return eris.Wrapf(ErrElementNotFound, "html: %s", selector)
	}
	return nil
}

func (d *HTMLDocument) Evaluate(ctx context.Context, fn func(doc *goquery.Document) error) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "html: evaluate")
	}
	if d.doc == nil {
		return ErrNotLoaded
	}
	return fn(d.doc)
}

func (d *HTMLDocument) Close() error { return nil }
