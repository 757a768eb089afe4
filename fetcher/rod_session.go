package fetcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// rodSession is a single page, optionally inside its own incognito context.
type rodSession struct {
	page       *rod.Page
	incognito  *rod.Browser
	router     *rod.HijackRouter
	navTimeout time.Duration
	release    func()
	closeOnce  sync.Once
	closeErr   error
}

// newPage opens a blank page, converting rod's panics into errors.
func newPage(b *rod.Browser) (page *rod.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("rod: panic while creating page: %v", r)
		}
	}()
	page, err = b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, eris.Wrap(err, "rod: create page")
	}
	return page, nil
}

// prepare overrides the user agent and blocks the given resource types.
func (s *rodSession) prepare(userAgent string, blocked []proto.NetworkResourceType) error {
	if userAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			return eris.Wrap(err, "rod: set user agent")
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	router := s.page.HijackRequests()
	for _, t := range blocked {
		if err := router.Add("*", t, func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return eris.Wrapf(err, "rod: block %s", t)
		}
	}
	go router.Run()
	s.router = router
	return nil
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.navTimeout)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return eris.Wrapf(err, "rod: navigate %s", url)
	}
	return nil
}

func (s *rodSession) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()
	if _, err := p.Element(selector); err != nil {
		return eris.Wrapf(err, "rod: wait for %s", selector)
	}
	return nil
}

func (s *rodSession) Evaluate(ctx context.Context, fn func(doc *goquery.Document) error) error {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return eris.Wrap(err, "rod: read page html")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return eris.Wrap(err, "rod: parse page html")
	}
	return fn(doc)
}

// Close stops request interception, closes the page and its context, and frees the
// session slot. It is safe to call more than once.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		defer s.release()

		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				zap.L().Debug("failed to stop request router", zap.Error(err))
			}
		}
		if err := s.page.Close(); err != nil {
			s.closeErr = eris.Wrap(err, "rod: close page")
		}
		if s.incognito != nil {
			if err := s.incognito.Close(); err != nil && s.closeErr == nil {
				s.closeErr = eris.Wrap(err, "rod: close browser context")
			}
		}
	})
	return s.closeErr
}
