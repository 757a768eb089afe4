package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-tax-scraper/config"
)

const samplePage = `<html><body><div id="Location"><table class="table"><tr><td>Owner</td></tr></table></div></body></html>`

func testBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		Engine:                config.EngineColly,
		Strategy:              config.StrategyContext,
		UserAgent:             "parcel-test-agent",
		NavigationTimeoutSecs: 5,
		ReadyTimeoutSecs:      5,
		MaxSessions:           1,
	}
}

func TestHTMLDocument_NotLoaded(t *testing.T) {
	d := &HTMLDocument{}
	err := d.WaitForElement(context.Background(), "#Location", time.Second)
	assert.ErrorIs(t, err, ErrNotLoaded)

	err = d.Evaluate(context.Background(), func(*goquery.Document) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestHTMLDocument_WaitAndEvaluate(t *testing.T) {
	d, err := NewHTMLDocument(samplePage)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.test/Parcel?Parcel=1"))
	assert.Equal(t, "https://example.test/Parcel?Parcel=1", d.URL())

	require.NoError(t, d.WaitForElement(ctx, "#Location", time.Second))

	err = d.WaitForElement(ctx, "#Missing", time.Second)
	assert.True(t, eris.Is(err, ErrElementNotFound))

	var text string
	require.NoError(t, d.Evaluate(ctx, func(doc *goquery.Document) error {
		text = doc.Find("#Location td").Text()
		return nil
	}))
	assert.Equal(t, "Owner", text)

	sentinel := eris.New("boom")
	assert.ErrorIs(t, d.Evaluate(ctx, func(*goquery.Document) error { return sentinel }), sentinel)
}

func TestHTMLDocument_CanceledContext(t *testing.T) {
	d, err := NewHTMLDocument(samplePage)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, d.Navigate(ctx, "https://example.test"))
	assert.Error(t, d.WaitForElement(ctx, "#Location", time.Second))
}

func TestNewProvider_UnknownEngine(t *testing.T) {
	cfg := testBrowserConfig()
	cfg.Engine = "lynx"
	_, err := NewProvider(cfg)
	assert.True(t, eris.Is(err, ErrUnknownEngine))
}

func TestBlockedResourceTypes(t *testing.T) {
	types, err := blockedResourceTypes([]string{"Stylesheet", " font ", "image"})
	require.NoError(t, err)
	assert.Len(t, types, 3)

	_, err = blockedResourceTypes([]string{"video-ish"})
	assert.Error(t, err)
}

func TestChromiumBin_Configured(t *testing.T) {
	assert.Equal(t, "/opt/chrome", chromiumBin("/opt/chrome"))
}

func TestCollyFetcher_Navigate(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	p, err := NewProvider(testBrowserConfig())
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	s, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL+"/Parcel?Parcel=A1"))
	assert.Equal(t, "parcel-test-agent", gotAgent)
	require.NoError(t, s.WaitForElement(ctx, "#Location", time.Second))
}

func TestCollyFetcher_NavigateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewCollyFetcher(testBrowserConfig()).Acquire(context.Background())
	require.NoError(t, err)

	err = s.Navigate(context.Background(), srv.URL)
	assert.Error(t, err)
}
