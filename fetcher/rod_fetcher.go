package fetcher

import (
	"context"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"parcel-tax-scraper/config"
)

// chromiumPaths are probed in order when no binary is configured.
var chromiumPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

var resourceTypes = map[string]proto.NetworkResourceType{
	"stylesheet": proto.NetworkResourceTypeStylesheet,
	"font":       proto.NetworkResourceTypeFont,
	"image":      proto.NetworkResourceTypeImage,
	"media":      proto.NetworkResourceTypeMedia,
}

// RodFetcher drives one headless Chromium and hands out a page (or an incognito
// context with a page) per lookup.
type RodFetcher struct {
	browser  *rod.Browser
	cfg      config.BrowserConfig
	blocked  []proto.NetworkResourceType
	sessions *semaphore.Weighted
}

// NewRodFetcher launches Chromium and connects to it.
func NewRodFetcher(cfg config.BrowserConfig) (*RodFetcher, error) {
	blocked, err := blockedResourceTypes(cfg.BlockResources)
	if err != nil {
		return nil, err
	}

	userDataDir := cfg.UserDataDir
	if userDataDir != "" {
		if err := os.MkdirAll(userDataDir, 0755); err != nil {
			zap.L().Warn("failed to create browser data directory, using default",
				zap.String("dir", userDataDir),
				zap.Error(err),
			)
			userDataDir = ""
		}
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-accelerated-2d-canvas").
		Set("disable-gpu").
		Set("no-zygote").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-breakpad").
		Set("disable-sync").
		Set("disable-translate").
		Set("mute-audio").
		Set("ignore-certificate-errors").
		Set("disable-features", "TranslateUI,BlinkGenPropertyTrees")
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}
	if bin := chromiumBin(cfg.Bin); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "rod: launch browser")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, eris.Wrap(err, "rod: connect to browser")
	}

	zap.L().Info("browser started",
		zap.String("strategy", cfg.Strategy),
		zap.Int("max_sessions", cfg.MaxSessions),
	)

	return &RodFetcher{
		browser:  browser,
		cfg:      cfg,
		blocked:  blocked,
		sessions: semaphore.NewWeighted(int64(cfg.MaxSessions)),
	}, nil
}

// chromiumBin returns the configured binary or the first well-known path that exists.
// An empty result lets rod download its own Chromium.
func chromiumBin(configured string) string {
	if configured != "" {
		return configured
	}
	for _, path := range chromiumPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func blockedResourceTypes(names []string) ([]proto.NetworkResourceType, error) {
	types := make([]proto.NetworkResourceType, 0, len(names))
	for _, name := range names {
		t, ok := resourceTypes[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, eris.Errorf("rod: unknown resource type %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}

// Acquire opens a session according to the configured strategy. It blocks while
// max_sessions lookups are already in flight.
func (rf *RodFetcher) Acquire(ctx context.Context) (Session, error) {
	if err := rf.sessions.Acquire(ctx, 1); err != nil {
		return nil, eris.Wrap(err, "rod: wait for session slot")
	}
	release := func() { rf.sessions.Release(1) }

	owner := rf.browser
	var incognito *rod.Browser
	if rf.cfg.Strategy == config.StrategyContext {
		b, err := rf.browser.Incognito()
		if err != nil {
			release()
			return nil, eris.Wrap(err, "rod: create browser context")
		}
		incognito = b
		owner = b
	}

	page, err := newPage(owner)
	if err != nil {
		if incognito != nil {
			_ = incognito.Close()
		}
		release()
		return nil, err
	}

	s := &rodSession{
		page:       page,
		incognito:  incognito,
		navTimeout: rf.cfg.NavigationTimeout(),
		release:    release,
	}
	if err := s.prepare(rf.cfg.UserAgent, rf.blocked); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close shuts the browser down.
func (rf *RodFetcher) Close() error {
	if rf.browser == nil {
		return nil
	}
	if err := rf.browser.Close(); err != nil {
		return eris.Wrap(err, "rod: close browser")
	}
	return nil
}
