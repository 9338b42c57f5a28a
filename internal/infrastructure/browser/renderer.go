package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/internal/domain"
)

// Config holds headless browser settings
type Config struct {
	BinPath   string
	Headless  bool
	UserAgent string
}

// Renderer launches a dedicated headless browser for every Render call.
// Each browser process is killed and its profile directory removed before Render returns.
type Renderer struct {
	cfg        Config
	logger     logrus.FieldLogger
	resolveBin func(ctx context.Context) (string, error)
}

// NewRenderer creates a page renderer
func NewRenderer(cfg Config, logger logrus.FieldLogger) *Renderer {
	return &Renderer{
		cfg:        cfg,
		logger:     logger.WithField("component", "browser"),
		resolveBin: resolveBrowserBin,
	}
}

// resolveBrowserBin finds or downloads a Chromium build, bounded by ctx
func resolveBrowserBin(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	return b.Get()
}

// Render navigates to pageURL, waits for network idle and returns the resulting DOM.
// timeout bounds the whole call, browser download and launch included.
// All failures, including panics inside rod, are reported as domain.ErrRenderFailure.
func (r *Renderer) Render(ctx context.Context, pageURL string, timeout time.Duration) (snapshot *domain.PageSnapshot, err error) {
	start := time.Now()
	log := r.logger.WithField("url", pageURL)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			snapshot = nil
			err = fmt.Errorf("%w: %v", domain.ErrRenderFailure, rec)
		}
		if err != nil {
			log.WithError(err).WithField("duration", time.Since(start).String()).Warn("render failed")
		}
	}()

	binPath := r.cfg.BinPath
	if binPath == "" {
		if binPath, err = r.resolveBin(ctx); err != nil {
			return nil, fmt.Errorf("%w: resolve browser: %v", domain.ErrRenderFailure, err)
		}
	}

	l := launcher.New().
		Context(ctx).
		Bin(binPath).
		Headless(r.cfg.Headless).
		NoSandbox(true)
	defer l.Cleanup()
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", domain.ErrRenderFailure, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect browser: %v", domain.ErrRenderFailure, err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			log.WithError(cerr).Debug("browser close returned an error")
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %v", domain.ErrRenderFailure, err)
	}
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
		return nil, fmt.Errorf("%w: set user agent: %v", domain.ErrRenderFailure, err)
	}

	waitIdle := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: navigate: %v", domain.ErrRenderFailure, err)
	}
	waitIdle()

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read DOM: %v", domain.ErrRenderFailure, err)
	}

	finalURL := pageURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	log.WithFields(logrus.Fields{
		"final_url": finalURL,
		"duration":  time.Since(start).String(),
	}).Info("page rendered")

	return &domain.PageSnapshot{URL: finalURL, HTML: html}, nil
}
