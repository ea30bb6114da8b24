// Package browser implements the browser-driven extraction strategy: an
// anti-detection browsing context, consent dismissal, readiness detection,
// human-like interaction and in-page data extraction.
package browser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mythkeep/lorehound/config"
	"github.com/mythkeep/lorehound/models"
)

// Strategy drives a headless browser against the target page. The
// browsing context is created at the start of each run and guaranteed
// closed before Extract returns, on every exit path.
type Strategy struct {
	profile   *Profile
	readiness *Readiness
	cfg       config.Extract
	log       *slog.Logger
}

// New creates the browser strategy.
func New(browserCfg config.Browser, extractCfg config.Extract, log *slog.Logger) *Strategy {
	return &Strategy{
		profile:   NewProfile(browserCfg),
		readiness: NewReadiness(extractCfg, log),
		cfg:       extractCfg,
		log:       log,
	}
}

// Name identifies the strategy in run results.
func (s *Strategy) Name() string { return models.StrategyBrowser }

// Extract runs the full browser attempt.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Timeout guard     – hard deadline on the entire attempt
//  2. Launch browser    – fresh context per run, killed on exit
//  3. New page          – profile applied BEFORE navigation
//  4. Hijack mount      – drop images/fonts/media and trackers
//  5. Navigate          – triggers page load
//  6. Consent           – best-effort overlay dismissal
//  7. Readiness         – bounded script/global waits
//  8. Behavior          – human-like interaction
//  9. Extract           – two-tier in-page extraction
//  10. Diagnostics      – screenshot + markup when nothing was found
//
// Steps 3-4 must precede step 5: init scripts and interception only take
// effect for navigations that happen after they are installed.
func (s *Strategy) Extract(ctx context.Context, req *models.RunRequest) ([]models.Record, error) {
	target := req.Target

	// ── 1. Timeout guard ────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	// ── 2. Launch browser ───────────────────────────────────────────
	l := s.profile.Launcher()
	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash,
			"failed to launch browser", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash,
			"failed to connect to browser", err)
	}
	// The context is exclusively owned by this attempt. Close it on every
	// exit path so no Chrome process outlives the run.
	defer func() {
		if err := browser.Close(); err != nil {
			s.log.Warn("browser close failed", "error", err)
		}
		l.Kill()
	}()
	s.log.Info("browser launched", "controlURL", controlURL)

	// ── 3. New page with anti-detection profile ─────────────────────
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash,
			"failed to create page", err)
	}
	if err := s.profile.Apply(page, target.PageURL); err != nil {
		s.log.Warn("profile partially applied, proceeding", "error", err)
	}

	// ── 4. Mount hijack router ──────────────────────────────────────
	router := setupHijack(page, s.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	// ── 5. Navigate ─────────────────────────────────────────────────
	p := page.Context(ctx)
	s.log.Info("loading target page", "url", target.PageURL)
	if err := p.Timeout(s.cfg.NavigationTimeout).Navigate(target.PageURL); err != nil {
		return nil, categorizeError(err, "navigation to target page failed")
	}

	// ── 6. Consent ──────────────────────────────────────────────────
	dismissConsent(p, s.log)

	// ── 7. Readiness ────────────────────────────────────────────────
	s.readiness.Wait(ctx, p, target)

	// ── 8. Behavior simulation ──────────────────────────────────────
	NewSimulator(s.cfg.Seed, s.log).Simulate(p)

	// ── 9. Extract ──────────────────────────────────────────────────
	records := extractRecords(p, target, s.log)

	// ── 10. Diagnostics on empty result ─────────────────────────────
	if len(records) == 0 {
		captureDiagnostics(p, req.OutputDir, s.log)
	}

	return records, nil
}

// categorizeError wraps raw errors into typed ExtractErrors so the
// pipeline can distinguish timeouts from hard navigation failures.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeNavigation, msg, err)
	}
}
