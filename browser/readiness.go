package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mythkeep/lorehound/config"
	"github.com/mythkeep/lorehound/models"
)

// Readiness decides when a dynamically rendered page has loaded the
// scripts and data globals needed for extraction. Every wait is bounded;
// a page that never becomes fully ready is reported, not fatal, because
// extraction re-validates data presence on its own.
type Readiness struct {
	cfg config.Extract
	log *slog.Logger
}

// NewReadiness creates a detector from extraction configuration.
func NewReadiness(cfg config.Extract, log *slog.Logger) *Readiness {
	return &Readiness{cfg: cfg, log: log}
}

// Wait runs the readiness sequence: per-script attach waits, the document
// content-loaded stage, then a one-shot globals probe with a bounded
// combined retry. It always returns within the configured bounds.
func (r *Readiness) Wait(ctx context.Context, page pageHandle, target models.Target) {
	// Scripts attach independently; ads and trackers routinely block some
	// of them, so a missing script is a warning and the run continues.
	for _, script := range target.CriticalScripts {
		sel := fmt.Sprintf(`script[src*="%s"]`, script)
		if err := page.Timeout(r.cfg.ScriptTimeout).WaitElementsMoreThan(sel, 0); err != nil {
			r.log.Warn("critical script not attached within bound",
				"script", script, "error", err)
		}
	}

	r.waitDocumentReady(ctx, page)

	if r.globalsDefined(page, target.Globals) {
		r.log.Info("page globals ready", "globals", target.Globals)
		return
	}

	// Missing globals: one combined predicate polled under a single
	// deadline, not a per-global wait that could stack timeouts.
	deadline := time.Now().Add(r.cfg.GlobalsTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			r.log.Warn("readiness wait canceled", "error", ctx.Err())
			return
		case <-time.After(r.cfg.ReadinessPoll):
		}
		if r.globalsDefined(page, target.Globals) {
			r.log.Info("page globals ready after wait", "globals", target.Globals)
			return
		}
	}
	r.log.Warn("page globals still undefined after bound, proceeding best-effort",
		"globals", target.Globals, "bound", r.cfg.GlobalsTimeout)
}

// waitDocumentReady polls document.readyState until the content-loaded
// stage ("interactive" or "complete") or the readiness bound elapses.
func (r *Readiness) waitDocumentReady(ctx context.Context, page evaluator) {
	deadline := time.Now().Add(r.cfg.ScriptTimeout)
	for time.Now().Before(deadline) {
		res, err := page.Eval(`() => document.readyState`)
		if err == nil {
			state := res.Value.Str()
			if state == "interactive" || state == "complete" {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.cfg.ReadinessPoll):
		}
	}
	r.log.Warn("document did not reach content-loaded stage within bound")
}

// globalsDefined evaluates, in one shot, whether every expected global is
// defined. Names are passed as data so the script itself stays fixed.
func (r *Readiness) globalsDefined(page evaluator, globals []string) bool {
	if len(globals) == 0 {
		return true
	}
	res, err := page.Eval(
		`(names) => names.every(n => typeof window[n] !== 'undefined')`,
		globals,
	)
	if err != nil {
		r.log.Debug("globals probe failed", "globals", strings.Join(globals, ","), "error", err)
		return false
	}
	return res.Value.Bool()
}
