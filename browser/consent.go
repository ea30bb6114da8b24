package browser

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// consentFrameSelectors locate iframes that host a consent dialog.
var consentFrameSelectors = []string{
	`iframe[id^="sp_message_iframe"]`,
	`iframe[src*="consent"]`,
	`iframe[title*="Consent"]`,
}

// consentButtonSelectors are tried in priority order; the first match is
// clicked. Covers the common CMPs plus generic accept buttons.
var consentButtonSelectors = []string{
	`button[title="Accept all"]`,
	`button[title="AGREE"]`,
	`#onetrust-accept-btn-handler`,
	`.fc-cta-consent`,
	`button[mode="primary"]`,
	`.ncmp__btn`,
	`button[aria-label*="Accept"]`,
	`button[aria-label*="Consent"]`,
}

// dismissConsent makes a best-effort attempt to clear a cookie/consent
// overlay that would otherwise block interaction. The banner may live in
// the main document or a nested frame. Not finding one is not an error.
func dismissConsent(page *rod.Page, log *slog.Logger) {
	scope := consentScope(page)

	for _, sel := range consentButtonSelectors {
		el, err := scope.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			log.Debug("consent button click failed", "selector", sel, "error", err)
			continue
		}
		log.Info("consent banner dismissed", "selector", sel)
		// Give the overlay a moment to animate out.
		time.Sleep(1 * time.Second)
		return
	}
	log.Debug("no consent banner found, continuing")
}

// consentScope returns the frame hosting the consent dialog, or the main
// page when no known consent frame is present.
func consentScope(page *rod.Page) *rod.Page {
	for _, sel := range consentFrameSelectors {
		iframe, err := page.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if frame, err := iframe.Frame(); err == nil {
			return frame
		}
	}
	return page
}
