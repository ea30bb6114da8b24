package browser

import (
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/mythkeep/lorehound/config"
)

const desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// fingerprintJS runs before any page script and overrides the properties
// that headless Chrome gets wrong: navigator automation flags, plugin and
// language lists, hardware hints, WebGL vendor strings, canvas output and
// screen geometry. Values are chosen to look like an ordinary desktop.
const fingerprintJS = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined, configurable: true });
	delete Object.getPrototypeOf(navigator).webdriver;

	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'], configurable: true });
	Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5], configurable: true });
	Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 8, configurable: true });
	Object.defineProperty(navigator, 'deviceMemory', { get: () => 8, configurable: true });

	window.chrome = window.chrome || { runtime: {} };

	if (navigator.permissions && navigator.permissions.query) {
		const origQuery = navigator.permissions.query.bind(navigator.permissions);
		navigator.permissions.query = (params) =>
			params.name === 'notifications'
				? Promise.resolve({ state: Notification.permission })
				: origQuery(params);
	}

	const getParameter = WebGLRenderingContext.prototype.getParameter;
	WebGLRenderingContext.prototype.getParameter = function (parameter) {
		if (parameter === 37445) return 'Intel Inc.';
		if (parameter === 37446) return 'Intel Iris OpenGL Engine';
		return getParameter.apply(this, arguments);
	};

	const origToDataURL = HTMLCanvasElement.prototype.toDataURL;
	HTMLCanvasElement.prototype.toDataURL = function (type) {
		const ctx = this.getContext('2d');
		if (ctx && this.width > 0 && this.height > 0) {
			const img = ctx.getImageData(0, 0, Math.min(this.width, 64), Math.min(this.height, 64));
			for (let i = 0; i < img.data.length; i += 16) {
				img.data[i] = img.data[i] ^ 1;
			}
			ctx.putImageData(img, 0, 0);
		}
		return origToDataURL.apply(this, arguments);
	};

	Object.defineProperty(screen, 'availWidth', { get: () => 1920 });
	Object.defineProperty(screen, 'availHeight', { get: () => 1040 });
	Object.defineProperty(screen, 'colorDepth', { get: () => 24 });
})();`

// Profile configures a browsing context to minimise automation fingerprints.
// All overrides are applied before any page script executes.
type Profile struct {
	cfg config.Browser
}

// NewProfile creates a Profile from browser configuration.
func NewProfile(cfg config.Browser) *Profile {
	return &Profile{cfg: cfg}
}

// Launcher builds a launcher with the stealth flag set applied.
func (p *Profile) Launcher() *launcher.Launcher {
	l := launcher.New().
		Headless(p.cfg.Headless).
		NoSandbox(p.cfg.NoSandbox)

	if p.cfg.BrowserBin != "" {
		l = l.Bin(p.cfg.BrowserBin)
	}
	if p.cfg.Proxy != "" {
		l = l.Proxy(p.cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	return l
}

// Apply installs the full anti-detection profile on a fresh page: user
// agent, locale, timezone, viewport, color scheme, realistic headers and
// the stealth + fingerprint init scripts. Must be called before Navigate;
// init scripts only take effect for subsequent navigations.
func (p *Profile) Apply(page *rod.Page, targetURL string) error {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      desktopUA,
		AcceptLanguage: "en-US,en;q=0.5",
		Platform:       "Win32",
	}); err != nil {
		return err
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return err
	}

	_ = proto.EmulationSetTimezoneOverride{TimezoneID: "Europe/Paris"}.Call(page)
	_ = proto.EmulationSetEmulatedMedia{
		Features: []*proto.EmulationMediaFeature{
			{Name: "prefers-color-scheme", Value: "dark"},
		},
	}.Call(page)

	headers := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
	}
	if u, err := url.Parse(targetURL); err == nil {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(page); err != nil {
		return err
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return err
	}
	if _, err := page.EvalOnNewDocument(fingerprintJS); err != nil {
		return err
	}
	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
