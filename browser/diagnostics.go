package browser

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// captureDiagnostics writes a rendered screenshot and the full page markup
// under <outputDir>/debug. Best-effort: every failure is logged and
// swallowed, the captures are never required for correctness.
func captureDiagnostics(page *rod.Page, outputDir string, log *slog.Logger) {
	debugDir := filepath.Join(outputDir, "debug")
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		log.Warn("cannot create debug dir", "dir", debugDir, "error", err)
		return
	}

	if img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}); err != nil {
		log.Warn("screenshot capture failed", "error", err)
	} else {
		path := filepath.Join(debugDir, "page.png")
		if err := os.WriteFile(path, img, 0o644); err != nil {
			log.Warn("screenshot write failed", "path", path, "error", err)
		} else {
			log.Info("debug screenshot written", "path", path)
		}
	}

	if html, err := page.HTML(); err != nil {
		log.Warn("markup capture failed", "error", err)
	} else {
		path := filepath.Join(debugDir, "page.html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			log.Warn("markup write failed", "path", path, "error", err)
		} else {
			log.Info("debug markup written", "path", path)
		}
	}
}
