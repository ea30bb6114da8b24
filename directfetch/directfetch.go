// Package directfetch retrieves the target's raw data files over plain
// HTTP, bypassing page rendering entirely. It is the second extraction
// strategy, tried when the browser strategy comes back empty.
package directfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"

	"github.com/mythkeep/lorehound/config"
	"github.com/mythkeep/lorehound/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. Computed once at init time and reused per connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2, which Go's http.Transport cannot handle
	// over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Strategy probes a short ordered list of likely raw-data endpoints and
// normalizes whatever parses into the fixed Record schema. The first
// endpoint yielding a non-empty result wins; everything else is skipped.
type Strategy struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     config.Fetch
	log     *slog.Logger
}

// New creates the strategy with a Chrome TLS fingerprint client.
func New(cfg config.Fetch, log *slog.Logger) *Strategy {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: cfg.Timeout}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("directfetch: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Strategy{
		client:  &http.Client{Transport: transport},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
		log:     log,
	}
}

// Name identifies the strategy in run results.
func (s *Strategy) Name() string { return models.StrategyDirectFetch }

// Extract tries each endpoint candidate in order. An endpoint that fails
// to fetch or parse is logged and the next one is tried; exhausting every
// candidate returns an empty sequence, never an error.
func (s *Strategy) Extract(ctx context.Context, req *models.RunRequest) ([]models.Record, error) {
	target := req.Target
	for _, endpoint := range target.DataEndpoints {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn("endpoint sweep aborted", "error", err)
			return nil, nil
		}
		candidate := target.BaseURL + endpoint

		body, err := s.get(ctx, candidate)
		if err != nil {
			s.log.Warn("endpoint candidate failed", "url", candidate, "error", err)
			continue
		}

		records, err := DecodePayload(body, target)
		if err != nil {
			s.log.Warn("endpoint payload unparseable", "url", candidate, "error", err)
			continue
		}
		if len(records) > 0 {
			s.log.Info("direct fetch succeeded", "url", candidate, "count", len(records))
			return records, nil
		}
		s.log.Debug("endpoint parsed but held no entities", "url", candidate)
	}
	return nil, nil
}

// get issues one bounded request with browser-like headers.
func (s *Strategy) get(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	// 10 MB cap; the real data files are single-digit megabytes.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// decodeJSON is a number-preserving unmarshal into any. json.Number keeps
// integer stats (hit points, ability scores) from turning into floats on
// the write path.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
