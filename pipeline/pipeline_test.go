package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mythkeep/lorehound/fallback"
	"github.com/mythkeep/lorehound/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStrategy returns canned records (or an error) and counts calls.
type stubStrategy struct {
	name    string
	records []models.Record
	err     error
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, req *models.RunRequest) ([]models.Record, error) {
	s.calls++
	return s.records, s.err
}

// stubEmitter records whether Emit was called.
type stubEmitter struct {
	called bool
	err    error
}

func (e *stubEmitter) Emit(target models.Target, dir string) error {
	e.called = true
	return e.err
}

func makeRecords(n int) []models.Record {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{"name": string(rune('a' + i)), "source": "T"}
	}
	return records
}

func testRequest(t *testing.T, limit int) *models.RunRequest {
	t.Helper()
	return &models.RunRequest{
		Target:    models.Target{Name: "spells", OutputFile: "spells.json"},
		OutputDir: t.TempDir(),
		Limit:     limit,
	}
}

func readPersisted(t *testing.T, path string) []models.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read persisted file: %v", err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("parse persisted file: %v", err)
	}
	return records
}

func TestRun_LimitTruncatesFromStart(t *testing.T) {
	s := &stubStrategy{name: models.StrategyBrowser, records: makeRecords(3)}
	p := New([]Strategy{s}, &stubEmitter{}, discardLogger())

	req := testRequest(t, 2)
	result, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	persisted := readPersisted(t, result.OutputPath)
	if len(persisted) != 2 {
		t.Fatalf("persisted %d records, want 2", len(persisted))
	}
	if persisted[0]["name"] != "a" || persisted[1]["name"] != "b" {
		t.Errorf("truncation should keep the first records: %v", persisted)
	}
}

func TestRun_NoLimitKeepsAll(t *testing.T) {
	s := &stubStrategy{name: models.StrategyBrowser, records: makeRecords(7)}
	p := New([]Strategy{s}, &stubEmitter{}, discardLogger())

	result, err := p.Run(context.Background(), testRequest(t, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Records) != 7 {
		t.Fatalf("got %d records, want 7", len(result.Records))
	}
	if got := readPersisted(t, result.OutputPath); len(got) != 7 {
		t.Fatalf("persisted %d records, want 7", len(got))
	}
}

func TestRun_FallsThroughToSecondStrategy(t *testing.T) {
	first := &stubStrategy{name: models.StrategyBrowser}
	second := &stubStrategy{name: models.StrategyDirectFetch, records: makeRecords(5)}
	p := New([]Strategy{first, second}, &stubEmitter{}, discardLogger())

	result, err := p.Run(context.Background(), testRequest(t, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if first.calls != 1 || second.calls != 1 {
		t.Errorf("strategy calls = %d, %d; want 1, 1", first.calls, second.calls)
	}
	if result.Strategy != models.StrategyDirectFetch {
		t.Errorf("winning strategy = %q, want %q", result.Strategy, models.StrategyDirectFetch)
	}
	if len(result.Records) != 5 {
		t.Errorf("got %d records, want 5", len(result.Records))
	}
}

func TestRun_StrategyErrorIsSoft(t *testing.T) {
	first := &stubStrategy{name: models.StrategyBrowser, err: errors.New("browser crashed")}
	second := &stubStrategy{name: models.StrategyDirectFetch, records: makeRecords(1)}
	p := New([]Strategy{first, second}, &stubEmitter{}, discardLogger())

	result, err := p.Run(context.Background(), testRequest(t, 0))
	if err != nil {
		t.Fatalf("strategy error must not fail the run: %v", err)
	}
	if result.Strategy != models.StrategyDirectFetch {
		t.Errorf("winning strategy = %q, want %q", result.Strategy, models.StrategyDirectFetch)
	}
}

func TestRun_AllEmptyEmitsManualFallback(t *testing.T) {
	first := &stubStrategy{name: models.StrategyBrowser}
	second := &stubStrategy{name: models.StrategyDirectFetch}
	emitter := &stubEmitter{}
	p := New([]Strategy{first, second}, emitter, discardLogger())

	req := testRequest(t, 0)
	result, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !emitter.called {
		t.Error("fallback emitter should have been invoked")
	}
	if result.Strategy != models.StrategyNone || !result.ManualFallback {
		t.Errorf("result = %+v, want strategy none with manual fallback", result)
	}
	if _, err := os.Stat(filepath.Join(req.OutputDir, req.Target.OutputFile)); !os.IsNotExist(err) {
		t.Error("no data file must be written on manual fallback")
	}
}

func TestRun_FallbackArtifactsOnDisk(t *testing.T) {
	empty := &stubStrategy{name: models.StrategyBrowser}
	target := models.Spells("https://example.test/")
	p := New([]Strategy{empty}, fallback.NewEmitter(discardLogger()), discardLogger())

	req := &models.RunRequest{Target: target, OutputDir: t.TempDir()}
	result, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.ManualFallback {
		t.Fatal("expected a manual fallback result")
	}

	for _, name := range []string{"extract.js", "README.md"} {
		path := filepath.Join(req.OutputDir, fallback.Subdir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected fallback artifact %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(req.OutputDir, target.OutputFile)); !os.IsNotExist(err) {
		t.Error("no data file must exist after a fully-failed run")
	}
}

func TestRun_EmitterFailureIsFatal(t *testing.T) {
	empty := &stubStrategy{name: models.StrategyBrowser}
	emitter := &stubEmitter{err: errors.New("disk full")}
	p := New([]Strategy{empty}, emitter, discardLogger())

	if _, err := p.Run(context.Background(), testRequest(t, 0)); err == nil {
		t.Error("fallback emission failure must propagate")
	}
}

func TestRun_OutputDirCreationFailureIsFatal(t *testing.T) {
	s := &stubStrategy{name: models.StrategyBrowser, records: makeRecords(1)}
	p := New([]Strategy{s}, &stubEmitter{}, discardLogger())

	// A file in place of the output directory makes MkdirAll fail.
	base := t.TempDir()
	blocker := filepath.Join(base, "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := &models.RunRequest{
		Target:    models.Target{Name: "spells", OutputFile: "spells.json"},
		OutputDir: blocker,
	}
	if _, err := p.Run(context.Background(), req); err == nil {
		t.Error("output directory failure must propagate")
	}
	if s.calls != 0 {
		t.Error("no strategy should run when the output directory is unusable")
	}
}

func TestRun_PersistPreservesUTF8(t *testing.T) {
	s := &stubStrategy{name: models.StrategyBrowser, records: []models.Record{
		{"name": "Éclair de feu", "source": "PHB"},
	}}
	p := New([]Strategy{s}, &stubEmitter{}, discardLogger())

	result, err := p.Run(context.Background(), testRequest(t, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatal("persisted file is not valid JSON")
	}
	if !strings.Contains(string(data), "Éclair de feu") {
		t.Errorf("non-ASCII text should be preserved verbatim, file: %s", data)
	}
}
