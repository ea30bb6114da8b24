// Package pipeline orchestrates the extraction strategies in a fixed
// order — browser, direct fetch, manual fallback — applies the result
// limit and persists the final record set.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mythkeep/lorehound/models"
)

// Strategy is one self-contained method of obtaining records. A strategy
// that finds nothing returns an empty sequence; returning an error is
// reserved for failures worth logging (both lead to the next strategy).
type Strategy interface {
	Name() string
	Extract(ctx context.Context, req *models.RunRequest) ([]models.Record, error)
}

// FallbackEmitter produces the manual-extraction artifacts.
type FallbackEmitter interface {
	Emit(target models.Target, outputDir string) error
}

// Pipeline executes one run: strategies in order, first non-empty result
// wins, manual fallback when everything came back empty. The pipeline
// never loops and always reaches a terminal state.
type Pipeline struct {
	strategies []Strategy
	fallback   FallbackEmitter
	log        *slog.Logger
}

// New creates a Pipeline. Strategies run in the order given.
func New(strategies []Strategy, fallback FallbackEmitter, log *slog.Logger) *Pipeline {
	return &Pipeline{strategies: strategies, fallback: fallback, log: log}
}

// Run executes the pipeline for one request.
//
// A strategy error is a soft failure: logged, then the next strategy is
// tried. Only output-directory creation and final artifact writes are
// fatal. On success the configured limit truncates the sequence before
// persisting; extraction itself always fetches the full data.
func (p *Pipeline) Run(ctx context.Context, req *models.RunRequest) (*models.RunResult, error) {
	log := p.log.With("target", req.Target.Name)

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, models.NewExtractError(models.ErrCodePersist,
			"cannot create output directory", err)
	}

	for _, strategy := range p.strategies {
		log.Info("trying extraction strategy", "strategy", strategy.Name())

		records, err := strategy.Extract(ctx, req)
		if err != nil {
			log.Warn("strategy failed, falling through",
				"strategy", strategy.Name(), "error", err)
			continue
		}
		if len(records) == 0 {
			log.Warn("strategy produced no records, falling through",
				"strategy", strategy.Name())
			continue
		}

		if req.Limit > 0 && len(records) > req.Limit {
			log.Info("applying result limit", "limit", req.Limit, "extracted", len(records))
			records = records[:req.Limit]
		}

		path, err := p.persist(records, req)
		if err != nil {
			return nil, err
		}
		log.Info("run complete", "strategy", strategy.Name(),
			"records", len(records), "output", path)
		return &models.RunResult{
			Records:    records,
			Strategy:   strategy.Name(),
			OutputPath: path,
		}, nil
	}

	// Every automated strategy exhausted: emit the manual handoff.
	log.Error("all automated strategies failed, emitting manual fallback")
	if err := p.fallback.Emit(req.Target, req.OutputDir); err != nil {
		return nil, err
	}
	return &models.RunResult{
		Strategy:       models.StrategyNone,
		ManualFallback: true,
	}, nil
}

// persist writes the record sequence as a single JSON document. Map keys
// marshal in sorted order, which gives stable field ordering, and HTML
// escaping is off so non-ASCII and markup-ish text survive verbatim.
func (p *Pipeline) persist(records []models.Record, req *models.RunRequest) (string, error) {
	path := filepath.Join(req.OutputDir, req.Target.OutputFile)

	f, err := os.Create(path)
	if err != nil {
		return "", models.NewExtractError(models.ErrCodePersist,
			"cannot create data file", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", models.NewExtractError(models.ErrCodePersist,
			"cannot write data file", err)
	}
	if err := f.Close(); err != nil {
		return "", models.NewExtractError(models.ErrCodePersist,
			"cannot flush data file", err)
	}
	return path, nil
}
