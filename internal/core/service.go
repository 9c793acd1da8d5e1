package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/qualitycheck/internal/config"
	"github.com/JonMunkholm/qualitycheck/internal/logging"
)

// Service runs reconciliation checks. It is the single entry point used by
// the CLI and the web front-end.
type Service struct {
	cfg     *config.Config
	history RunHistory
	limiter *RunLimiter
	now     func() time.Time
}

// NewService creates a Service. A nil history keeps runs in memory.
func NewService(cfg *config.Config, history RunHistory) *Service {
	if history == nil {
		history = NewMemoryRunHistory(cfg.Run.HistorySize)
	}
	return &Service{
		cfg:     cfg,
		history: history,
		limiter: NewRunLimiter(cfg.Run.MaxConcurrent, cfg.Run.MaxWaitTime),
		now:     time.Now,
	}
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// History returns the run history.
func (s *Service) History() RunHistory {
	return s.history
}

// Limiter returns the run limiter, for health reporting and shutdown.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// Validate checks that the request names every required file.
func (r RunRequest) Validate() error {
	if r.PrimaryPath == "" {
		return fmt.Errorf("complot: %w", ErrInputMissing)
	}
	if r.LayerPath == "" {
		return fmt.Errorf("layer: %w", ErrInputMissing)
	}
	if r.OutputPath == "" {
		return &OutputError{Err: errors.New("output path is empty")}
	}
	return nil
}

// Run executes one check: load both sources, index, match, and write the
// report and summary. progress may be nil. On error no output file is left
// behind. Every run, failed or not, is recorded in the history.
func (s *Service) Run(ctx context.Context, req RunRequest, progress ProgressCallback) (*RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := s.now()
	logger := logging.WithFields(ctx, "run_id", runID)

	emit := func(p RunProgress) {
		p.RunID = runID
		if progress != nil {
			progress(p)
		}
	}

	if s.cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Run.Timeout)
		defer cancel()
	}

	emit(RunProgress{Phase: PhaseStarting})
	logger.Info("run started",
		"complot", req.PrimaryPath,
		"layer", req.LayerPath,
		"template", req.TemplatePath,
		"output", req.OutputPath,
	)

	result, err := s.run(ctx, runID, started, req, emit)

	rec := RunRecord{
		ID:           runID,
		StartedAt:    started,
		FinishedAt:   s.now(),
		PrimaryFile:  req.PrimaryPath,
		LayerFile:    req.LayerPath,
		TemplateFile: req.TemplatePath,
	}
	if err != nil {
		rec.Status = RunFailed
		rec.Error = err.Error()
		rec.ErrorCode = MapError(err).Code
		logger.Error("run failed", "error", err, "code", rec.ErrorCode)
		emit(RunProgress{Phase: PhaseFailed, Error: FormatUserError(err)})
	} else {
		rec.Status = RunSucceeded
		rec.ReportPath = result.ReportPath
		rec.SummaryPath = result.SummaryPath
		rec.Summary = &result.Summary
		logger.Info("run completed",
			"keys", result.Summary.TotalKeys,
			"perfect", result.Summary.Perfect,
			"partial", result.Summary.Partial,
			"complot_only", result.Summary.PrimaryOnly,
			"layer_only", result.Summary.LayerOnly,
			"duration", result.Duration,
		)
		emit(RunProgress{Phase: PhaseComplete})
	}

	if herr := s.history.Save(context.WithoutCancel(ctx), rec); herr != nil {
		logger.Warn("failed to record run", "error", herr)
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, runID string, started time.Time, req RunRequest, emit func(RunProgress)) (*RunResult, error) {
	match := s.cfg.Match
	norm := NewNormalizer(match)
	loader := NewLoader(norm, match, s.cfg.Input)

	emit(RunProgress{Phase: PhaseLoading})
	primary, err := loader.LoadPrimaryFile(req.PrimaryPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layer, err := loader.LoadLayerFile(req.LayerPath)
	if err != nil {
		return nil, err
	}

	var template []string
	if req.TemplatePath != "" {
		template, err = loadTemplate(req.TemplatePath)
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emit(RunProgress{Phase: PhaseIndexing})
	idx := BuildIndex(norm, match.JoinKeyField, primary.Records, layer.Records)

	emit(RunProgress{Phase: PhaseMatching, Total: len(idx.Keys)})
	rows, err := NewMatcher(norm, match).Match(ctx, idx, func(done, total int) {
		emit(RunProgress{Phase: PhaseMatching, Current: done, Total: total})
	})
	if err != nil {
		return nil, err
	}

	rep := NewReport(NewLayout(match, s.cfg.Report, template), idx, rows, match.ComparedFields)
	rep.Summary.SkippedRows = primary.Skipped + layer.Skipped
	if rep.Summary.SkippedRows > 0 {
		logging.WithFields(ctx, "run_id", runID).Info("empty rows skipped",
			"complot", primary.Skipped,
			"layer", layer.Skipped,
		)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	emit(RunProgress{Phase: PhaseWriting})
	meta := SummaryMeta{
		RunID:           runID,
		GeneratedAt:     s.now(),
		PrimaryPath:     req.PrimaryPath,
		LayerPath:       req.LayerPath,
		TemplatePath:    req.TemplatePath,
		PrimaryEncoding: primary.Encoding,
	}
	arts, err := WriteArtifacts(req.OutputPath, rep, meta, s.cfg.Report)
	if err != nil {
		return nil, err
	}
	meta.OutputPath = arts.ReportPath

	return &RunResult{
		RunID:           runID,
		Summary:         rep.Summary,
		ReportPath:      arts.ReportPath,
		SummaryPath:     arts.SummaryPath,
		PrimaryEncoding: primary.Encoding,
		Meta:            meta,
		StartedAt:       started,
		Duration:        s.now().Sub(started),
	}, nil
}

// loadTemplate reads the template header row.
func loadTemplate(path string) ([]string, error) {
	header, err := ReadTemplateHeader(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("template %s: %w", path, ErrInputMissing)
	}
	if err != nil {
		return nil, &InputError{Source: SourceTemplate, Path: path, Err: err}
	}
	return header, nil
}
