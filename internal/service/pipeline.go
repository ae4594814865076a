package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
)

const (
	// MaxClaimRunes bounds a directly submitted claim.
	MaxClaimRunes = 1000
	// DefaultPipelineTimeout bounds one Verify call end to end.
	DefaultPipelineTimeout = 120 * time.Second
)

// ClaimExtractor is satisfied by *ExtractionService.
type ClaimExtractor interface {
	Extract(ctx context.Context, transcript string) ([]domain.Claim, error)
}

// VerdictSynthesizer is satisfied by *SynthesisService.
type VerdictSynthesizer interface {
	Synthesize(ctx context.Context, claim domain.Claim, evidence []domain.EvidenceItem) domain.Verdict
}

// PipelineConfig tunes the fan-out. Zero values mean no limit, except
// Timeout which falls back to DefaultPipelineTimeout.
type PipelineConfig struct {
	MaxConcurrency int
	ClaimTimeout   time.Duration
	Timeout        time.Duration
}

// Input is either a single claim or a video URL, never both.
type Input struct {
	Claim string
	URL   string
}

// Options are per-request knobs. A zero Search uses retrieval.DefaultOptions.
type Options struct {
	Search domain.SearchOptions
}

// PipelineService drives a request from input to aggregated claim outcomes.
type PipelineService struct {
	transcriber domain.Transcriber
	extractor   ClaimExtractor
	synthesizer VerdictSynthesizer
	retriever   domain.Retriever
	cfg         PipelineConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewPipelineService(
	extractor ClaimExtractor,
	synthesizer VerdictSynthesizer,
	retriever domain.Retriever,
	cfg PipelineConfig,
	logger *zap.Logger,
) *PipelineService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPipelineTimeout
	}
	return &PipelineService{
		extractor:   extractor,
		synthesizer: synthesizer,
		retriever:   retriever,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// SetTranscriber enables URL inputs.
func (s *PipelineService) SetTranscriber(t domain.Transcriber) {
	s.transcriber = t
}

// ExtractClaims runs the extraction stage on its own.
func (s *PipelineService) ExtractClaims(ctx context.Context, transcript string) ([]domain.Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	claims, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		return nil, s.stageError(ctx, err)
	}
	return claims, nil
}

// Verify runs the full pipeline. Failures before the fan-out are returned as
// errors; failures inside it become degraded outcomes.
func (s *PipelineService) Verify(ctx context.Context, in Input, opts Options) (*domain.PipelineResult, error) {
	claim, rawURL, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}
	search, err := resolveSearchOptions(opts.Search)
	if err != nil {
		return nil, err
	}

	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	result := &domain.PipelineResult{
		RequestID: uuid.New(),
		CreatedAt: start.UTC(),
	}
	logger := s.logger.With(zap.String("request_id", result.RequestID.String()))

	var claims []domain.Claim
	if rawURL == "" {
		result.InputKind = domain.InputClaim
		claims = []domain.Claim{claim}
	} else {
		result.InputKind = domain.InputURL
		result.SourceURL = rawURL

		stageStart := s.now()
		tr, err := s.transcriber.Transcribe(ctx, rawURL)
		result.Timings.TranscriptionMs = s.since(stageStart)
		if err != nil {
			logger.Warn("transcription failed", zap.String("url", rawURL), zap.Error(err))
			return nil, s.stageError(ctx, err)
		}
		result.Transcript = tr.Text
		result.AudioSizeBytes = tr.SourceSizeBytes

		stageStart = s.now()
		claims, err = s.extractor.Extract(ctx, tr.Text)
		result.Timings.ExtractionMs = s.since(stageStart)
		if err != nil {
			logger.Warn("claim extraction failed", zap.Error(err))
			return nil, s.stageError(ctx, err)
		}
	}

	result.Claims = claims
	result.Outcomes = []domain.ClaimOutcome{}
	if len(claims) == 0 {
		result.NoClaimsFound = true
		result.Timings.TotalMs = s.since(start)
		logger.Info("no verifiable claims found", zap.String("input_kind", string(result.InputKind)))
		return result, nil
	}

	stageStart := s.now()
	outcomes, err := s.fanOut(ctx, claims, search)
	result.Timings.VerificationMs = s.since(stageStart)
	if err != nil {
		logger.Warn("verification abandoned", zap.Int("claims", len(claims)), zap.Error(err))
		return nil, err
	}
	result.Outcomes = outcomes
	result.Timings.TotalMs = s.since(start)

	logger.Info("pipeline completed",
		zap.String("input_kind", string(result.InputKind)),
		zap.Int("claims", len(claims)),
		zap.Int("degraded", result.DegradedCount()),
		zap.Int64("total_ms", result.Timings.TotalMs),
	)
	return result, nil
}

func (s *PipelineService) validateInput(in Input) (domain.Claim, string, error) {
	text := strings.TrimSpace(in.Claim)
	rawURL := strings.TrimSpace(in.URL)

	switch {
	case text == "" && rawURL == "":
		return domain.Claim{}, "", domain.NewError(domain.KindInvalidInput, "either claim or url is required", nil)
	case text != "" && rawURL != "":
		return domain.Claim{}, "", domain.NewError(domain.KindInvalidInput, "provide either claim or url, not both", nil)
	case rawURL != "":
		if s.transcriber == nil {
			return domain.Claim{}, "", domain.NewError(domain.KindUnavailable, "video transcription is not configured", nil)
		}
		return domain.Claim{}, rawURL, nil
	}

	if n := utf8.RuneCountInString(text); n > MaxClaimRunes {
		return domain.Claim{}, "", domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("claim is %d characters, the limit is %d", n, MaxClaimRunes), nil)
	}
	return domain.Claim{Text: text}, "", nil
}

func resolveSearchOptions(opts domain.SearchOptions) (domain.SearchOptions, error) {
	if opts == (domain.SearchOptions{}) {
		return retrieval.DefaultOptions(), nil
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = retrieval.DefaultMaxResults
	}
	if err := retrieval.ValidateOptions(opts); err != nil {
		return domain.SearchOptions{}, err
	}
	return opts, nil
}

// fanOut verifies every claim concurrently. Tasks never return an error, so
// one failing claim cannot cancel its siblings. If ctx expires first the
// in-flight tasks are abandoned and PipelineTimeout is returned.
func (s *PipelineService) fanOut(ctx context.Context, claims []domain.Claim, opts domain.SearchOptions) ([]domain.ClaimOutcome, error) {
	outcomes := make([]domain.ClaimOutcome, len(claims))

	var g errgroup.Group
	if s.cfg.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.MaxConcurrency)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, c := range claims {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				outcomes[i] = s.verifyClaim(ctx, i, c, opts)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		if err := ctx.Err(); err != nil {
			return nil, s.timeoutError(err)
		}
		return outcomes, nil
	case <-ctx.Done():
		return nil, s.timeoutError(ctx.Err())
	}
}

func (s *PipelineService) verifyClaim(ctx context.Context, index int, claim domain.Claim, opts domain.SearchOptions) (outcome domain.ClaimOutcome) {
	var evidence []domain.EvidenceItem
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("claim verification panicked",
				zap.Int("index", index),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			outcome = degradedOutcome(index, claim, evidence, fmt.Errorf("verification panicked: %v", r))
		}
	}()

	if s.cfg.ClaimTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ClaimTimeout)
		defer cancel()
	}

	items, err := s.retriever.Search(ctx, claim.Text, opts)
	if err != nil {
		s.logger.Warn("evidence retrieval failed",
			zap.Int("index", index),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return degradedOutcome(index, claim, nil, err)
	}
	evidence = items

	var verdict domain.Verdict
	if len(items) == 0 {
		verdict = domain.NoEvidenceVerdict()
	} else {
		verdict = s.synthesizer.Synthesize(ctx, claim, items)
	}

	return domain.ClaimOutcome{
		Index:             index,
		Claim:             claim,
		Status:            domain.OutcomeOK,
		Verdict:           verdict,
		Confidence:        retrieval.Confidence(items),
		TopSimilarity:     retrieval.TopSimilarity(items),
		AverageSimilarity: retrieval.AverageSimilarity(items),
		Citations:         Citations(items),
	}
}

func degradedOutcome(index int, claim domain.Claim, items []domain.EvidenceItem, err error) domain.ClaimOutcome {
	return domain.ClaimOutcome{
		Index:             index,
		Claim:             claim,
		Status:            domain.OutcomeDegraded,
		Verdict:           domain.FailedVerdict(),
		Confidence:        retrieval.Confidence(items),
		TopSimilarity:     retrieval.TopSimilarity(items),
		AverageSimilarity: retrieval.AverageSimilarity(items),
		Citations:         Citations(items),
		Error:             err.Error(),
	}
}

// stageError maps a pre-fan-out failure. Our own deadline wins over whatever
// kind the stage reported.
func (s *PipelineService) stageError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return s.timeoutError(err)
	}
	return err
}

func (s *PipelineService) timeoutError(cause error) error {
	return domain.NewError(domain.KindPipelineTimeout,
		fmt.Sprintf("request did not complete within %s", s.cfg.Timeout), cause)
}

func (s *PipelineService) since(t time.Time) int64 {
	return s.now().Sub(t).Milliseconds()
}
