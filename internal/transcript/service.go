// Package transcript turns a social-media video URL into a bounded transcript.
package transcript

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Config controls validation and the scratch area.
type Config struct {
	Platforms  []string
	MaxWords   int
	ScratchDir string
}

// Service validates a URL, acquires its audio into a per-call scratch
// directory, transcribes it and applies the word limit.
type Service struct {
	acquirer  Acquirer
	stt       SpeechToText
	cfg       Config
	logger    *zap.Logger
	removeAll func(string) error
}

func NewService(acquirer Acquirer, stt SpeechToText, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = MaxWords
	}
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = DefaultPlatforms
	}
	return &Service{
		acquirer:  acquirer,
		stt:       stt,
		cfg:       cfg,
		logger:    logger,
		removeAll: os.RemoveAll,
	}
}

func (s *Service) Transcribe(ctx context.Context, rawURL string) (*domain.Transcript, error) {
	u, err := ValidateURL(rawURL, s.cfg.Platforms)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(s.cfg.ScratchDir, "fitcheck-*")
	if err != nil {
		return nil, domain.NewError(domain.KindUnavailable, "create scratch directory", err)
	}
	defer func() {
		if err := s.removeAll(dir); err != nil {
			s.logger.Warn("failed to remove scratch directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	path, size, err := s.acquirer.Acquire(ctx, u.String(), dir)
	if err != nil {
		return nil, asKind(err, domain.KindUnavailable, "acquire audio")
	}
	s.logger.Info("audio acquired", zap.String("host", u.Hostname()), zap.Int64("bytes", size))

	text, err := s.stt.TranscribeFile(ctx, path)
	if err != nil {
		return nil, asKind(err, domain.KindUnavailable, "transcribe audio")
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewError(domain.KindEmptyTranscript, "no speech was recognized in the video", nil)
	}

	words := len(strings.Fields(text))
	truncated, cut := Truncate(text, s.cfg.MaxWords)
	if cut {
		s.logger.Info("transcript truncated", zap.Int("words", words), zap.Int("limit", s.cfg.MaxWords))
	}

	return &domain.Transcript{
		Text:            truncated,
		SourceSizeBytes: size,
		WordCount:       words,
		Truncated:       cut,
	}, nil
}

// asKind keeps a classified error as is and wraps anything else in kind.
func asKind(err error, kind domain.ErrorKind, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewError(domain.KindTimeout, msg, err)
	}
	return domain.NewError(kind, msg, err)
}
