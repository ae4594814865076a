package transcript

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

const (
	DefaultMaxAudioBytes int64 = 25 << 20
	defaultYTDLP               = "yt-dlp"
	defaultFFmpeg              = "ffmpeg"
)

// Acquirer downloads the audio track behind a video URL into dir and returns
// the path and size of a file ready for speech-to-text.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL, dir string) (path string, size int64, err error)
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// YTDLPAcquirer fetches audio with yt-dlp and converts it to mono 16 kHz MP3 with ffmpeg.
type YTDLPAcquirer struct {
	ytdlpBinary   string
	ffmpegBinary  string
	maxBytes      int64
	commandRunner commandRunner
}

func NewYTDLPAcquirer(ytdlpBinary, ffmpegBinary string, maxBytes int64) *YTDLPAcquirer {
	if ytdlpBinary == "" {
		ytdlpBinary = defaultYTDLP
	}
	if ffmpegBinary == "" {
		ffmpegBinary = defaultFFmpeg
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAudioBytes
	}
	return &YTDLPAcquirer{
		ytdlpBinary:  ytdlpBinary,
		ffmpegBinary: ffmpegBinary,
		maxBytes:     maxBytes,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *YTDLPAcquirer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	a.commandRunner = runner
}

func (a *YTDLPAcquirer) Acquire(ctx context.Context, rawURL, dir string) (string, int64, error) {
	template := filepath.Join(dir, "source.%(ext)s")
	if err := a.run(ctx, a.ytdlpBinary, buildYTDLPArgs(rawURL, template, a.maxBytes)...); err != nil {
		return "", 0, classifyDownloadError(rawURL, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "source.*"))
	if err != nil || len(matches) == 0 {
		return "", 0, domain.NewError(domain.KindPrivateOrUnavailable, "no audio was downloaded for "+rawURL, err)
	}

	dest := filepath.Join(dir, "audio.mp3")
	if err := a.run(ctx, a.ffmpegBinary, buildFFmpegArgs(matches[0], dest)...); err != nil {
		return "", 0, domain.NewError(domain.KindUnavailable, "audio conversion failed", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return "", 0, domain.NewError(domain.KindUnavailable, "converted audio is missing", err)
	}
	if info.Size() > a.maxBytes {
		return "", 0, domain.NewError(domain.KindSizeLimitExceeded,
			fmt.Sprintf("audio is %d bytes, limit is %d", info.Size(), a.maxBytes), nil)
	}
	return dest, info.Size(), nil
}

func buildYTDLPArgs(rawURL, outputTemplate string, maxBytes int64) []string {
	return []string{
		"--no-playlist",
		"--no-progress",
		"--quiet",
		"-f", "bestaudio/best",
		"--max-filesize", fmt.Sprintf("%d", maxBytes*4),
		"-o", outputTemplate,
		rawURL,
	}
}

func buildFFmpegArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "64k",
		dest,
	}
}

// classifyDownloadError maps yt-dlp diagnostics onto error kinds.
func classifyDownloadError(rawURL string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "private"),
		strings.Contains(msg, "login required"),
		strings.Contains(msg, "sign in"),
		strings.Contains(msg, "not available"),
		strings.Contains(msg, "unavailable"):
		return domain.NewError(domain.KindPrivateOrUnavailable, "video is private or unavailable: "+rawURL, err)
	case strings.Contains(msg, "404"),
		strings.Contains(msg, "not found"),
		strings.Contains(msg, "does not exist"):
		return domain.NewError(domain.KindNotFound, "video not found: "+rawURL, err)
	case strings.Contains(msg, "larger than max-filesize"),
		strings.Contains(msg, "file is larger"):
		return domain.NewError(domain.KindSizeLimitExceeded, "video audio exceeds the size limit", err)
	default:
		return domain.NewError(domain.KindUnavailable, "audio download failed", err)
	}
}

// run executes a command, using the custom runner if set.
func (a *YTDLPAcquirer) run(ctx context.Context, name string, args ...string) error {
	if a.commandRunner != nil {
		return a.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
