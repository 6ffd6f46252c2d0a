package videoenc

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"furymod/internal/config"
	"furymod/internal/fileutil"
	"furymod/internal/logging"
	"furymod/internal/services"
	"furymod/internal/toolexec"
	"furymod/internal/workdir"
)

// Extension is the suffix of the game's cutscene files.
const Extension = ".ogv"

const videoFilter = "scale=1280:720:force_original_aspect_ratio=decrease," +
	"pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1"

// Request names a mod video and the game cutscene it replaces.
type Request struct {
	Source string
	Target string
}

// Encoder replaces req.Target with an encoded copy of req.Source.
type Encoder interface {
	Encode(ctx context.Context, req Request) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec toolexec.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger routes tool output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client runs ffmpeg.
type Client struct {
	ffmpeg  string
	workDir string
	timeout time.Duration
	exec    toolexec.Executor
	logger  *slog.Logger
}

// New constructs a video client.
func New(ffmpeg, workDir string, timeoutSeconds int, opts ...Option) (*Client, error) {
	ffmpeg = strings.TrimSpace(ffmpeg)
	if ffmpeg == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory required")
	}
	client := &Client{
		ffmpeg:  ffmpeg,
		workDir: workDir,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    toolexec.Command{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [sounds], [video] and [paths] sections.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return New(cfg.Sounds.FFmpegBinary, cfg.Paths.WorkDir, cfg.Video.EncodeTimeout, opts...)
}

// Args returns the ffmpeg arguments that encode src into the Ogg file out.
func Args(src, out string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-vf", videoFilter,
		"-r", "30000/1001",
		"-pix_fmt", "yuv420p",
		"-c:v", "libtheora", "-q:v", "8",
		"-c:a", "libvorbis", "-q:a", "4",
		"-ac", "2", "-ar", "48000",
		"-f", "ogg", out,
	}
}

// Encode converts req.Source and atomically replaces req.Target with the
// result. The target is untouched when ffmpeg fails.
func (c *Client) Encode(ctx context.Context, req Request) error {
	if req.Source == "" || req.Target == "" {
		return services.Wrap(services.ErrValidation, "videoenc", "encode", "source and target required", nil)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "videoenc", "prepare work dir", c.workDir, err)
	}
	dir := filepath.Join(c.workDir, workdir.VideoPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return services.Wrap(services.ErrIO, "videoenc", "prepare work dir", c.workDir, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("failed to remove video temp dir",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "encode_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	out := filepath.Join(dir, "cutscene"+Extension)
	if err := toolexec.Run(ctx, c.exec, c.logger, "videoenc", c.ffmpeg, Args(req.Source, out)); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "videoenc", "ffmpeg", "no output produced", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "videoenc", "ffmpeg", "empty output", nil)
	}
	if err := fileutil.CopyFile(out, req.Target); err != nil {
		return services.Wrap(services.ErrIO, "videoenc", "replace cutscene", req.Target, err)
	}
	c.logger.Debug("video encoded",
		logging.String("source", req.Source),
		logging.String("target", req.Target),
		logging.Int64("bytes", info.Size()),
		logging.String(logging.FieldEventType, "video_encoded"),
	)
	return nil
}
