package soundenc

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

// Executor runs the encoder binaries.
type Executor = toolexec.Executor

// Request describes one mod audio file to encode.
type Request struct {
	// Source is the mod audio file on disk.
	Source string
	// Key names the archive entry being replaced; it becomes the output
	// file's base name.
	Key string
	// Extension is the suffix of the archive entry (".opus").
	Extension string
	Loop      Loop
}

// Encoder produces an archive-ready payload for a request.
type Encoder interface {
	Encode(ctx context.Context, req Request) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger routes tool output and progress to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client runs ffmpeg and opusenc.
type Client struct {
	ffmpeg  string
	opusenc string
	workDir string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs an encoder client. Temporary directories are created under
// workDir; timeoutSeconds bounds each Encode call (0 disables the limit).
func New(ffmpeg, opusenc, workDir string, timeoutSeconds int, opts ...Option) (*Client, error) {
	ffmpeg = strings.TrimSpace(ffmpeg)
	opusenc = strings.TrimSpace(opusenc)
	if ffmpeg == "" || opusenc == "" {
		return nil, errors.New("ffmpeg and opusenc binaries required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory required")
	}
	client := &Client{
		ffmpeg:  ffmpeg,
		opusenc: opusenc,
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

// NewFromConfig builds a client from the [sounds] and [paths] sections.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return New(cfg.Sounds.FFmpegBinary, cfg.Sounds.OpusencBinary, cfg.Paths.WorkDir, cfg.Sounds.EncodeTimeout, opts...)
}

// Encode converts req.Source to WAV when needed, encodes it with opusenc and
// returns the encoded bytes. Tool failures are reported as ErrExternalTool.
func (c *Client) Encode(ctx context.Context, req Request) ([]byte, error) {
	if req.Source == "" || req.Key == "" {
		return nil, services.Wrap(services.ErrValidation, "soundenc", "encode", "source and key required", nil)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "soundenc", "prepare work dir", c.workDir, err)
	}
	dir := filepath.Join(c.workDir, workdir.EncodePrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, services.Wrap(services.ErrIO, "soundenc", "prepare work dir", c.workDir, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("failed to remove encoder temp dir",
				logging.String("path", dir),
				logging.Error(err),
				logging.String(logging.FieldEventType, "encode_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	wav := filepath.Join(dir, "input.wav")
	if strings.EqualFold(filepath.Ext(req.Source), ".wav") {
		if err := fileutil.CopyFile(req.Source, wav); err != nil {
			return nil, services.Wrap(services.ErrIO, "soundenc", "stage wav", req.Source, err)
		}
	} else {
		args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", req.Source, "-f", "wav", wav}
		if err := c.run(ctx, c.ffmpeg, args); err != nil {
			return nil, err
		}
	}

	ext := req.Extension
	if ext == "" {
		ext = ".opus"
	}
	out := filepath.Join(dir, req.Key+ext)
	args := append(req.Loop.Args(), wav, out)
	if err := c.run(ctx, c.opusenc, args); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "soundenc", "opusenc", "no output produced", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "soundenc", "opusenc", "empty output", nil)
	}
	c.logger.Debug("sound encoded",
		logging.String("source", req.Source),
		logging.String("key", req.Key),
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "sound_encoded"),
	)
	return data, nil
}

func (c *Client) run(ctx context.Context, binary string, args []string) error {
	return toolexec.Run(ctx, c.exec, c.logger, "soundenc", binary, args)
}
