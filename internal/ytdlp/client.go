package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"snatch/internal/media"
)

// Request describes one extraction invocation.
type Request struct {
	URL        string
	Site       string
	Kind       media.Kind
	Format     string
	Quality    string
	CookiePath string
	OutputPath string
}

// Result captures the outcome of a finished extraction process.
type Result struct {
	ExitCode int
	Stderr   string
	Err      error
}

// Ok reports whether the process exited successfully.
func (r Result) Ok() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Handle tracks a launched extraction until it exits.
type Handle interface {
	Wait() Result
}

// Executor abstracts process launching for the client.
type Executor interface {
	Start(ctx context.Context, binary string, args []string) (Handle, error)
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// commandExecutor launches processes using os/exec.
type commandExecutor struct{}

type commandHandle struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

func (h *commandHandle) Wait() Result {
	err := h.cmd.Wait()
	result := Result{Stderr: strings.TrimSpace(h.stderr.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = err
		}
	}
	return result
}

func (commandExecutor) Start(ctx context.Context, binary string, args []string) (Handle, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return &commandHandle{cmd: cmd, stderr: &stderr}, nil
}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited with code %d: %s", binary, exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("run %s: %w", binary, err)
	}
	return out, nil
}

// Client builds and launches yt-dlp invocations.
type Client struct {
	binary     string
	ffmpegPath string
	exec       Executor
}

// NewClient constructs a Client for the provided yt-dlp binary.
func NewClient(binary, ffmpegPath string) *Client {
	return newClient(binary, ffmpegPath, commandExecutor{})
}

// NewClientWithExecutor allows injecting a custom executor for testing.
func NewClientWithExecutor(binary, ffmpegPath string, exec Executor) *Client {
	if exec == nil {
		exec = commandExecutor{}
	}
	return newClient(binary, ffmpegPath, exec)
}

func newClient(binary, ffmpegPath string, exec Executor) *Client {
	return &Client{
		binary:     strings.TrimSpace(binary),
		ffmpegPath: strings.TrimSpace(ffmpegPath),
		exec:       exec,
	}
}

// BuildArgs assembles the yt-dlp argument list for a request. Video
// requests select a stream and merge container; audio requests extract
// and transcode. The URL is always the final argument.
func (c *Client) BuildArgs(req Request) ([]string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("request URL must not be empty")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, errors.New("request output path must not be empty")
	}

	var args []string
	switch req.Kind {
	case media.KindVideo:
		if !media.ValidFormat(media.KindVideo, req.Format) {
			return nil, fmt.Errorf("unsupported video format %q", req.Format)
		}
		// Quality tiers only apply to YouTube; the other sources rely
		// on format merging alone.
		if strings.EqualFold(req.Site, "youtube") {
			quality := req.Quality
			if quality == "" {
				quality = media.DefaultVideoQuality
			}
			selector, err := media.VideoSelector(quality)
			if err != nil {
				return nil, err
			}
			args = append(args, "-f", selector)
		}
		args = append(args, "--merge-output-format", req.Format)
	case media.KindAudio:
		if !media.ValidFormat(media.KindAudio, req.Format) {
			return nil, fmt.Errorf("unsupported audio format %q", req.Format)
		}
		args = append(args, "-x")
		if !strings.EqualFold(req.Site, "youtube") {
			args = append(args, "--no-playlist")
		}
		quality := req.Quality
		if quality == "" {
			quality = media.DefaultAudioQuality
		}
		if !media.ValidAudioQuality(quality) {
			return nil, fmt.Errorf("unknown audio quality %q", quality)
		}
		args = append(args,
			"--audio-quality", quality,
			"--audio-format", req.Format,
		)
	default:
		return nil, fmt.Errorf("unsupported media kind %q", req.Kind)
	}

	args = append(args, "--ffmpeg-location", c.ffmpegPath)
	if req.CookiePath != "" {
		args = append(args, "--cookies", req.CookiePath)
	}
	args = append(args, "-o", req.OutputPath, req.URL)
	return args, nil
}

// Start launches the extraction and returns a handle for its outcome.
func (c *Client) Start(ctx context.Context, req Request) (Handle, error) {
	if c.binary == "" {
		return nil, errors.New("yt-dlp binary not configured")
	}
	args, err := c.BuildArgs(req)
	if err != nil {
		return nil, err
	}
	return c.exec.Start(ctx, c.binary, args)
}

// Dump fetches the item's metadata as emitted by --dump-json.
func (c *Client) Dump(ctx context.Context, rawURL, cookiePath string) ([]byte, error) {
	if c.binary == "" {
		return nil, errors.New("yt-dlp binary not configured")
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("request URL must not be empty")
	}
	args := []string{"--dump-json", "--no-warnings"}
	if cookiePath != "" {
		args = append(args, "--cookies", cookiePath)
	}
	args = append(args, rawURL)
	return c.exec.Output(ctx, c.binary, args)
}

// Run launches the extraction and blocks until it exits. A non-zero
// exit is returned as an error carrying the captured stderr.
func (c *Client) Run(ctx context.Context, req Request) error {
	handle, err := c.Start(ctx, req)
	if err != nil {
		return err
	}
	result := handle.Wait()
	if result.Err != nil {
		return result.Err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("yt-dlp exited with code %d: %s", result.ExitCode, result.Stderr)
	}
	return nil
}
