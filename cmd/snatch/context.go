package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"snatch/internal/config"
)

type commandContext struct {
	serverFlag *string
	keyFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	httpClient *http.Client
}

func newCommandContext(serverFlag, keyFlag, configFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		keyFlag:    keyFlag,
		configFlag: configFlag,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// serverURL resolves the daemon base URL from the --server flag or the
// configured API bind address.
func (c *commandContext) serverURL() (string, error) {
	if c.serverFlag != nil {
		if flag := strings.TrimSpace(*c.serverFlag); flag != "" {
			return strings.TrimRight(flag, "/"), nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return "http://" + cfg.Paths.APIBind, nil
}

func (c *commandContext) secretKey() (string, error) {
	if c.keyFlag != nil {
		if flag := strings.TrimSpace(*c.keyFlag); flag != "" {
			return flag, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Server.SecretKey, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// getJSON performs a GET against the daemon and decodes the envelope's
// data payload into out. Query may be nil; out may be nil when the
// caller only cares about the message.
func (c *commandContext) getJSON(path string, query url.Values, out any) (string, error) {
	base, err := c.serverURL()
	if err != nil {
		return "", err
	}
	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	resp, err := c.httpClient.Get(target)
	if err != nil {
		return "", wrapDialError(err, base)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

// uploadFile posts a single multipart file field to the daemon.
func (c *commandContext) uploadFile(path string, query url.Values, field, filename string) (string, error) {
	base, err := c.serverURL()
	if err != nil {
		return "", err
	}

	f, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart form: %w", err)
	}

	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	resp, err := c.httpClient.Post(target, writer.FormDataContentType(), strings.NewReader(body.String()))
	if err != nil {
		return "", wrapDialError(err, base)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, nil)
}

func decodeEnvelope(resp *http.Response, out any) (string, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" && len(env.Errors) > 0 {
			msg = string(env.Errors)
		}
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("daemon returned %d: %s", resp.StatusCode, msg)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Message, nil
}

func wrapDialError(err error, base string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("connect to daemon at %s: %v; verify snatchd is running", base, urlErr.Err)
	}
	return fmt.Errorf("connect to daemon at %s: %w", base, err)
}
