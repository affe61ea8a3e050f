package generation

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"
)

const startupWait = 10 * time.Second

// startLocal launches `ollama serve` in the background and waits for it to
// answer. With a cache dir set, the daemon stores model weights there.
func (o *OllamaBackend) startLocal(ctx context.Context) error {
	path, err := exec.LookPath("ollama")
	if err != nil {
		return fmt.Errorf("%w: ollama executable not found in PATH", ErrBackendUnavailable)
	}

	cmd := exec.Command(path, "serve")
	cmd.Env = os.Environ()
	if o.cacheDir != "" {
		if err := os.MkdirAll(o.cacheDir, 0o755); err != nil {
			return fmt.Errorf("create model cache dir: %w", err)
		}
		cmd.Env = append(cmd.Env, "OLLAMA_MODELS="+o.cacheDir)
	}
	if u := o.hostPort(); u != "" {
		cmd.Env = append(cmd.Env, "OLLAMA_HOST="+u)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ollama (path: %s): %w", path, err)
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	deadline := time.Now().Add(startupWait)
	var lastErr error
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		checkCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		lastErr = o.Ping(checkCtx)
		cancel()
		if lastErr == nil {
			o.logger.Info().Msg("Ollama server started")
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("ollama started but not responding after %s: %w", startupWait, lastErr)
}

func (o *OllamaBackend) hostPort() string {
	u, err := url.Parse(o.baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
