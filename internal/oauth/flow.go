package oauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCallbackAddr = "localhost:8080"

// callbackResult carries the outcome of the provider redirect.
type callbackResult struct {
	code string
	err  error
}

// Authorize runs the interactive authorization-code flow: it opens the
// provider's consent page in the browser, waits for the redirect on the
// app's redirect URI, and exchanges the received code for a token.
//
// The flow honors ctx for cancellation; without a caller deadline it gives
// up after two minutes, matching how long a human plausibly takes.
func Authorize(ctx context.Context, exchanger *Exchanger, scopes []string, usePKCE bool, logger *zap.Logger) (*Token, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
	}

	var pkce *PKCE
	if usePKCE {
		var err error
		if pkce, err = NewPKCE(); err != nil {
			return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
		}
	}

	addr, err := callbackAddr(exchanger.app.RedirectURI)
	if err != nil {
		return nil, err
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var result callbackResult
		var message string
		switch {
		case query.Get("error") != "":
			result.err = fmt.Errorf("authorization failed: %s", query.Get("error"))
			message = fmt.Sprintf("Authentication error: %s. You can close this window.", query.Get("error"))
		case query.Get("code") == "":
			result.err = fmt.Errorf("no code or error received in callback")
			message = "Authentication failed. You can close this window."
		case query.Get("state") != state:
			result.err = fmt.Errorf("state mismatch in callback")
			message = "Authentication failed. You can close this window."
		default:
			result.code = query.Get("code")
			message = "Authentication successful! You can close this window."
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><h1>%s</h1></body></html>", message)

		select {
		case results <- result:
		default:
		}
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		_ = srv.Serve(listener)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := exchanger.AuthCodeURL(state, scopes, pkce)
	logger.Info("opening browser for authorization",
		zap.String("callback", addr))

	if err := openBrowser(authURL); err != nil {
		logger.Warn("failed to open browser, authorize manually",
			zap.String("url", authURL), zap.Error(err))
	}

	select {
	case <-ctx.Done():
		return nil, ErrFlowTimeout
	case result := <-results:
		if result.err != nil {
			return nil, result.err
		}
		return exchanger.ExchangeCode(ctx, result.code, pkce)
	}
}

// callbackAddr derives the listen address from the app's redirect URI.
func callbackAddr(redirectURI string) (string, error) {
	if redirectURI == "" {
		return defaultCallbackAddr, nil
	}
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect_uri %q: %w", redirectURI, err)
	}
	host := parsed.Host
	if parsed.Port() == "" {
		host = net.JoinHostPort(parsed.Hostname(), "80")
	}
	return host, nil
}

// openBrowser opens the given URL in the default browser.
func openBrowser(target string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("xdg-open not found in PATH: %w", err)
		}
		cmd = "xdg-open"
		args = []string{target}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return exec.Command(cmd, args...).Start()
}
