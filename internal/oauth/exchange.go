package oauth

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gumcp/gumcp-go/internal/config"

	"go.uber.org/zap"
)

// Endpoints holds a provider's OAuth endpoint pair.
type Endpoints struct {
	AuthURL  string
	TokenURL string
}

// Exchanger performs authorization-code exchange and refresh-token renewal
// against one provider's token endpoint.
type Exchanger struct {
	app       *config.OAuthApp
	endpoints Endpoints

	// Some providers return no refresh_token on renewal; when set, the
	// prior refresh token is carried over instead of being dropped. This
	// is declared per provider, never inferred from responses.
	reuseRefreshToken bool

	httpClient *http.Client
	logger     *zap.Logger
}

// ExchangerOption configures an Exchanger.
type ExchangerOption func(*Exchanger)

// WithReuseRefreshToken declares that the provider omits refresh_token on
// renewal and the prior one remains valid.
func WithReuseRefreshToken() ExchangerOption {
	return func(e *Exchanger) {
		e.reuseRefreshToken = true
	}
}

// WithHTTPClient overrides the HTTP client used for token endpoint calls.
func WithHTTPClient(client *http.Client) ExchangerOption {
	return func(e *Exchanger) {
		e.httpClient = client
	}
}

// WithLogger attaches a logger to the exchanger.
func WithLogger(logger *zap.Logger) ExchangerOption {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

// NewExchanger creates an exchanger bound to one provider's app config and
// endpoints.
func NewExchanger(app *config.OAuthApp, endpoints Endpoints, opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		app:       app,
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReusesRefreshToken reports whether renewals carry the prior refresh token
// forward when the response omits one.
func (e *Exchanger) ReusesRefreshToken() bool {
	return e.reuseRefreshToken
}

// AuthCodeURL builds the provider authorization URL for the interactive flow.
func (e *Exchanger) AuthCodeURL(state string, scopes []string, pkce *PKCE) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", e.app.ClientID)
	params.Set("redirect_uri", e.app.RedirectURI)
	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}
	if state != "" {
		params.Set("state", state)
	}
	if pkce != nil {
		params.Set("code_challenge", pkce.Challenge())
		params.Set("code_challenge_method", "S256")
	}
	return e.endpoints.AuthURL + "?" + params.Encode()
}

// ExchangeCode performs the one-shot authorization-code to token exchange.
// Non-2xx responses fail with an ExchangeError carrying the provider body.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string, pkce *PKCE) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", e.app.ClientID)
	data.Set("client_secret", e.app.ClientSecret)
	data.Set("redirect_uri", e.app.RedirectURI)
	if pkce != nil {
		data.Set("code_verifier", pkce.Verifier)
	}

	e.logger.Debug("exchanging authorization code",
		zap.String("token_url", e.endpoints.TokenURL),
		zap.String("client_id", MaskSecret(e.app.ClientID)))

	return e.post(ctx, "exchange_code", data)
}

// Refresh renews an access token using a refresh token. A failed refresh is
// surfaced immediately so the caller can fall back to interactive re-auth.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", e.app.ClientID)
	data.Set("client_secret", e.app.ClientSecret)

	e.logger.Debug("refreshing access token",
		zap.String("token_url", e.endpoints.TokenURL),
		zap.String("client_id", MaskSecret(e.app.ClientID)))

	token, err := e.post(ctx, "refresh", data)
	if err != nil {
		return nil, err
	}

	if token.RefreshToken == "" && e.reuseRefreshToken {
		token.RefreshToken = refreshToken
	}

	return token, nil
}

func (e *Exchanger) post(ctx context.Context, op string, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoints.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExchangeError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return parseTokenResponse(body)
}
