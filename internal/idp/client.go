package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lestrrat-go/jwx/jwk"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// talks to the external identity provider (google)
type Client struct {
	config     Config
	oauth      *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	keys       *jwk.AutoRefresh
	now        func() time.Time
}

// creates a provider client; ctx bounds the lifetime of the background JWKS refresher
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("provider client id not set")
	}

	cfg = cfg.withDefaults()

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}

	keys := jwk.NewAutoRefresh(ctx)
	keys.Configure(cfg.JWKSURL,
		jwk.WithHTTPClient(httpClient),
		jwk.WithMinRefreshInterval(minJWKSRefreshInterval),
	)

	return &Client{
		config: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       defaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		keys:       keys,
		now:        time.Now,
	}, nil
}

// builds the consent url the browser is sent to
func (c *Client) AuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// trades an authorization code for provider tokens with a single POST
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrProviderRejected)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrProviderUnreachable, err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access token", ErrProviderRejected)
	}

	return token, nil
}

// fetches the profile behind an access token with a single GET
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrProviderUnreachable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck
		return nil, fmt.Errorf("%w: userinfo status %d: %s", ErrProviderRejected, resp.StatusCode, string(body))
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo: %v", ErrProviderRejected, err)
	}

	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo missing id or email", ErrProviderRejected)
	}

	if !info.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &Profile{
		Subject:       info.ID,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: true,
	}, nil
}

// transport failures and timeouts are unreachable, everything else is a rejection
func classifyTransportError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return fmt.Errorf("%w: token endpoint status %d: %s", ErrProviderRejected, status, retrieveErr.ErrorCode)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderRejected, err)
}
