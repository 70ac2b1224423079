package feishu

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

const tokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

type tokenSource struct {
	ctx    context.Context
	cfg    Config
	client *http.Client
}

// NewTokenSource returns an oauth2.TokenSource that exchanges the app id and secret
// for a tenant access token on every call to Token.
func NewTokenSource(ctx context.Context, cfg Config, client *http.Client) oauth2.TokenSource {
	cfg.BaseURL = baseURL(cfg.BaseURL)

	return &tokenSource{
		ctx:    ctx,
		cfg:    cfg,
		client: client,
	}
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	if strings.TrimSpace(s.cfg.AppID) == "" || strings.TrimSpace(s.cfg.AppSecret) == "" {
		return nil, errors.Wrap(ErrAuth, "missing app id or app secret")
	}

	rq := struct {
		AppID     string `json:"app_id"`
		AppSecret string `json:"app_secret"`
	}{
		AppID:     s.cfg.AppID,
		AppSecret: s.cfg.AppSecret,
	}

	// the token endpoint replies at the top level rather than under 'data'
	var reply struct {
		Code   int    `json:"code"`
		Msg    string `json:"msg"`
		Token  string `json:"tenant_access_token"`
		Expire int    `json:"expire"`
	}

	raw, status, err := call(s.ctx, s.client, http.MethodPost, s.cfg.BaseURL+tokenPath, rq)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "tenant access token"), ErrAuth)
	}

	if err := sonic.Unmarshal(raw, &reply); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "tenant access token (status %d)", status), ErrAuth)
	}

	if reply.Code != 0 {
		return nil, errors.Mark(&APIError{Code: reply.Code, Msg: reply.Msg}, ErrAuth)
	}

	if reply.Token == "" {
		return nil, errors.Wrap(ErrAuth, "empty tenant access token")
	}

	token := oauth2.Token{
		AccessToken: reply.Token,
		TokenType:   "Bearer",
	}

	if reply.Expire > 0 {
		token.Expiry = time.Now().Add(time.Duration(reply.Expire) * time.Second)
	}

	return &token, nil
}
