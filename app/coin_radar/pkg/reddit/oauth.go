package reddit

import (
	"context"
	"encoding/json"
	"fmt"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken 使用 client_credentials 获取应用令牌，单次运行内复用
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" {
		return c.token, nil
	}
	if c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return "", fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set")
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(c.opts.PublicBaseURL + "/api/v1/access_token")
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("token endpoint error (status %d)", res.StatusCode())
	}

	var tr tokenResponse
	if err := json.Unmarshal(res.Body(), &tr); err != nil {
		return "", fmt.Errorf("decode token failed: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}

	c.token = tr.AccessToken
	return c.token, nil
}
