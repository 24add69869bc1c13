package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
)

// SecretStore holds the rotating credential pair of each scope.
type SecretStore interface {
	AccessLatest(ctx context.Context, secretID string) ([]byte, error)
	AddVersion(ctx context.Context, secretID string, data []byte) error
}

type storedCredential struct {
	RefreshKey string `json:"refresh_key"`
	AccessKey  string `json:"access_key"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Provider exchanges the stored refresh token for a new access token and
// writes the rotated pair back to the secret store.
type Provider struct {
	mu        sync.Mutex
	secrets   SecretStore
	rest      *resty.Client
	tokenURL  string
	secretIDs map[string]string
}

// NewProvider builds a provider; secretIDs maps a country or region key to its secret.
func NewProvider(secrets SecretStore, tokenURL string, timeout time.Duration, secretIDs map[string]string) *Provider {
	return &Provider{
		secrets:   secrets,
		rest:      resty.New().SetTimeout(timeout),
		tokenURL:  tokenURL,
		secretIDs: secretIDs,
	}
}

// Keys lists every scope the provider can rotate.
func (p *Provider) Keys() []string {
	keys := make([]string, 0, len(p.secretIDs))
	for k := range p.secretIDs {
		keys = append(keys, k)
	}
	return keys
}

// Refresh rotates the credential of key and returns the new access token.
// Refresh tokens are single-use, so rotations are serialized.
func (p *Provider) Refresh(ctx context.Context, key string) (string, error) {
	secretID, ok := p.secretIDs[key]
	if !ok {
		return "", fmt.Errorf("no secret configured for %s", key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.secrets.AccessLatest(ctx, secretID)
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", secretID, err)
	}

	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return "", fmt.Errorf("failed to parse secret %s: %w", secretID, err)
	}
	if cred.RefreshKey == "" {
		return "", errors.New("stored credential has no refresh key")
	}

	resp, err := p.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": cred.RefreshKey,
		}).
		Post(p.tokenURL)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return "", errors.New("token response is missing access or refresh token")
	}

	rotated, err := json.Marshal(storedCredential{RefreshKey: tok.RefreshToken, AccessKey: tok.AccessToken})
	if err != nil {
		return "", err
	}
	if err := p.secrets.AddVersion(ctx, secretID, rotated); err != nil {
		return "", fmt.Errorf("failed to store rotated credential %s: %w", secretID, err)
	}

	log.Infof("[Token] Rotated credential for %s", key)
	return tok.AccessToken, nil
}

// ScopeSecretIDs maps every supported country and the region scope to its secret.
func ScopeSecretIDs() map[string]string {
	ids := make(map[string]string, len(consts.Countries)+1)
	for key, scope := range consts.Countries {
		ids[key] = scope.SecretID
	}
	ids[consts.RegionKey] = consts.Region.SecretID
	return ids
}
