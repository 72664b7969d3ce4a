package githubapi

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AppAuth mints installation access tokens for GitHub App credentials, as an
// alternative to a pre-issued token.
type AppAuth struct {
	// AppID is the numeric GitHub App identifier.
	AppID string
	// InstallationID selects the installation to act as.
	InstallationID string
	// PrivateKey is the PEM-encoded RSA signing key of the App.
	PrivateKey []byte
	// APIURL overrides the REST endpoint; empty means api.github.com.
	APIURL string
}

// InstallationToken generates an App JWT and exchanges it for an
// installation access token.
func (a *AppAuth) InstallationToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(a.AppID) == "" || strings.TrimSpace(a.InstallationID) == "" {
		return "", fmt.Errorf("github app credentials are incomplete")
	}
	jwtToken, err := a.generateJWT()
	if err != nil {
		return "", err
	}

	apiURL := strings.TrimSuffix(a.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", apiURL, a.InstallationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange installation token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode installation token response: %w", err)
	}
	return result.Token, nil
}

// generateJWT creates a short-lived signed JWT for App authentication.
func (a *AppAuth) generateJWT() (string, error) {
	privateKey, err := parseRSAPrivateKey(a.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("parse github app private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		// Backdated a minute to absorb clock skew against GitHub.
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    a.AppID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("sign github app jwt: %w", err)
	}
	return signed, nil
}

// parseRSAPrivateKey parses a PEM-encoded RSA private key in PKCS#1 or PKCS#8 form.
func parseRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return rsaKey, nil
}
