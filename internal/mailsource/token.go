package mailsource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

const (
	graphScope = "https://graph.microsoft.com/.default"
	// tokenSkew renews a cached token this long before it expires.
	tokenSkew = 5 * time.Minute
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// CredentialTokens caches bearer tokens issued by an Azure credential.
type CredentialTokens struct {
	cred    azcore.TokenCredential
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	token azcore.AccessToken
}

func NewCredentialTokens(cred azcore.TokenCredential, timeout time.Duration) *CredentialTokens {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CredentialTokens{cred: cred, timeout: timeout, now: time.Now}
}

// NewClientSecretTokens builds a client-credentials token source for a
// tenant's app registration.
func NewClientSecretTokens(tenantID, clientID, secret string, timeout time.Duration) (*CredentialTokens, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("creating graph credential: %w", err)
	}

	return NewCredentialTokens(cred, timeout), nil
}

func (c *CredentialTokens) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Token != "" && c.now().Add(tokenSkew).Before(c.token.ExpiresOn) {
		return c.token.Token, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{graphScope}})
	if err != nil {
		var authErr *azidentity.AuthenticationFailedError
		if errors.As(err, &authErr) && authErr.RawResponse != nil && authErr.RawResponse.StatusCode < 500 {
			return "", apperr.Fatal(fmt.Errorf("acquiring graph token: %w", err))
		}

		return "", apperr.Transient(fmt.Errorf("acquiring graph token: %w", err))
	}

	c.token = tok

	return tok.Token, nil
}
