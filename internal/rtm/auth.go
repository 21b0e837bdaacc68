package rtm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"mtask/internal/rtm/model"
)

// Perms is an access level an application can request.
type Perms string

// Permission levels. Each includes the ones before it.
const (
	PermsRead   Perms = "read"
	PermsWrite  Perms = "write"
	PermsDelete Perms = "delete"
)

// ParsePerms validates a permission level name.
func ParsePerms(s string) (Perms, error) {
	switch p := Perms(s); p {
	case PermsRead, PermsWrite, PermsDelete:
		return p, nil
	}
	return "", fmt.Errorf("invalid perms %q (want read, write or delete)", s)
}

// TokenType is the oauth2.Token type given to API tokens.
const TokenType = "rtm"

// State is the position of a client in the authentication handshake.
type State int

// Handshake states.
const (
	StateNoFrob State = iota
	StateHasFrob
	StateHasToken
)

func (s State) String() string {
	switch s {
	case StateNoFrob:
		return "no frob"
	case StateHasFrob:
		return "has frob"
	case StateHasToken:
		return "has token"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// State reports the cached handshake state. A configured token source that
// has not been consulted yet does not count as a token.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.token != nil && c.token.AccessToken != "":
		return StateHasToken
	case c.frob != "":
		return StateHasFrob
	}
	return StateNoFrob
}

// Frob returns the cached frob, requesting one with rtm.auth.getFrob on
// first use.
func (c *Client) Frob(ctx context.Context) (string, error) {
	c.mu.Lock()
	frob := c.frob
	c.mu.Unlock()
	if frob != "" {
		return frob, nil
	}

	frob, err := invoke[string](ctx, c, "rtm.auth.getFrob", nil)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.frob = frob
	c.mu.Unlock()
	return frob, nil
}

// AuthURL returns the signed URL where the user approves the frob. The URL
// is built locally and never fetched.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	frob, err := c.Frob(ctx)
	if err != nil {
		return "", err
	}
	q := NewQuery()
	q.Set("api_key", c.apiKey)
	q.Set("perms", string(c.perms))
	q.Set("frob", frob)
	q.Set("api_sig", Sign(c.secret, q))
	return c.authEndpoint + "?" + EncodeQuery(q), nil
}

// Token returns the user's token. It is taken, in order, from the cache, the
// configured token source, or an rtm.auth.getToken exchange of the frob.
// The result is cached for the client's lifetime; failures are not.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	token, ts := c.token, c.tokenSource
	c.mu.Unlock()
	if token != nil && token.AccessToken != "" {
		return token, nil
	}

	var err error
	if ts != nil {
		token, err = ts.Token()
		if err != nil {
			return nil, fmt.Errorf("rtm: token source: %w", err)
		}
	} else {
		token, err = c.exchangeFrob(ctx)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return token, nil
}

func (c *Client) exchangeFrob(ctx context.Context) (*oauth2.Token, error) {
	frob, err := c.Frob(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := invoke[model.Auth](ctx, c, "rtm.auth.getToken", Args{"frob": frob})
	if err != nil {
		return nil, err
	}
	return authToken(auth)
}

// CheckToken validates the current token with rtm.auth.checkToken.
func (c *Client) CheckToken(ctx context.Context) (model.Auth, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return model.Auth{}, err
	}
	return invoke[model.Auth](ctx, c, "rtm.auth.checkToken", Args{"auth_token": token.AccessToken})
}

// authToken converts the auth element into an oauth2.Token. API tokens do
// not expire, so Expiry stays zero.
func authToken(auth model.Auth) (*oauth2.Token, error) {
	if auth.Token == nil {
		return nil, &model.MalformedResponseError{Entity: "auth", Key: "token", Err: model.ErrMissingKey}
	}
	extra := map[string]any{"user_id": auth.User.ID}
	if auth.Perms != nil {
		extra["perms"] = *auth.Perms
	}
	if auth.User.Username != nil {
		extra["username"] = *auth.User.Username
	}
	token := &oauth2.Token{AccessToken: *auth.Token, TokenType: TokenType}
	return token.WithExtra(extra), nil
}

// IsPendingApproval reports whether err is the service rejecting a frob the
// user has not approved yet.
func IsPendingApproval(err error) bool {
	var rerr *RemoteRequestError
	return errors.As(err, &rerr) && rerr.Code == CodeInvalidFrob
}
