// Package github implements the external login collaborator: the GitHub
// OAuth code exchange and the user-info lookup. The rest of the system only
// ever sees the verified Identity it produces.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githubep "golang.org/x/oauth2/github"
)

// Identity is a verified GitHub identity, the input to find-or-create-user.
type Identity struct {
	// ID is GitHub's stable numeric account id, rendered as a string. It is
	// the external-identity key for whitelist and user records; logins can
	// be renamed, ids cannot.
	ID        string
	Username  string
	AvatarURL string
}

type Client struct {
	// OAuth is exported so tests can point it at a stub server.
	OAuth *oauth2.Config

	// APIBaseURL defaults to the public GitHub API.
	APIBaseURL string
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user"},
			Endpoint:     githubep.Endpoint,
		},
		APIBaseURL: "https://api.github.com",
	}
}

// AuthCodeURL returns the GitHub authorize URL for a login redirect.
func (c *Client) AuthCodeURL(state string) string {
	return c.OAuth.AuthCodeURL(state)
}

type userResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// ExchangeCode swaps an authorization code for an access token and fetches
// the authenticated user, returning the verified identity.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Identity, error) {
	token, err := c.OAuth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("github: code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/user", nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("github: user lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("github: user lookup status %d: %s", resp.StatusCode, detail)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, fmt.Errorf("github: decoding user: %w", err)
	}
	if user.ID == 0 {
		return Identity{}, fmt.Errorf("github: user response missing id")
	}

	return Identity{
		ID:        strconv.FormatInt(user.ID, 10),
		Username:  user.Login,
		AvatarURL: user.AvatarURL,
	}, nil
}
