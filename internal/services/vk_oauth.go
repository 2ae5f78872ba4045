package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/palmmap/palmmap/internal/config"
	"golang.org/x/oauth2"
)

const vkAPIVersion = "5.131"

var vkEndpoint = oauth2.Endpoint{
	AuthURL:  "https://oauth.vk.com/authorize",
	TokenURL: "https://oauth.vk.com/access_token",
}

// VKProfile is the identity extracted from a completed VK OAuth exchange.
// Email may be empty when the user denied the email scope.
type VKProfile struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// VKOAuthClient exchanges authorization codes against VK's OAuth endpoint
// and fetches the basic profile via the VK API.
type VKOAuthClient struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewVKOAuthClient(cfg *config.Config) *VKOAuthClient {
	return &VKOAuthClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.VKClientID,
			ClientSecret: cfg.VKClientSecret,
			RedirectURL:  cfg.VKRedirectURL,
			Scopes:       []string{"email"},
			Endpoint:     vkEndpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the VK authorization redirect for the given CSRF state.
func (c *VKOAuthClient) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and resolves the
// user's profile. VK returns user_id and email as token extras rather than
// inside an id_token.
func (c *VKOAuthClient) Exchange(code string) (*VKProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	profile := &VKProfile{}
	switch id := token.Extra("user_id").(type) {
	case float64:
		profile.UserID = strconv.FormatInt(int64(id), 10)
	case string:
		profile.UserID = id
	}
	if profile.UserID == "" {
		return nil, errors.New("token response missing user_id")
	}
	if email, ok := token.Extra("email").(string); ok {
		profile.Email = email
	}

	if err := c.fetchProfile(ctx, token.AccessToken, profile); err != nil {
		// Name and avatar are cosmetic; identity is already established.
		return profile, nil
	}
	return profile, nil
}

func (c *VKOAuthClient) fetchProfile(ctx context.Context, accessToken string, profile *VKProfile) error {
	params := url.Values{
		"user_ids":     {profile.UserID},
		"fields":       {"photo_200"},
		"access_token": {accessToken},
		"v":            {vkAPIVersion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.vk.com/method/users.get?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Response []struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Photo200  string `json:"photo_200"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if len(body.Response) == 0 {
		return errors.New("empty users.get response")
	}

	profile.FirstName = body.Response[0].FirstName
	profile.LastName = body.Response[0].LastName
	profile.AvatarURL = body.Response[0].Photo200
	return nil
}
