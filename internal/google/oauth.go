package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"campusevents/internal/auth"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const (
	credentialsFile = "credentials.json"
	oobRedirectURL  = "urn:ietf:wg:oauth:2.0:oob"
)

var scopes = []string{
	calendar.CalendarEventsScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
}

// OAuthConfig returns the OAuth2 config for the consent flow.
// Client ID and secret take precedence over a local credentials.json file.
func OAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  oobRedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials.json not found, set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET", auth.ErrAuthRequired)
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = oobRedirectURL
	return config, nil
}

// TokenFromWeb exchanges an authorization code pasted by the user for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// SaveToken writes a token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// FileTokenProvider serves the token saved by the auth command.
// With a config it refreshes expired tokens and writes them back.
type FileTokenProvider struct {
	path   string
	config *oauth2.Config
}

// NewFileTokenProvider creates a provider reading path. config may be nil.
func NewFileTokenProvider(path string, config *oauth2.Config) *FileTokenProvider {
	return &FileTokenProvider{path: path, config: config}
}

// AccessToken implements auth.TokenProvider.
func (p *FileTokenProvider) AccessToken(ctx context.Context) (string, error) {
	tok, err := tokenFromFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no token at %s, run the auth command", auth.ErrAuthRequired, p.path)
		}
		return "", fmt.Errorf("could not load token: %w", err)
	}

	if p.config == nil {
		if !tok.Valid() {
			return "", fmt.Errorf("%w: token expired", auth.ErrAuthRequired)
		}
		return tok.AccessToken, nil
	}

	fresh, err := p.config.TokenSource(ctx, tok).Token()
	if err != nil {
		return "", fmt.Errorf("%w: refreshing token: %w", auth.ErrAuthRequired, err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := SaveToken(p.path, fresh); err != nil {
			return "", err
		}
	}
	return fresh.AccessToken, nil
}

// FetchIdentity resolves who the token belongs to through the userinfo API.
func FetchIdentity(ctx context.Context, tokens auth.TokenProvider, opts ...option.ClientOption) (auth.Identity, error) {
	token, err := tokens.AccessToken(ctx)
	if err != nil {
		return auth.Identity{}, err
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(bearerClient(ctx, nil, token))}, opts...)
	service, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return auth.Identity{
		DisplayName: info.Name,
		Email:       info.Email,
		AccessToken: token,
	}, nil
}
