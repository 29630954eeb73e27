package backendsvc

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/bobur6/professor-ai-helper/core/user"
)

type (
	// TokenStore holds the bearer token of the current session.
	TokenStore interface {
		Token() string
		ClearToken()
	}

	// Navigator moves the user to another page of the application.
	Navigator interface {
		Navigate(path string)
	}

	NavigatorFunc func(path string)

	// MemoryTokenStore is a TokenStore kept in process memory.
	MemoryTokenStore struct {
		mu    sync.RWMutex
		token string
	}

	// Token is the response of a successful login.
	Token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
)

func (f NavigatorFunc) Navigate(path string) { f(path) }

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) ClearToken() {
	s.SetToken("")
}

// Register creates a teacher account. It does not log in.
func (c *Client) Register(ctx context.Context, nu user.NewUser) (user.User, error) {
	req, err := c.newJSONRequest(http.MethodPost, "/auth/register", nu)
	if err != nil {
		return user.User{}, err
	}
	req.login = true
	var usr user.User
	if err = c.do(ctx, req, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

// Login exchanges credentials for an access token using the OAuth2 password form.
// Bad credentials come back as a *core.ServerError and never trigger navigation.
func (c *Client) Login(ctx context.Context, creds user.Credentials) (Token, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	req := request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        []byte(form.Encode()),
		contentType: contentForm,
		login:       true,
	}
	var tok Token
	if err := c.do(ctx, req, &tok); err != nil {
		return Token{}, err
	}
	if setter, ok := c.tokens.(interface{ SetToken(string) }); ok {
		setter.SetToken(tok.AccessToken)
	}
	return tok, nil
}
