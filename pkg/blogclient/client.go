// Package blogclient is a Go client for the blog GraphQL API. It tracks the login
// session and persists the bearer token in a TokenStore.
package blogclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/goccy/go-json"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "anonymous"
}

// Storage keys. Demo deployments use the stub pair so both sessions can coexist.
const (
	KeyToken     = "token"
	KeyUser      = "user"
	KeyStubToken = "stub-token"
	KeyStubUser  = "stub-user"
)

var ErrBusy = errors.New("blogclient: authentication already in progress")

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Options struct {
	BaseURL    string // e.g. http://127.0.0.1:4000
	HTTPClient *http.Client
	Store      TokenStore
	Demo       bool
}

type Client struct {
	anon     graphql.Client
	authed   graphql.Client
	store    TokenStore
	keyToken string
	keyUser  string

	mu    sync.RWMutex
	state State
	token string
	user  *User
}

// New restores a saved session when both the token and the user are in the store.
func New(o Options) (*Client, error) {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if o.Store == nil {
		o.Store = NewMemoryStore()
	}
	endpoint := strings.TrimRight(o.BaseURL, "/") + "/graphql"
	c := &Client{
		anon:     graphql.NewClient(endpoint, o.HTTPClient),
		store:    o.Store,
		keyToken: KeyToken,
		keyUser:  KeyUser,
	}
	c.authed = graphql.NewClient(endpoint, bearerDoer{hc: o.HTTPClient, token: c.Token})
	if o.Demo {
		c.keyToken, c.keyUser = KeyStubToken, KeyStubUser
	}

	tok, okT, err := c.store.Get(c.keyToken)
	if err != nil {
		return nil, fmt.Errorf("blogclient: read token: %w", err)
	}
	raw, okU, err := c.store.Get(c.keyUser)
	if err != nil {
		return nil, fmt.Errorf("blogclient: read user: %w", err)
	}
	if okT && okU && tok != "" {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			c.token, c.user, c.state = tok, &u, Authenticated
		}
	}
	return c, nil
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User is a copy of the signed-in user, nil when anonymous.
func (c *Client) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

const userFields = `id name email role bio avatar createdAt updatedAt`

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "login",
		`mutation Login($input: LoginInput!) { login(input: $input) { token user { `+userFields+` } } }`,
		map[string]any{"input": map[string]any{"email": email, "password": password}})
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	return c.authenticate(ctx, "register",
		`mutation Register($input: RegisterInput!) { register(input: $input) { token user { `+userFields+` } } }`,
		map[string]any{"input": map[string]any{"name": name, "email": email, "password": password}})
}

// authenticate drives anonymous -> authenticating -> authenticated, falling back to
// anonymous with a cleared store on any failure.
func (c *Client) authenticate(ctx context.Context, field, query string, vars map[string]any) (*User, error) {
	c.mu.Lock()
	if c.state == Authenticating {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = Authenticating
	c.mu.Unlock()

	var out map[string]struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	err := c.do(ctx, c.anon, query, vars, &out)
	payload := out[field]
	if err == nil && payload.Token == "" {
		err = errors.New("blogclient: empty token in response")
	}
	if err == nil {
		err = c.persist(payload.Token, payload.User)
	}
	if err != nil {
		c.reset()
		return nil, err
	}

	c.mu.Lock()
	c.token, c.user, c.state = payload.Token, &payload.User, Authenticated
	c.mu.Unlock()
	u := payload.User
	return &u, nil
}

func (c *Client) persist(token string, u User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := c.store.Set(c.keyToken, token); err != nil {
		return err
	}
	return c.store.Set(c.keyUser, string(b))
}

// Logout purges the stored session.
func (c *Client) Logout() error {
	return c.reset()
}

func (c *Client) reset() error {
	c.mu.Lock()
	c.token, c.user, c.state = "", nil, Anonymous
	c.mu.Unlock()
	return c.store.Delete(c.keyToken, c.keyUser)
}

// Query runs a GraphQL operation with the session token and decodes data into out.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.do(ctx, c.authed, query, vars, out)
}

// bearerDoer adds the session token to every request, like a wrapping RoundTripper would.
type bearerDoer struct {
	hc    *http.Client
	token func() string
}

func (d bearerDoer) Do(req *http.Request) (*http.Response, error) {
	if tok := d.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return d.hc.Do(req)
}

func (c *Client) do(ctx context.Context, gc graphql.Client, query string, vars map[string]any, out any) error {
	req := &graphql.Request{Query: query, OpName: operationName(query)}
	if len(vars) > 0 {
		req.Variables = vars
	}
	resp := &graphql.Response{Data: out}
	err := gc.MakeRequest(ctx, req, resp)
	if err == nil {
		return nil
	}
	if len(resp.Errors) > 0 {
		return fromGQL(resp.Errors[0])
	}
	return fmt.Errorf("blogclient: %w", err)
}

// operationName pulls "Login" out of "mutation Login(...)"; anonymous operations give "".
func operationName(query string) string {
	q := strings.TrimSpace(query)
	for _, kw := range []string{"query", "mutation"} {
		if !strings.HasPrefix(q, kw) {
			continue
		}
		rest := strings.TrimLeft(q[len(kw):], " \t\r\n")
		end := strings.IndexAny(rest, "({ \t\r\n")
		if end < 0 {
			return ""
		}
		return rest[:end]
	}
	return ""
}
