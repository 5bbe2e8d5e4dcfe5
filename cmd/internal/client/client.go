// Package client talks to the VisuAll REST API on behalf of the CLI.
package client

import (
	"context"
	"errors"
	"strconv"
	"time"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/service"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const defaultMaxRetries = 3

type Client struct {
	http       *resty.Client
	creds      CredentialStore
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func New(baseURL string, timeout time.Duration, creds CredentialStore) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{
		http:       c,
		creds:      creds,
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			exp := backoff.NewExponentialBackOff()
			exp.InitialInterval = 200 * time.Millisecond
			exp.MaxInterval = 2 * time.Second
			return exp
		},
	}
}

type errorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// Session returns the stored credentials, or ErrNotLoggedIn.
func (c *Client) Session() (*Credentials, error) {
	creds, err := c.creds.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotLoggedIn
	}
	return creds, nil
}

func (c *Client) Register(ctx context.Context, form *forms.RegisterForm) (*service.RegisterResponse, error) {
	var out service.RegisterResponse
	req := c.http.R().SetContext(ctx).SetBody(form).SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/auth/register"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login stores the issued token for later calls.
func (c *Client) Login(ctx context.Context, form *forms.LoginForm) (*Credentials, error) {
	var out service.LoginResponse
	req := c.http.R().SetContext(ctx).SetBody(form).SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/auth/login"); err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil {
		return nil, &RemoteRequestError{Message: "login response without token"}
	}

	creds := &Credentials{Token: out.Token, UserID: out.User.ID, Name: out.User.Nome, Email: out.User.Email}
	if err := c.creds.Save(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Logout forgets the local credentials even when the server cannot be
// reached; the remote error is still returned.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.authed(ctx)
	if errors.Is(err, ErrNotLoggedIn) {
		return nil
	}
	if err != nil {
		return err
	}

	remoteErr := c.do(req, resty.MethodPost, "/auth/logout")
	if err := c.creds.Clear(); err != nil {
		return err
	}
	return remoteErr
}

// ListByUser is retried with exponential backoff on transport errors and
// 5xx answers, since it is safe to repeat.
func (c *Client) ListByUser(ctx context.Context, userID int) ([]service.ReminderResponse, error) {
	var out []service.ReminderResponse
	op := func() error {
		req, err := c.authed(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		out = nil
		req.SetPathParam("userId", strconv.Itoa(userID)).SetResult(&out)
		err = c.do(req, resty.MethodGet, "/lembretes/usuario/{userId}")

		var rerr *RemoteRequestError
		if errors.As(err, &rerr) && !rerr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	if out == nil {
		out = []service.ReminderResponse{}
	}
	return out, nil
}

func (c *Client) CreateReminder(ctx context.Context, body *service.ReminderRequest) (*service.ReminderResponse, error) {
	return c.reminderCall(ctx, resty.MethodPost, "/lembretes", 0, body)
}

func (c *Client) UpdateReminder(ctx context.Context, id int, body *service.ReminderRequest) (*service.ReminderResponse, error) {
	return c.reminderCall(ctx, resty.MethodPut, "/lembretes/{id}", id, body)
}

func (c *Client) CompleteReminder(ctx context.Context, id int) (*service.ReminderResponse, error) {
	return c.reminderCall(ctx, resty.MethodPut, "/lembretes/{id}/concluir", id, nil)
}

func (c *Client) ReopenReminder(ctx context.Context, id int) (*service.ReminderResponse, error) {
	return c.reminderCall(ctx, resty.MethodPut, "/lembretes/{id}/reabrir", id, nil)
}

func (c *Client) DeleteReminder(ctx context.Context, id int) error {
	req, err := c.authed(ctx)
	if err != nil {
		return err
	}
	req.SetPathParam("id", strconv.Itoa(id))
	return c.do(req, resty.MethodDelete, "/lembretes/{id}")
}

func (c *Client) ListenReminder(ctx context.Context, id int) (*announce.Notice, error) {
	return c.noticeCall(ctx, "/lembretes/{id}/ouvir", id)
}

func (c *Client) ShareReminder(ctx context.Context, id int) (*announce.Notice, error) {
	return c.noticeCall(ctx, "/lembretes/{id}/compartilhar", id)
}

func (c *Client) reminderCall(ctx context.Context, method, path string, id int, body *service.ReminderRequest) (*service.ReminderResponse, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var out service.ReminderResponse
	req.SetResult(&out)
	if id > 0 {
		req.SetPathParam("id", strconv.Itoa(id))
	}
	if body != nil {
		req.SetBody(body)
	}
	if err := c.do(req, method, path); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) noticeCall(ctx context.Context, path string, id int) (*announce.Notice, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var out announce.Notice
	req.SetPathParam("id", strconv.Itoa(id)).SetResult(&out)
	if err := c.do(req, resty.MethodPost, path); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) authed(ctx context.Context) (*resty.Request, error) {
	creds, err := c.Session()
	if err != nil {
		return nil, err
	}
	return c.http.R().SetContext(ctx).SetAuthToken(creds.Token), nil
}

func (c *Client) do(req *resty.Request, method, path string) error {
	var apiErr errorBody
	resp, err := req.SetError(&apiErr).Execute(method, path)
	if err != nil {
		return &RemoteRequestError{Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status()
		}
		return &RemoteRequestError{Status: resp.StatusCode(), Message: msg, Fields: apiErr.Fields}
	}
	return nil
}
