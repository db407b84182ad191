// Package authprovider talks to the hosted auth provider's admin API.
package authprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUserNotFound is returned when the provider has no such user.
var ErrUserNotFound = errors.New("auth provider user not found")

// Error is a non-success response from the provider.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth provider returned %d: %s", e.Status, e.Message)
}

// User is the provider's view of an account.
type User struct {
	ID        string
	Email     string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	Metadata  map[string]interface{}
}

// Provider reads and updates accounts at the auth provider.
type Provider interface {
	GetUser(ctx context.Context, id string) (*User, error)
	// UpdateMetadata merges patch into the user's public metadata.
	UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*User, error)
}

type Client struct {
	client *resty.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a client for the admin API at baseURL, authenticated with
// the service key. Failed calls are returned to the caller without retrying.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetAuthToken(serviceKey).
			SetHeader("Accept", "application/json").
			SetTimeout(timeout),
	}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userResponse struct {
	ID                    string                 `json:"id"`
	EmailAddresses        []emailAddress         `json:"email_addresses"`
	PrimaryEmailAddressID string                 `json:"primary_email_address_id"`
	FirstName             string                 `json:"first_name"`
	LastName              string                 `json:"last_name"`
	ImageURL              string                 `json:"image_url"`
	CreatedAt             int64                  `json:"created_at"`
	PublicMetadata        map[string]interface{} `json:"public_metadata"`
}

type errorResponse struct {
	Errors []struct {
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
		Code        string `json:"code"`
	} `json:"errors"`
}

func (u userResponse) toUser() *User {
	email := ""
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID || email == "" {
			email = e.EmailAddress
		}
	}
	md := u.PublicMetadata
	if md == nil {
		md = map[string]interface{}{}
	}
	out := &User{
		ID:       u.ID,
		Email:    email,
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		ImageURL: u.ImageURL,
		Metadata: md,
	}
	if u.CreatedAt > 0 {
		out.CreatedAt = time.UnixMilli(u.CreatedAt).UTC()
	}
	return out
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var body userResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&body).
		SetError(&errorResponse{}).
		Get("/v1/users/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return body.toUser(), nil
}

// UpdateMetadata merges patch into the user's public metadata.
func (c *Client) UpdateMetadata(ctx context.Context, id string, patch map[string]interface{}) (*User, error) {
	var body userResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"public_metadata": patch}).
		SetResult(&body).
		SetError(&errorResponse{}).
		Patch("/v1/users/{id}/metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to update metadata of user %s: %w", id, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return body.toUser(), nil
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrUserNotFound
	}

	msg := http.StatusText(resp.StatusCode())
	if e, ok := resp.Error().(*errorResponse); ok && len(e.Errors) > 0 {
		msg = e.Errors[0].Message
		if e.Errors[0].LongMessage != "" {
			msg = e.Errors[0].LongMessage
		}
	}
	return &Error{Status: resp.StatusCode(), Message: msg}
}
