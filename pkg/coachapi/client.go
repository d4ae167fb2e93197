// Package coachapi holds the wire types for the Quiero HTTP API and a small
// client for talking to it. The server's handlers and its integration tests
// both build on these types, so the two cannot drift apart.
package coachapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is the typed error the client returns for non-2xx responses.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coachapi: %s (%d): %s", e.Code, e.StatusCode, e.Description)
}

// Client is a thin client for the Quiero API. The zero HTTPClient gets a
// 10 second timeout.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client for the given origin.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Session is an authenticated view over the client holding a token pair.
type Session struct {
	client       *Client
	AccessToken  string
	RefreshToken string
	Landing      string
}

// Login authenticates with email/password and returns a Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:       c,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Landing:      out.Landing,
	}, nil
}

// RedeemInvitation consumes an invitation token, setting the initial password.
func (c *Client) RedeemInvitation(ctx context.Context, token, password string) (RedeemInvitationResponse, error) {
	var out RedeemInvitationResponse
	err := c.do(ctx, http.MethodPost, "/v1/invitations/redeem", "", RedeemInvitationRequest{
		Token:    token,
		Password: password,
	}, &out)
	return out, err
}

// RequestPasswordReset asks for a reset mail. Always succeeds for well-formed
// requests regardless of whether the email has an account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/password-resets", "", PasswordResetRequest{Email: email}, nil)
}

// RedeemPasswordReset consumes a reset token.
func (c *Client) RedeemPasswordReset(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/v1/password-resets/redeem", "", RedeemPasswordResetRequest{
		Token:    token,
		Password: password,
	}, nil)
}

// Refresh rotates the session's refresh token in place.
func (s *Session) Refresh(ctx context.Context) error {
	var out TokenResponse
	err := s.client.do(ctx, http.MethodPost, "/v1/auth/refresh", "", RefreshRequest{
		RefreshToken: s.RefreshToken,
	}, &out)
	if err != nil {
		return err
	}
	s.AccessToken = out.AccessToken
	s.RefreshToken = out.RefreshToken
	s.Landing = out.Landing
	return nil
}

// Logout revokes the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, "/v1/auth/logout", "", RefreshRequest{
		RefreshToken: s.RefreshToken,
	}, nil)
}

// Landing fetches the caller's landing destination.
func (s *Session) GetLanding(ctx context.Context) (LandingResponse, error) {
	var out LandingResponse
	err := s.client.do(ctx, http.MethodGet, "/v1/landing", s.AccessToken, nil, &out)
	return out, err
}

// Me fetches the caller's own profile.
func (s *Session) Me(ctx context.Context) (UserProfileResponse, error) {
	var out UserProfileResponse
	err := s.client.do(ctx, http.MethodGet, "/v1/me", s.AccessToken, nil, &out)
	return out, err
}

// CreateCoachee provisions a coachee for the calling coach.
func (s *Session) CreateCoachee(ctx context.Context, email, fullName string) (Coachee, error) {
	var out Coachee
	err := s.client.do(ctx, http.MethodPost, "/v1/coachees", s.AccessToken, CreateCoacheeRequest{
		Email:    email,
		FullName: fullName,
	}, &out)
	return out, err
}

// ListCoachees returns the calling coach's coachees.
func (s *Session) ListCoachees(ctx context.Context) (CoacheeListResponse, error) {
	var out CoacheeListResponse
	err := s.client.do(ctx, http.MethodGet, "/v1/coachees", s.AccessToken, nil, &out)
	return out, err
}

// SendInvitation issues and emails an invitation for a coachee.
func (s *Session) SendInvitation(ctx context.Context, coacheeID, email string) (InvitationResponse, error) {
	var out InvitationResponse
	err := s.client.do(ctx, http.MethodPost, "/v1/invitations/send", s.AccessToken, SendInvitationRequest{
		CoacheeID: coacheeID,
		Email:     email,
	}, &out)
	return out, err
}

// CreateGoal records a new "quiero" for the caller.
func (s *Session) CreateGoal(ctx context.Context, title, detail string) (Goal, error) {
	var out Goal
	err := s.client.do(ctx, http.MethodPost, "/v1/quieros", s.AccessToken, CreateGoalRequest{
		Title:  title,
		Detail: detail,
	}, &out)
	return out, err
}

// ListGoals returns the caller's goals.
func (s *Session) ListGoals(ctx context.Context) (GoalListResponse, error) {
	var out GoalListResponse
	err := s.client.do(ctx, http.MethodGet, "/v1/quieros", s.AccessToken, nil, &out)
	return out, err
}

// SetGoalStatus transitions a goal's status.
func (s *Session) SetGoalStatus(ctx context.Context, goalID, status string) (Goal, error) {
	var out Goal
	err := s.client.do(ctx, http.MethodPut, "/v1/quieros/"+goalID+"/status", s.AccessToken, GoalStatusRequest{
		Status: status,
	}, &out)
	return out, err
}

// CreateAction appends an action to a goal.
func (s *Session) CreateAction(ctx context.Context, goalID, kind, description string) (Action, error) {
	var out Action
	err := s.client.do(ctx, http.MethodPost, "/v1/quieros/"+goalID+"/actions", s.AccessToken, CreateActionRequest{
		Kind:        kind,
		Description: description,
	}, &out)
	return out, err
}

// do sends one JSON request and decodes the response into out (when non-nil).
// Non-2xx responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		buf = &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("coachapi: encode request: %w", err)
		}
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, buf)
	if err != nil {
		return fmt.Errorf("coachapi: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coachapi: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		if derr := json.NewDecoder(resp.Body).Decode(&apiErr); derr != nil {
			return &APIError{StatusCode: resp.StatusCode, Code: "unknown_error"}
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        apiErr.Error,
			Description: apiErr.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coachapi: decode response: %w", err)
	}
	return nil
}
