// Package client is a Go client for the HRIS core HTTP API. Every call that
// needs authentication takes the bearer token as an explicit argument.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
)

const apiPrefix = "/api/v1"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the API served at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying transport client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hris API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Meta    *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body interface{}) (envelope, error) {
	var env envelope

	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return env, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return env, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode < 400 {
		return env, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return env, apiErr
	}
	return env, nil
}

func decodeData(env envelope, out interface{}) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// ===== AUTH =====

func (c *Client) Login(ctx context.Context, email, password string) (auth.TokenResponse, error) {
	var tokens auth.TokenResponse
	env, err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, auth.LoginRequest{Email: email, Password: password})
	if err != nil {
		return tokens, err
	}
	return tokens, decodeData(env, &tokens)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	var tokens auth.TokenResponse
	env, err := c.do(ctx, http.MethodPost, "/auth/refresh", "", nil, auth.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return tokens, err
	}
	return tokens, decodeData(env, &tokens)
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", "", nil, auth.RefreshTokenRequest{RefreshToken: refreshToken})
	return err
}

func (c *Client) Me(ctx context.Context, token string) (auth.Identity, error) {
	var identity auth.Identity
	env, err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, nil)
	if err != nil {
		return identity, err
	}
	return identity, decodeData(env, &identity)
}

// ===== ATTENDANCE =====

func (c *Client) ClockIn(ctx context.Context, token string) (attendance.AttendanceResponse, error) {
	return c.recordAttendance(ctx, token, attendance.ActionClockIn)
}

func (c *Client) ClockOut(ctx context.Context, token string) (attendance.AttendanceResponse, error) {
	return c.recordAttendance(ctx, token, attendance.ActionClockOut)
}

func (c *Client) recordAttendance(ctx context.Context, token, action string) (attendance.AttendanceResponse, error) {
	var record attendance.AttendanceResponse
	env, err := c.do(ctx, http.MethodPost, "/attendance", token, nil, attendance.RecordRequest{Action: action})
	if err != nil {
		return record, err
	}
	return record, decodeData(env, &record)
}

type AttendanceQuery struct {
	UserID    string
	StartDate string
	EndDate   string
}

func (c *Client) ListAttendance(ctx context.Context, token string, q AttendanceQuery) (attendance.ListAttendanceResponse, error) {
	var list attendance.ListAttendanceResponse

	query := url.Values{}
	setIfNotEmpty(query, "id", q.UserID)
	setIfNotEmpty(query, "startDate", q.StartDate)
	setIfNotEmpty(query, "endDate", q.EndDate)

	env, err := c.do(ctx, http.MethodGet, "/attendance", token, query, nil)
	if err != nil {
		return list, err
	}
	if err := decodeData(env, &list.Data); err != nil {
		return list, err
	}
	if env.Count != nil {
		list.Count = *env.Count
	} else {
		list.Count = len(list.Data)
	}
	return list, nil
}

// ===== LEAVE =====

func (c *Client) SubmitLeave(ctx context.Context, token string, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	var result leave.LeaveRequestResponse
	env, err := c.do(ctx, http.MethodPost, "/leave-requests", token, nil, req)
	if err != nil {
		return result, err
	}
	return result, decodeData(env, &result)
}

type LeaveQuery struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int
}

func (c *Client) ListLeave(ctx context.Context, token string, q LeaveQuery) (leave.ListLeaveRequestResponse, error) {
	var list leave.ListLeaveRequestResponse

	query := url.Values{}
	setIfNotEmpty(query, "employeeId", q.EmployeeID)
	setIfNotEmpty(query, "status", q.Status)
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	env, err := c.do(ctx, http.MethodGet, "/leave-requests", token, query, nil)
	if err != nil {
		return list, err
	}
	if err := decodeData(env, &list.Data); err != nil {
		return list, err
	}
	if env.Meta != nil {
		list.Page = env.Meta.Page
		list.Limit = env.Meta.Limit
		list.Total = env.Meta.Total
		list.TotalPages = env.Meta.TotalPages
	}
	return list, nil
}

func (c *Client) GetLeave(ctx context.Context, token, id string) (leave.LeaveRequestResponse, error) {
	return c.leaveCall(ctx, http.MethodGet, "/leave-requests/"+url.PathEscape(id), token, nil)
}

func (c *Client) SubmitDraft(ctx context.Context, token, id string) (leave.LeaveRequestResponse, error) {
	return c.leaveCall(ctx, http.MethodPost, "/leave-requests/"+url.PathEscape(id)+"/submit", token, nil)
}

func (c *Client) DecideLeave(ctx context.Context, token, id string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return c.leaveCall(ctx, http.MethodPatch, "/leave-requests/"+url.PathEscape(id), token, req)
}

func (c *Client) ApproveLeave(ctx context.Context, token, id string) (leave.LeaveRequestResponse, error) {
	return c.leaveCall(ctx, http.MethodPatch, "/leave-requests/"+url.PathEscape(id)+"/approve", token, nil)
}

// DenyLeave sends reason only when it is non-nil.
func (c *Client) DenyLeave(ctx context.Context, token, id string, reason *string) (leave.LeaveRequestResponse, error) {
	var body interface{}
	if reason != nil {
		body = map[string]string{"denialReason": *reason}
	}
	return c.leaveCall(ctx, http.MethodPatch, "/leave-requests/"+url.PathEscape(id)+"/deny", token, body)
}

func (c *Client) leaveCall(ctx context.Context, method, path, token string, body interface{}) (leave.LeaveRequestResponse, error) {
	var result leave.LeaveRequestResponse
	env, err := c.do(ctx, method, path, token, nil, body)
	if err != nil {
		return result, err
	}
	return result, decodeData(env, &result)
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
