// Package client calls the deployed Supabase Edge Functions that own the
// privileged user-lifecycle operations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// FunctionsClient implements port.UserAdmin by forwarding to the
// create-user, update-user, delete-user and reset-password functions with
// the caller's own bearer token. The functions re-check the caller's role.
type FunctionsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
}

// NewFunctionsClient creates a new FunctionsClient.
func NewFunctionsClient(httpClient *http.Client, supabaseURL, apiKey string, cb *gobreaker.CircuitBreaker) *FunctionsClient {
	return &FunctionsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/functions/v1",
		apiKey:     apiKey,
		cb:         cb,
	}
}

// functionReply is the union of the success and error envelopes.
type functionReply struct {
	Success bool                `json:"success"`
	User    *domain.UserAccount `json:"user,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// FunctionError is a non-2xx answer from an edge function.
type FunctionError struct {
	Function string
	Status   int
	Message  string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s returned status %d: %s", e.Function, e.Status, e.Message)
}

// IsRejection reports whether err is a function answering with a 4xx.
func IsRejection(err error) bool {
	var fe *FunctionError
	return errors.As(err, &fe) && fe.Status >= 400 && fe.Status < 500
}

// invoke posts payload to a function. Calls go through the breaker but
// are never retried: every function mutates state.
func (c *FunctionsClient) invoke(ctx context.Context, name, callerToken string, payload any) (*functionReply, error) {
	ctx, span := tracer.Start(ctx, "FunctionsClient."+name)
	defer span.End()
	span.SetAttributes(attribute.String("function", name))

	result, err := c.cb.Execute(func() (any, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/%s", c.baseURL, name)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("apikey", c.apiKey)
		httpReq.Header.Set("Authorization", "Bearer "+callerToken)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var reply functionReply
		decodeErr := json.NewDecoder(resp.Body).Decode(&reply)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := reply.Error
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return nil, &FunctionError{Function: name, Status: resp.StatusCode, Message: msg}
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("decode %s reply: %w", name, decodeErr)
		}
		return &reply, nil
	})
	if err != nil {
		return nil, mapError(name, err)
	}
	return result.(*functionReply), nil
}

func mapError(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "functions"}
	}
	var fe *FunctionError
	if errors.As(err, &fe) {
		switch fe.Status {
		case http.StatusUnauthorized:
			return &domain.ErrUnauthorized{Message: fe.Message}
		case http.StatusForbidden:
			return &domain.ErrForbidden{Action: fe.Message}
		case http.StatusConflict:
			return &domain.ErrConflict{Message: fe.Message}
		case http.StatusBadRequest:
			return &domain.ErrValidation{Field: name, Message: fe.Message}
		}
		return &domain.ErrExternalService{Service: "functions/" + name, Status: fe.Status, Message: fe.Message, Err: err}
	}
	return &domain.ErrExternalService{Service: "functions/" + name, Err: err}
}

func (c *FunctionsClient) CreateUser(ctx context.Context, callerToken string, req *domain.CreateUserRequest) (*domain.UserAccount, error) {
	reply, err := c.invoke(ctx, "create-user", callerToken, req)
	if err != nil {
		return nil, err
	}
	if reply.User != nil {
		return reply.User, nil
	}
	return &domain.UserAccount{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Sector:   req.Sector,
	}, nil
}

func (c *FunctionsClient) UpdateUser(ctx context.Context, callerToken string, req *domain.UpdateUserRequest) (*domain.UserAccount, error) {
	reply, err := c.invoke(ctx, "update-user", callerToken, req)
	if err != nil {
		return nil, err
	}
	if reply.User != nil {
		return reply.User, nil
	}
	return &domain.UserAccount{ID: req.UserID, Username: req.Username, Email: req.Email, Role: req.Role}, nil
}

func (c *FunctionsClient) DeleteUser(ctx context.Context, callerToken string, userID string) error {
	_, err := c.invoke(ctx, "delete-user", callerToken, domain.DeleteUserRequest{UserID: userID})
	return err
}

func (c *FunctionsClient) ResetPassword(ctx context.Context, callerToken string, userID, newPassword string) error {
	_, err := c.invoke(ctx, "reset-password", callerToken, domain.ResetPasswordRequest{UserID: userID, NewPassword: newPassword})
	return err
}
