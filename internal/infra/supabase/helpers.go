package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"
)

// ============================================================
// Backend errors
// ============================================================

// APIError is a non-2xx answer from Supabase. PostgREST sends
// {code, message, details, hint}; GoTrue and edge functions send
// {msg} / {error} / {error_description}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase returned status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase returned status %d: %s", e.Status, e.Message)
}

// IsUniqueViolation reports a Postgres unique_violation or an HTTP 409.
func (e *APIError) IsUniqueViolation() bool {
	return e.Code == "23505" || e.Status == http.StatusConflict
}

func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	e := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = strings.TrimSpace(string(body))
		return e
	}
	if s, ok := payload.Code.(string); ok {
		e.Code = s
	}
	for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// ============================================================
// PostgREST helpers for GET, POST, PATCH, DELETE and RPC
// ============================================================

func (c *Client) getJSON(ctx context.Context, service, path string, dst any) error {
	return c.read(ctx, service, func() error {
		body, err := c.do(ctx, request{method: http.MethodGet, url: c.restURL(path)})
		if err != nil {
			return err
		}
		return decode(body, dst)
	})
}

func (c *Client) postJSON(ctx context.Context, service, table string, data, dst any) error {
	return c.write(ctx, service, func() error {
		payload, err := json.Marshal(data)
		if err != nil {
			return resilience.Permanent(err)
		}
		body, err := c.do(ctx, request{
			method: http.MethodPost,
			url:    c.restURL(table),
			body:   bytes.NewReader(payload),
			prefer: "return=representation",
		})
		if err != nil {
			return err
		}
		return decode(body, dst)
	})
}

// upsertJSON inserts data or merges it into the row with the same key.
func (c *Client) upsertJSON(ctx context.Context, service, table, onConflict string, data, dst any) error {
	return c.write(ctx, service, func() error {
		payload, err := json.Marshal(data)
		if err != nil {
			return resilience.Permanent(err)
		}
		body, err := c.do(ctx, request{
			method: http.MethodPost,
			url:    c.restURL(table + "?on_conflict=" + onConflict),
			body:   bytes.NewReader(payload),
			prefer: "resolution=merge-duplicates,return=representation",
		})
		if err != nil {
			return err
		}
		return decode(body, dst)
	})
}

// patchJSON updates the rows matched by path and decodes the updated rows
// into dst, which must be a slice pointer.
func (c *Client) patchJSON(ctx context.Context, service, path string, data, dst any) error {
	return c.write(ctx, service, func() error {
		payload, err := json.Marshal(data)
		if err != nil {
			return resilience.Permanent(err)
		}
		body, err := c.do(ctx, request{
			method: http.MethodPatch,
			url:    c.restURL(path),
			body:   bytes.NewReader(payload),
			prefer: "return=representation",
		})
		if err != nil {
			return err
		}
		return decode(body, dst)
	})
}

func (c *Client) deleteRows(ctx context.Context, service, path string) error {
	return c.write(ctx, service, func() error {
		_, err := c.do(ctx, request{method: http.MethodDelete, url: c.restURL(path)})
		return err
	})
}

// rpc calls a stored procedure. Read-only procedures are retried.
func (c *Client) rpc(ctx context.Context, fn string, args map[string]any, readOnly bool, dst any) error {
	call := func() error {
		payload, err := json.Marshal(args)
		if err != nil {
			return resilience.Permanent(err)
		}
		body, err := c.do(ctx, request{
			method: http.MethodPost,
			url:    c.restURL("rpc/" + fn),
			body:   bytes.NewReader(payload),
		})
		if err != nil {
			return err
		}
		return decode(body, dst)
	}
	if readOnly {
		return c.read(ctx, "supabase/rpc/"+fn, call)
	}
	return c.write(ctx, "supabase/rpc/"+fn, call)
}

func decode(body []byte, dst any) error {
	if dst == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return resilience.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================
// Filter builders
// ============================================================

func eq(v string) string { return "eq." + url.QueryEscape(v) }

func in(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return url.QueryEscape("in.(" + strings.Join(quoted, ",") + ")")
}

func versionFilter(t time.Time) string {
	return eq(t.UTC().Format(time.RFC3339Nano))
}

// firstOrNotFound returns rows[0] or ErrNotFound.
func firstOrNotFound[T any](rows []T, resource, id string) (*T, error) {
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return &rows[0], nil
}
