package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, retries int, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := resilience.Config{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	cb := resilience.NewCircuitBreaker(t.Name(), IsRejection)
	return NewClient(&http.Client{Timeout: 2 * time.Second}, srv.URL, "anon-key", "service-key", cb, cfg, zap.NewNop())
}

func TestClient_SendsKeys(t *testing.T) {
	var apikey, authz string
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		apikey = r.Header.Get("apikey")
		authz = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon-key", apikey)
	assert.Equal(t, "Bearer service-key", authz)
}

func TestClient_ReadsAreRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"s-1","base_value":12.5,"level_1_value":0,"level_2_value":0,"level_3_value":0}]`))
	})

	s, err := c.GetBonusSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12.50", s.BaseValue.StringFixed(2))
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_RejectedReadIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"22P02","message":"invalid input syntax for type uuid"}`))
	})

	_, err := c.ListVehicles(context.Background())
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusBadRequest, ext.Status)
	assert.Equal(t, "invalid input syntax for type uuid", ext.Message)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_WritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.DeleteVehicle(context.Background(), "v-1")
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusBadGateway, ext.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_UniqueViolationIsConflict(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"vehicles_plate_key\""}`))
	})

	_, err := c.CreateVehicle(context.Background(), &domain.Vehicle{Model: "Strada", Plate: "ABC1D23", Status: domain.VehicleAvailable})
	var conflict *domain.ErrConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestClient_UpdateIfVersion(t *testing.T) {
	version := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	const row = `[{"id":"ap-1","title":"Visita","city":"Cascavel","date":"2025-03-10","status":"scheduled"}]`

	t.Run("applied", func(t *testing.T) {
		var query string
		c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			_, _ = w.Write([]byte(row))
		})

		a, err := c.UpdateAppointmentIfVersion(context.Background(), "ap-1", version, map[string]any{"date": "2025-03-10"})
		require.NoError(t, err)
		assert.Equal(t, "ap-1", a.ID)
		assert.Contains(t, query, "updated_at=eq.2025-03-01T12%3A00%3A00Z")
	})

	t.Run("stale version", func(t *testing.T) {
		c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPatch {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(row))
		})

		_, err := c.UpdateAppointmentIfVersion(context.Background(), "ap-1", version, map[string]any{"date": "2025-03-10"})
		var conflict *domain.ErrConflict
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("missing row", func(t *testing.T) {
		c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := c.UpdateAppointmentIfVersion(context.Background(), "ap-404", version, map[string]any{"date": "2025-03-10"})
		var notFound *domain.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestClient_SetAppointmentAgentsInsertsBeforeDeleting(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.RawQuery)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.SetAppointmentAgents(context.Background(), "ap-1", []string{"ag-1", "ag-2"}))

	require.Len(t, calls, 2)
	assert.True(t, strings.HasPrefix(calls[0], http.MethodPost+" on_conflict=appointment_id,agent_id"), calls[0])
	assert.True(t, strings.HasPrefix(calls[1], http.MethodDelete+" appointment_id=eq.ap-1&agent_id=not.in."), calls[1])
}

func TestClient_SetAppointmentAgentsKeepsRowsWhenInsertFails(t *testing.T) {
	var deletes atomic.Int32
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletes.Add(1)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"23503","message":"insert or update violates foreign key constraint"}`))
	})

	err := c.SetAppointmentAgents(context.Background(), "ap-1", []string{"ag-missing"})
	require.Error(t, err)
	assert.Zero(t, deletes.Load())
}

func TestClient_SetAppointmentAgentsEmptyClearsAll(t *testing.T) {
	var query string
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		query = r.URL.RawQuery
	})

	require.NoError(t, c.SetAppointmentAgents(context.Background(), "ap-1", nil))
	assert.Equal(t, "appointment_id=eq.ap-1", query)
}

func TestClient_ListAppointmentsByIDsChunks(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Less(t, len(r.URL.RawQuery), 8000)
		// Later chunks return earlier dates to exercise the merge order.
		_, _ = fmt.Fprintf(w, `[{"id":"ap-%d","title":"Visita","city":"Rio","date":"2025-03-%02d","status":"completed"}]`, n, 10-n)
	})

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("7b0c1f4e-2d7a-4f0e-9a51-%012d", i)
	}
	got, err := c.ListAppointmentsByIDs(context.Background(), ids, "2025-03-01", "2025-03-31")
	require.NoError(t, err)

	assert.EqualValues(t, 3, calls.Load())
	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-07", got[0].Date)
	assert.Equal(t, "2025-03-09", got[2].Date)
}

func TestClient_ListAppointmentsByIDsEmpty(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	got, err := c.ListAppointmentsByIDs(context.Background(), nil, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, calls.Load())
}

func TestClient_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_ = c.DeleteVehicle(context.Background(), "v-1")
	}
	err := c.DeleteVehicle(context.Background(), "v-1")

	var open *domain.ErrCircuitOpen
	assert.ErrorAs(t, err, &open)
	assert.EqualValues(t, 5, calls.Load())
}

func TestClient_RejectionsDoNotOpenBreaker(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad filter"}`))
	})

	for i := 0; i < 8; i++ {
		err := c.DeleteVehicle(context.Background(), "v-1")
		var open *domain.ErrCircuitOpen
		require.False(t, errors.As(err, &open), "attempt %d", i)
	}
}

func TestClient_Ping(t *testing.T) {
	var path string
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	require.NoError(t, c.Ping(context.Background()))
	assert.True(t, strings.HasPrefix(path, "/rest/v1/bonus_settings?"))
}

func TestParseAPIError(t *testing.T) {
	cases := []struct {
		name string
		body string
		code string
		msg  string
	}{
		{"postgrest", `{"code":"23505","message":"duplicate key"}`, "23505", "duplicate key"},
		{"gotrue msg", `{"code":400,"msg":"Invalid login credentials"}`, "", "Invalid login credentials"},
		{"oauth", `{"error":"invalid_grant","error_description":"Email not confirmed"}`, "", "Email not confirmed"},
		{"plain text", `upstream timeout`, "", "upstream timeout"},
		{"empty json", `{}`, "", "Bad Request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := parseAPIError(http.StatusBadRequest, []byte(tc.body))
			assert.Equal(t, tc.code, e.Code)
			assert.Equal(t, tc.msg, e.Message)
		})
	}
}
