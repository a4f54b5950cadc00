package internalhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/logger"
	"github.com/lomoval/personal-calendar/internal/storage"
	memorystorage "github.com/lomoval/personal-calendar/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.PrepareLogger(logger.Config{Level: "ERROR"})
}

type brokenStorage struct {
	*memorystorage.Storage
}

func (s brokenStorage) GetEventsForMonth(context.Context, int, time.Month) ([]storage.Event, error) {
	return nil, errors.New("database is locked")
}

func startServer(t *testing.T, stor storage.Storage, mode string) *httptest.Server {
	t.Helper()
	srv, err := NewServer(Config{Host: "127.0.0.1", Port: 0, Mode: mode}, app.New(stor))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sendRequest(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const validEvent = `{"title":"Dentist","start_date":"2024-03-05T10:00:00","end_date":"2024-03-07T09:00:00"}`

func TestHealth(t *testing.T) {
	ts := startServer(t, memorystorage.New(), ModeProduction)

	resp, body := sendRequest(t, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"healthy"}`, string(body))
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestEventsLifecycle(t *testing.T) {
	ts := startServer(t, memorystorage.New(), ModeProduction)

	resp, body := sendRequest(t, http.MethodPost, ts.URL+"/api/events", validEvent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created storage.Event
	require.NoError(t, json.Unmarshal(body, &created))
	require.Positive(t, created.ID)
	require.Equal(t, "Dentist", created.Title)
	require.Equal(t, app.DefaultColor, created.Color)
	require.NotEmpty(t, created.CreatedAt)
	require.Nil(t, created.Description)

	t.Run("list round trip", func(t *testing.T) {
		for _, path := range []string{"/api/events/2024/03", "/api/events/2024/3"} {
			resp, body := sendRequest(t, http.MethodGet, ts.URL+path, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var events []storage.Event
			require.NoError(t, json.Unmarshal(body, &events))
			require.Equal(t, []storage.Event{created}, events)
		}
	})

	t.Run("empty month", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/events/2024/04", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `[]`, string(body))
	})

	t.Run("get", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/events/1", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var e storage.Event
		require.NoError(t, json.Unmarshal(body, &e))
		require.Equal(t, created, e)
	})

	t.Run("update", func(t *testing.T) {
		payload := `{"title":"Dentist moved","description":"2nd floor","start_date":"2024-03-08T10:00:00",` +
			`"end_date":"2024-03-08T11:00:00","color":"#00ff00"}`
		resp, body := sendRequest(t, http.MethodPut, ts.URL+"/api/events/1", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated storage.Event
		require.NoError(t, json.Unmarshal(body, &updated))
		require.Equal(t, created.ID, updated.ID)
		require.Equal(t, created.CreatedAt, updated.CreatedAt)
		require.Equal(t, "Dentist moved", updated.Title)
		require.Equal(t, "#00ff00", updated.Color)
		require.NotNil(t, updated.Description)
		require.Equal(t, "2nd floor", *updated.Description)
	})

	t.Run("delete twice", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodDelete, ts.URL+"/api/events/1", "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Empty(t, body)

		resp, body = sendRequest(t, http.MethodDelete, ts.URL+"/api/events/1", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.JSONEq(t, `{"error":"Event not found"}`, string(body))
	})
}

func TestValidationErrors(t *testing.T) {
	ts := startServer(t, memorystorage.New(), ModeProduction)

	t.Run("every field reported", func(t *testing.T) {
		payload := `{"title":"","start_date":"2024-03-05","end_date":"bad","color":"red"}`
		resp, body := sendRequest(t, http.MethodPost, ts.URL+"/api/events", payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp errorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		require.Equal(t, msgValidation, errResp.Error)
		fields := make([]string, 0, len(errResp.Details))
		for _, d := range errResp.Details {
			fields = append(fields, d.Field)
		}
		require.ElementsMatch(t, []string{"title", "start_date", "end_date", "color"}, fields)
	})

	t.Run("end before start", func(t *testing.T) {
		payload := `{"title":"x","start_date":"2024-03-05T10:00:00","end_date":"2024-03-05T10:00:00"}`
		resp, body := sendRequest(t, http.MethodPost, ts.URL+"/api/events", payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, string(body), app.MsgEndBeforeStart)
	})

	t.Run("validation precedes lookup", func(t *testing.T) {
		resp, _ := sendRequest(t, http.MethodPut, ts.URL+"/api/events/999", `{"title":""}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = sendRequest(t, http.MethodPut, ts.URL+"/api/events/999", validEvent)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = sendRequest(t, http.MethodPut, ts.URL+"/api/events/abc", validEvent)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodPost, ts.URL+"/api/events", `{"title":`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.JSONEq(t, `{"error":"Invalid request body"}`, string(body))
	})

	t.Run("incorrect month", func(t *testing.T) {
		for _, path := range []string{"/api/events/2024/13", "/api/events/24/03", "/api/calendar/2024/0"} {
			resp, body := sendRequest(t, http.MethodGet, ts.URL+path, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
			require.Contains(t, string(body), msgValidation)
		}
	})
}

func TestInternalError(t *testing.T) {
	broken := brokenStorage{Storage: memorystorage.New()}

	t.Run("production", func(t *testing.T) {
		ts := startServer(t, broken, ModeProduction)
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/events/2024/03", "")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.JSONEq(t, `{"error":"Internal server error"}`, string(body))
	})

	t.Run("development", func(t *testing.T) {
		ts := startServer(t, broken, ModeDevelopment)
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/events/2024/03", "")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Contains(t, string(body), "database is locked")
	})
}

func TestMonthExports(t *testing.T) {
	ts := startServer(t, memorystorage.New(), ModeProduction)
	resp, _ := sendRequest(t, http.MethodPost, ts.URL+"/api/events", validEvent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("ics", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/events/2024/03/ics", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))
		require.Contains(t, resp.Header.Get("Content-Disposition"), "2024-03.ics")
		require.Contains(t, string(body), "SUMMARY:Dentist")
	})

	t.Run("grid", func(t *testing.T) {
		resp, body := sendRequest(t, http.MethodGet, ts.URL+"/api/calendar/2024/3", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var grid monthGrid
		require.NoError(t, json.Unmarshal(body, &grid))
		// March 2024 starts on a Friday.
		require.Equal(t, 5, grid.Offset)
		require.Equal(t, 31, grid.DaysInMonth)
		require.Equal(t, 29, grid.DaysInPrevMonth)
		require.Len(t, grid.Cells, 36)
		require.True(t, grid.Cells[0].Filler)
		require.Equal(t, "2024-02-25", grid.Cells[0].Day)

		withEvent := make([]string, 0)
		for _, c := range grid.Cells {
			if len(c.Events) > 0 {
				withEvent = append(withEvent, c.Day)
			}
		}
		require.Equal(t, []string{"2024-03-05", "2024-03-06", "2024-03-07"}, withEvent)
	})
}

func TestCORS(t *testing.T) {
	ts := startServer(t, memorystorage.New(), ModeProduction)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
