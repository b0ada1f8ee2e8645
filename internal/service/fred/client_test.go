package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroPull/internal/domain/models"
	xhttp "MacroPull/pkg/http"
)

func TestFetchObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "CPIAUCSL", q.Get("series_id"))
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Equal(t, "24", q.Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2024-05-01","value":"313.2"},
			{"date":"2024-04-01","value":"."},
			{"date":"2024-03-01","value":"311.1"}
		]}`))
	}))
	defer srv.Close()

	c := New(xhttp.NewClient(), srv.URL, "secret", nil)
	obs, err := c.FetchObservations(context.Background(), "CPIAUCSL", 24)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 313.2, obs[0].Value)
	assert.Equal(t, "2024-03-01", obs[1].Date.Format("2006-01-02"))
}

func TestFetchObservationsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad series", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(xhttp.NewClient(), srv.URL, "secret", nil)
	_, err := c.FetchObservations(context.Background(), "NOPE", 10)
	require.Error(t, err)
	assert.True(t, xhttp.IsStatus(err, http.StatusBadRequest))

	_, err = New(xhttp.NewClient(), srv.URL, "", nil).FetchObservations(context.Background(), "X", 1)
	assert.ErrorIs(t, err, models.ErrNoCredential)
}

func TestFetchObservationsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"observations":`))
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), srv.URL, "k", nil).FetchObservations(context.Background(), "X", 1)
	assert.Error(t, err)
}
