package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"features": [{
		"attributes": {
			"relDate": 1617321600000,
			"totalAdministered": 1200,
			"pf": 480,
			"modern": 350,
			"az": 240,
			"firstDose": 700,
			"secondDose": 500
		}
	}]
}`

func TestFetchLatest_ParsesObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, validPayload)
	}))
	defer srv.Close()

	obs, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	require.NoError(t, err)
	// 1617321600000 ms is 2021-04-02 00:00 UTC.
	assert.Equal(t, "2021-04-02", obs.Day())
	assert.Equal(t, int64(1200), obs.Total)
	assert.Equal(t, int64(480), obs.Pfizer)
	assert.Equal(t, int64(350), obs.Moderna)
	assert.Equal(t, int64(240), obs.AstraZeneca)
	assert.Equal(t, int64(700), obs.FirstDose)
	assert.Equal(t, int64(500), obs.SecondDose)
}

func TestFetchLatest_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, validPayload)
	}))
	defer srv.Close()

	obs, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(1200), obs.Total)
}

func TestFetchLatest_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	assert.ErrorContains(t, err, "status 500")
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestFetchLatest_EmptyFeatureList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	assert.ErrorContains(t, err, "no features")
}

func TestFetchLatest_MissingAttributeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"features": [{"attributes": {"relDate": 1617321600000}}]}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	assert.ErrorContains(t, err, "missing")
}

func TestFetchLatest_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).FetchLatest(context.Background())

	assert.ErrorContains(t, err, "decode feed body")
}

func TestFetchLatest_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second).FetchLatest(ctx)

	assert.Error(t, err)
}
