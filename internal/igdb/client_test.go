package igdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, count *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		require.Equal(t, "test-id", r.URL.Query().Get("client_id"))
		require.Equal(t, "test-secret", r.URL.Query().Get("client_secret"))
		n := count.Add(1)
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":3600}`, n)
	}))
}

func TestNewClientFromEnvMissingCreds(t *testing.T) {
	t.Setenv("TWITCH_CLIENT_ID", "")
	t.Setenv("TWITCH_CLIENT_SECRET", "")

	_, err := NewClientFromEnv()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestQueryReusesToken(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		require.Equal(t, "test-id", r.Header.Get("Client-ID"))
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"name":"Portal"}]`))
	}))
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	for i := 0; i < 3; i++ {
		var out []Game
		require.NoError(t, client.Query(context.Background(), "games", "fields name;", &out))
		require.Len(t, out, 1)
		require.Equal(t, "Portal", out[0].Name)
	}

	require.Equal(t, int32(1), tokenCalls.Load())
	require.Equal(t, int32(3), apiCalls.Load())
}

func TestQueryRetriesOnceOn401(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":2,"name":"Half-Life"}]`))
	}))
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	var out []Game
	require.NoError(t, client.Query(context.Background(), "games", "fields name;", &out))
	require.Len(t, out, 1)

	require.Equal(t, int32(2), tokenCalls.Load())
	require.Equal(t, int32(2), apiCalls.Load())
}

func TestQueryPacesRetriedCall(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	const delay = 30 * time.Millisecond
	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL).
		SetRequestDelay(delay)

	start := time.Now()
	var out []Game
	require.NoError(t, client.Query(context.Background(), "games", "fields name;", &out))

	// both the initial call and the 401 retry wait out the delay
	require.Equal(t, int32(2), apiCalls.Load())
	require.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestQueryPacingStopsOnCancel(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	// warm the token cache so the canceled Query stops in the pacing
	// wait, not in the token request
	var out []Game
	require.NoError(t, client.Query(context.Background(), "games", "fields name;", &out))
	require.Equal(t, int32(1), apiCalls.Load())

	client.SetRequestDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Query(ctx, "games", "fields name;", &out)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(1), apiCalls.Load())
}

func TestQueryGivesUpAfterSecond401(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	defer tokenSrv.Close()

	var apiCalls atomic.Int32
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	var out []Game
	err := client.Query(context.Background(), "games", "fields name;", &out)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, int32(2), apiCalls.Load())
}

func TestQueryTokenFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer tokenSrv.Close()

	client := NewClient("test-id", "test-secret", "http://127.0.0.1:0", tokenSrv.URL)

	var out []Game
	err := client.Query(context.Background(), "games", "fields name;", &out)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusForbidden, authErr.Status)
}

func capturedBodyServer(t *testing.T, body *string) (*httptest.Server, *httptest.Server) {
	t.Helper()
	var tokenCalls atomic.Int32
	tokenSrv := newTokenServer(t, &tokenCalls)
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		*body = string(buf)
		w.Write([]byte(`[]`))
	}))
	return tokenSrv, apiSrv
}

func TestFilteredOmitsEmptyIDClauses(t *testing.T) {
	var body string
	tokenSrv, apiSrv := capturedBodyServer(t, &body)
	defer tokenSrv.Close()
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	_, err := client.Filtered(context.Background(), nil, []int64{6, 48}, 20)
	require.NoError(t, err)

	require.Contains(t, body, "cover != null")
	require.Contains(t, body, "rating_count > 1")
	require.Contains(t, body, "platforms = (6,48)")
	require.NotContains(t, body, "genres =")
}

func TestSearchEscapesQuotes(t *testing.T) {
	var body string
	tokenSrv, apiSrv := capturedBodyServer(t, &body)
	defer tokenSrv.Close()
	defer apiSrv.Close()

	client := NewClient("test-id", "test-secret", apiSrv.URL, tokenSrv.URL)

	_, err := client.SearchRaw(context.Background(), `portal "2"`, 10)
	require.NoError(t, err)
	require.True(t, strings.Contains(body, `search "portal \"2\"";`), body)
}
