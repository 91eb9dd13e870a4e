package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSearch(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`<div>검색 결과가 1개 있습니다.</div>` + sampleRowFree))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Search(context.Background(), SearchParams{Tags: "1663,3878", Count: 25, Start: 50})
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Listings, 1)
	require.Equal(t, int64(730), result.Listings[0].AppID)

	require.Equal(t, browserUserAgent, gotUA)
	require.Equal(t, "", gotQuery["query"])
	require.Equal(t, "998", gotQuery["category1"])
	require.Equal(t, "koreana", gotQuery["l"])
	require.Equal(t, "KR", gotQuery["cc"])
	require.Equal(t, "25", gotQuery["count"])
	require.Equal(t, "50", gotQuery["start"])
	require.Equal(t, "1", gotQuery["force_infinite"])
	require.Equal(t, "1_7_7_230_150_1", gotQuery["snr"])
	require.Equal(t, "1663,3878", gotQuery["tags"])
}

func TestClientSearchOmitsEmptyTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasTags := r.URL.Query()["tags"]
		require.False(t, hasTags)
		require.Equal(t, "50", r.URL.Query().Get("count"))
		w.Write([]byte(`<div>검색 결과가 없습니다</div>`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.Empty(t, result.Listings)
	require.Equal(t, 0, result.TotalCount)
}

func TestClientSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Search(context.Background(), SearchParams{})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusForbidden, reqErr.Status)
}
