package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-dev/floectl/pkg/domain"
	"github.com/floe-dev/floectl/pkg/feed"
	"github.com/floe-dev/floectl/pkg/view"
)

type testConfig struct {
	pageCached int
}

func (c testConfig) GetPreviewConfig() (string, time.Duration, int) {
	return "localhost:0", 5 * time.Second, c.pageCached
}
func (testConfig) GetAPIConfig() (string, time.Duration, int) {
	return "https://floe.example.com", 5 * time.Second, 2
}

// testSource serves totalPages pages of pageSize records each
func testSource(totalPages int) feed.SourceFunc {
	return func(_ context.Context, page, size int) (*domain.RecordPage, error) {
		recs := make([]domain.RecordSummary, 0, size)
		for i := 0; i < size; i++ {
			id := int64(page*size + i + 1)
			recs = append(recs, domain.RecordSummary{
				RecordID: id,
				Title:    fmt.Sprintf("record %d", id),
				Nickname: "tester",
				TagNames: []string{"GOLANG"},
			})
		}
		return &domain.RecordPage{
			Content:  recs,
			Pageable: domain.Pageable{PageNumber: page, PageSize: size},
			Last:     page == totalPages-1,
		}, nil
	}
}

func testServer(t *testing.T, totalPages int) (*Server, *httptest.Server) {
	pager := feed.NewPager(testSource(totalPages), 2)
	srv := New(testConfig{}, pager, view.ModeCard, "test", false)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestServer_Status(t *testing.T) {
	_, ts := testServer(t, 3)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
	assert.InDelta(t, 0, status["pages"], 0.01)
	assert.Equal(t, true, status["has_next"])
}

func TestServer_NextPage(t *testing.T) {
	_, ts := testServer(t, 2)

	post := func() map[string]interface{} {
		resp, err := http.Post(ts.URL+"/api/v1/feed/next", "application/json", http.NoBody)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	body := post()
	assert.Equal(t, true, body["fetched"])
	assert.InDelta(t, 1, body["pages"], 0.01)
	assert.Equal(t, true, body["has_next"])

	body = post()
	assert.Equal(t, true, body["fetched"])
	assert.InDelta(t, 2, body["pages"], 0.01)
	assert.Equal(t, false, body["has_next"], "second page is the last one")

	body = post()
	assert.Equal(t, false, body["fetched"], "no fetch past the end")
	assert.InDelta(t, 2, body["pages"], 0.01)
}

func TestServer_PageCachedCap(t *testing.T) {
	pager := feed.NewPager(testSource(5), 2)
	srv := New(testConfig{pageCached: 1}, pager, view.ModeCard, "test", false)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/api/v1/feed/next", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["fetched"])
	assert.InDelta(t, 1, body["pages"], 0.01)

	// the cap is reached, explicit paging refuses further fetches
	resp, err = http.Post(ts.URL+"/api/v1/feed/next", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["fetched"])
	assert.Equal(t, true, body["cache_full"])
	assert.InDelta(t, 1, body["pages"], 0.01)

	// scroll reports at the tail stay quiet too
	resp, err = http.Post(ts.URL+"/api/v1/feed/observe", "application/json",
		strings.NewReader(`{"offset":0,"height":2}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["fired"])
	assert.Equal(t, 2, srv.pager.Len(), "no records past the configured cap")
}

func TestServer_Records(t *testing.T) {
	srv, ts := testServer(t, 2)
	_, err := srv.pager.FetchNext(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/api/v1/records")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Records []view.Item `json:"records"`
		HasNext bool        `json:"has_next"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Records, 2)
	assert.Equal(t, "record-1", body.Records[0].Key)
	assert.True(t, body.HasNext)
}

func TestServer_Reset(t *testing.T) {
	srv, ts := testServer(t, 2)
	_, err := srv.pager.FetchNext(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, srv.pager.Len(), "one fetched page holds two records")

	resp, err := http.Post(ts.URL+"/api/v1/feed/reset", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, srv.pager.Len())
	assert.True(t, srv.pager.HasNext())
}

func TestServer_Observe(t *testing.T) {
	srv, ts := testServer(t, 3)
	_, err := srv.pager.FetchNext(context.Background())
	require.NoError(t, err)

	observe := func(offset, height int) map[string]interface{} {
		payload := fmt.Sprintf(`{"offset":%d,"height":%d}`, offset, height)
		resp, err := http.Post(ts.URL+"/api/v1/feed/observe", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	// near the bottom of the 2-record list, trigger fires and loads page 2
	body := observe(1, 1)
	assert.Equal(t, true, body["fired"])
	assert.InDelta(t, 2, body["pages"], 0.01)

	// top of the longer list, nothing to do
	body = observe(0, 1)
	assert.Equal(t, false, body["fired"])

	// bad payload
	resp, err := http.Post(ts.URL+"/api/v1/feed/observe", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_FeedPage(t *testing.T) {
	t.Run("card mode", func(t *testing.T) {
		_, ts := testServer(t, 1)

		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		page := string(body)
		assert.Contains(t, page, "record-card")
		assert.Contains(t, page, "record 1")
		assert.Contains(t, page, "record 2")
		assert.Contains(t, page, "no more records", "single page feed is complete after first load")
	})

	t.Run("list mode via query", func(t *testing.T) {
		_, ts := testServer(t, 1)

		resp, err := http.Get(ts.URL + "/?mode=list")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "record-line")
	})

	t.Run("bad mode", func(t *testing.T) {
		_, ts := testServer(t, 1)

		resp, err := http.Get(ts.URL + "/?mode=grid")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_RSS(t *testing.T) {
	srv, ts := testServer(t, 1)
	_, err := srv.pager.FetchNext(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	rss := string(body)
	assert.Contains(t, rss, "<rss")
	assert.Contains(t, rss, "record 1")
	assert.Contains(t, rss, "https://floe.example.com/records/1")
}

func TestServer_Ping(t *testing.T) {
	_, ts := testServer(t, 1)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", strings.TrimSpace(string(body)))
}
