package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewYouTubeClient(&Config{
		AnalyticsEndpoint: srv.URL + "/",
		DataEndpoint:      srv.URL + "/",
		Timeout:           5 * time.Second,
		Transport:         srv.Client().Transport,
	})
	return client, srv
}

func TestQueryReport(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/reports"), r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"kind": "youtubeAnalytics#resultTable",
			"columnHeaders": [
				{"name": "video", "columnType": "DIMENSION", "dataType": "STRING"},
				{"name": "views", "columnType": "METRIC", "dataType": "INTEGER"}
			],
			"rows": [["abc123", 100], ["def456", 7]]
		}`)
	})

	report, err := client.QueryReport(context.Background(), "ya29.token", dto.ReportQuery{
		IDs:        "channel==MINE",
		StartDate:  "2026-09-20",
		EndDate:    "2026-10-17",
		Metrics:    []string{"views", "likes"},
		Dimensions: []string{"video"},
		Sort:       "-views",
		MaxResults: 200,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer ya29.token", gotAuth)
	assert.Equal(t, "channel==MINE", gotQuery["ids"])
	assert.Equal(t, "2026-09-20", gotQuery["startDate"])
	assert.Equal(t, "2026-10-17", gotQuery["endDate"])
	assert.Equal(t, "views,likes", gotQuery["metrics"])
	assert.Equal(t, "video", gotQuery["dimensions"])
	assert.Equal(t, "-views", gotQuery["sort"])
	assert.Equal(t, "200", gotQuery["maxResults"])

	require.Len(t, report.ColumnHeaders, 2)
	assert.Equal(t, "views", report.ColumnHeaders[1].Name)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "abc123", report.Rows[0][0])
	assert.Equal(t, float64(100), report.Rows[0][1])
}

func TestQueryReport_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"Forbidden"}}`)
	})

	_, err := client.QueryReport(context.Background(), "tok", dto.ReportQuery{IDs: "channel==MINE", Metrics: []string{"views"}})

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream), "got %v", err)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "Forbidden")
}

func TestListVideos(t *testing.T) {
	var gotIDs string
	var gotParts string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/videos"), r.URL.Path)
		gotIDs = strings.Join(r.URL.Query()["id"], ",")
		gotParts = strings.Join(r.URL.Query()["part"], ",")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"items": [
				{"id": "abc123", "snippet": {"title": "Hello", "description": "desc", "tags": ["go", "api"], "publishedAt": "2026-09-01T10:00:00Z"}, "status": {"privacyStatus": "public"}},
				{"id": "", "snippet": {"title": "no id"}},
				{"id": "def456", "snippet": {"title": ""}, "status": {"privacyStatus": "private"}}
			]
		}`)
	})

	videos, err := client.ListVideos(context.Background(), "tok", []string{"abc123", "def456"})

	require.NoError(t, err)
	assert.Equal(t, "abc123,def456", gotIDs)
	assert.Equal(t, "snippet,status", gotParts)
	require.Len(t, videos, 2)
	assert.Equal(t, model.VideoMetadata{
		ID: "abc123", Title: "Hello", Description: "desc", Tags: []string{"go", "api"},
		PublishedAt: "2026-09-01T10:00:00Z", PrivacyStatus: "public",
	}, videos[0])
	assert.Equal(t, []string{}, videos[1].Tags)
	assert.Equal(t, "private", videos[1].PrivacyStatus)
}

func TestListVideos_RejectsOversizedBatch(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ids := make([]string, MaxIDsPerRequest+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("v%d", i)
	}

	_, err := client.ListVideos(context.Background(), "tok", ids)

	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestListVideos_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"code":500,"message":"backendError"}}`)
	})

	_, err := client.ListVideos(context.Background(), "tok", []string{"abc"})

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
}
