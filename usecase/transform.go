package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"
)

const (
	// ReportWindowDays is the trailing window, today included.
	ReportWindowDays = 28
	reportMaxResults = 200
	dateLayout       = "2006-01-02"
	watchURLTemplate = "https://www.youtube.com/watch?v="
)

// Analytics column names.
const (
	ColumnVideo                   = "video"
	ColumnViews                   = "views"
	ColumnEstimatedMinutesWatched = "estimatedMinutesWatched"
	ColumnAverageViewDuration     = "averageViewDuration"
	ColumnComments                = "comments"
	ColumnLikes                   = "likes"
	ColumnShares                  = "shares"
)

// ReportMetrics is the fixed metric set requested from reports.query, in request order.
var ReportMetrics = []string{
	ColumnViews,
	ColumnEstimatedMinutesWatched,
	ColumnAverageViewDuration,
	ColumnComments,
	ColumnLikes,
	ColumnShares,
}

// ReportWindow returns the start and end dates of the trailing window ending on today.
func ReportWindow(today time.Time) (string, string) {
	start := today.AddDate(0, 0, -(ReportWindowDays - 1))
	return start.Format(dateLayout), today.Format(dateLayout)
}

// BuildReportQuery builds the per-video report request for the window ending on today.
func BuildReportQuery(today time.Time) dto.ReportQuery {
	start, end := ReportWindow(today)
	return dto.ReportQuery{
		IDs:        "channel==MINE",
		StartDate:  start,
		EndDate:    end,
		Metrics:    ReportMetrics,
		Dimensions: []string{ColumnVideo},
		Sort:       "-" + ColumnViews,
		MaxResults: reportMaxResults,
	}
}

// TransformReport maps the header/row table onto MetricsRows by column name.
func TransformReport(report *dto.AnalyticsReport) []model.MetricsRow {
	if report == nil || len(report.Rows) == 0 {
		return []model.MetricsRow{}
	}

	index := make(map[string]int, len(report.ColumnHeaders))
	for i, h := range report.ColumnHeaders {
		index[h.Name] = i
	}
	cell := func(row []interface{}, name string) interface{} {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	rows := make([]model.MetricsRow, 0, len(report.Rows))
	for _, row := range report.Rows {
		minutes := coerceNumber(cell(row, ColumnEstimatedMinutesWatched))
		rows = append(rows, model.MetricsRow{
			VideoID: coerceString(cell(row, ColumnVideo)),
			Metrics: model.VideoMetrics{
				Views:                  coerceNumber(cell(row, ColumnViews)),
				WatchTimeMinutes:       minutes,
				WatchTimeSeconds:       minutes * 60,
				AverageViewDurationSec: coerceNumber(cell(row, ColumnAverageViewDuration)),
				Likes:                  coerceNumber(cell(row, ColumnLikes)),
				Comments:               coerceNumber(cell(row, ColumnComments)),
				Shares:                 coerceNumber(cell(row, ColumnShares)),
			},
		})
	}
	return rows
}

// DistinctVideoIDs returns the non-empty video ids in first-seen order.
func DistinctVideoIDs(rows []model.MetricsRow) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.VideoID == "" {
			continue
		}
		if _, ok := seen[r.VideoID]; ok {
			continue
		}
		seen[r.VideoID] = struct{}{}
		ids = append(ids, r.VideoID)
	}
	return ids
}

// ChunkIDs splits ids into consecutive slices of at most size elements.
func ChunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// NormalizeRecords joins metrics with metadata, drops non-public videos and keeps report order.
func NormalizeRecords(rows []model.MetricsRow, metadata map[string]model.VideoMetadata) []model.StandardRecord {
	records := make([]model.StandardRecord, 0, len(rows))
	for _, row := range rows {
		meta, found := metadata[row.VideoID]
		if found && meta.PrivacyStatus != "" && meta.PrivacyStatus != model.PrivacyPublic {
			continue
		}

		record := model.StandardRecord{
			Platform:  model.PlatformYouTube,
			PostID:    row.VideoID,
			Permalink: watchURLTemplate + row.VideoID,
			Hashtags:  []string{},
			Metrics:   row.Metrics,
		}
		if found {
			createdAt := meta.PublishedAt
			text := meta.Description
			record.CreatedAt = &createdAt
			record.Text = &text
			if meta.Tags != nil {
				record.Hashtags = append([]string{}, meta.Tags...)
			}
			if meta.Title != "" {
				title := meta.Title
				record.Extra.Title = &title
			}
		}
		records = append(records, record)
	}
	return records
}

func coerceNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
