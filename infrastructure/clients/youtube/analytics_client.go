package youtube

import (
	"context"
	"fmt"
	"strings"

	"yt-analytics/domain/dto"
	"yt-analytics/infrastructure/logger"

	"google.golang.org/api/youtubeanalytics/v2"
)

// QueryReport runs one reports.query call and returns the raw header/row table
func (c *Client) QueryReport(ctx context.Context, accessToken string, q dto.ReportQuery) (*dto.AnalyticsReport, error) {
	service, err := youtubeanalytics.NewService(ctx, c.options(accessToken, c.analyticsEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube Analytics service: %w", err)
	}

	call := service.Reports.Query().
		Ids(q.IDs).
		StartDate(q.StartDate).
		EndDate(q.EndDate).
		Metrics(strings.Join(q.Metrics, ","))
	if len(q.Dimensions) > 0 {
		call = call.Dimensions(strings.Join(q.Dimensions, ","))
	}
	if q.Sort != "" {
		call = call.Sort(q.Sort)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, toUpstreamError("youtube analytics reports", err)
	}

	report := &dto.AnalyticsReport{
		ColumnHeaders: make([]dto.ColumnHeader, 0, len(response.ColumnHeaders)),
		Rows:          response.Rows,
	}
	for _, h := range response.ColumnHeaders {
		if h == nil {
			continue
		}
		report.ColumnHeaders = append(report.ColumnHeaders, dto.ColumnHeader{
			Name:       h.Name,
			ColumnType: h.ColumnType,
			DataType:   h.DataType,
		})
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"startDate": q.StartDate,
		"endDate":   q.EndDate,
		"rows":      len(report.Rows),
	}).Info("Analytics report fetched")
	return report, nil
}
