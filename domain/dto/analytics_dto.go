package dto

import "time"

// ReportQuery describes one YouTube Analytics reports.query call
type ReportQuery struct {
	IDs        string
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	Sort       string
	MaxResults int64
}

// ColumnHeader mirrors a result table column header
type ColumnHeader struct {
	Name       string `json:"name"`
	ColumnType string `json:"columnType"`
	DataType   string `json:"dataType"`
}

// AnalyticsReport is the raw header/row table returned by the reports endpoint
type AnalyticsReport struct {
	ColumnHeaders []ColumnHeader  `json:"columnHeaders"`
	Rows          [][]interface{} `json:"rows"`
}

// TokenRequest is the form body posted to the OAuth token endpoint
type TokenRequest struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	GrantType    string `url:"grant_type"`
	RefreshToken string `url:"refresh_token,omitempty"`
	Code         string `url:"code,omitempty"`
	RedirectURI  string `url:"redirect_uri,omitempty"`
}

// TokenResponse is the JSON answer of the OAuth token endpoint
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// SnapshotEvent is published to brokers once a snapshot file exists
type SnapshotEvent struct {
	RunID       string    `json:"run_id"`
	Platform    string    `json:"platform"`
	Date        string    `json:"date"`
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	WrittenAt   time.Time `json:"written_at"`
}
