package model

// PlatformYouTube is the platform tag stamped on every record and snapshot file name.
const PlatformYouTube = "youtube"

// PrivacyPublic is the only privacy status that survives normalization.
const PrivacyPublic = "public"

// Credential is the OAuth client plus the long-lived refresh token minted by cmd/authorize.
type Credential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// VideoMetrics holds the per-video counters of the trailing window.
type VideoMetrics struct {
	Views                  float64 `json:"views"                     bson:"views"`
	WatchTimeMinutes       float64 `json:"watch_time_minutes"        bson:"watch_time_minutes"`
	WatchTimeSeconds       float64 `json:"watch_time_seconds"        bson:"watch_time_seconds"`
	AverageViewDurationSec float64 `json:"average_view_duration_sec" bson:"average_view_duration_sec"`
	Likes                  float64 `json:"likes"                     bson:"likes"`
	Comments               float64 `json:"comments"                  bson:"comments"`
	Shares                 float64 `json:"shares"                    bson:"shares"`
}

// MetricsRow is one row of the analytics report after column lookup.
type MetricsRow struct {
	VideoID string       `json:"videoId"`
	Metrics VideoMetrics `json:"metrics"`
}

// VideoMetadata is the subset of a videos.list item the normalizer needs.
type VideoMetadata struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	PublishedAt   string   `json:"publishedAt"`
	PrivacyStatus string   `json:"privacyStatus"`
}

// RecordExtra carries platform specific fields of a StandardRecord.
type RecordExtra struct {
	Title *string `json:"title,omitempty" bson:"title,omitempty"`
}

// StandardRecord is the normalized output unit shared by every data source.
type StandardRecord struct {
	Platform  string       `json:"platform"   bson:"platform"`
	PostID    string       `json:"post_id"    bson:"post_id"`
	Permalink string       `json:"permalink"  bson:"permalink"`
	CreatedAt *string      `json:"created_at" bson:"created_at"`
	Text      *string      `json:"text"       bson:"text"`
	Hashtags  []string     `json:"hashtags"   bson:"hashtags"`
	Metrics   VideoMetrics `json:"metrics"    bson:"metrics"`
	Extra     RecordExtra  `json:"extra"      bson:"extra"`
}
