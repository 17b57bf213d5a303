package persistence

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"yt-analytics/infrastructure/configuration"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the PostgreSQL archive database from archive.psql.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Archive.Psql
	if cfg.Host == "" {
		return nil, fmt.Errorf("archive.psql.host is empty")
	}

	q := url.Values{}
	q.Set("sslmode", "disable")
	if cfg.Host != "localhost" && cfg.Host != "127.0.0.1" {
		q.Set("sslmode", "require")
	}
	u := &url.URL{Scheme: "postgres", Host: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), Path: "/" + cfg.Name}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	u.RawQuery = q.Encode()

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
