package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SiteHealth summarizes how far the derived-asset pipeline is behind.
type SiteHealth struct {
	TotalPhotos        int64 `json:"total_photos"`
	PhotosPendingSizes int64 `json:"photos_pending_sizes"`
	PendingSizes       int64 `json:"pending_sizes"`
	PendingMetadata    int64 `json:"pending_metadata"`
}

func countQuery(db *sql.DB, builder sq.SelectBuilder) (int64, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to run count query: %w", err)
	}
	return count, nil
}

// GetSiteHealth computes the pipeline backlog counters. It runs on the
// raw connection so that the aggregate joins stay hand-tuned.
func GetSiteHealth(db *sql.DB) (SiteHealth, error) {
	var health SiteHealth
	var err error

	health.TotalPhotos, err = countQuery(db, psql.Select("COUNT(*)").From("photos"))
	if err != nil {
		return health, err
	}

	totalSizes, err := countQuery(db, psql.Select("COUNT(*)").From("sizes"))
	if err != nil {
		return health, err
	}

	actualPairs, err := countQuery(db, psql.Select("COUNT(*)").From("photo_sizes"))
	if err != nil {
		return health, err
	}

	health.PendingSizes = health.TotalPhotos*totalSizes - actualPairs
	if health.PendingSizes < 0 {
		health.PendingSizes = 0
	}

	// photos whose photo_sizes count falls short of the size registry
	photosComplete, err := countQuery(db, psql.
		Select("COUNT(*)").
		FromSelect(psql.
			Select("photos.id").
			From("photos").
			LeftJoin("photo_sizes ON photo_sizes.photo_id = photos.id").
			GroupBy("photos.id").
			Having("COUNT(photo_sizes.id) >= ?", totalSizes), "complete"))
	if err != nil {
		return health, err
	}
	health.PhotosPendingSizes = health.TotalPhotos - photosComplete
	if health.PhotosPendingSizes < 0 {
		health.PhotosPendingSizes = 0
	}

	health.PendingMetadata, err = countQuery(db, psql.
		Select("COUNT(*)").
		From("photos").
		LeftJoin("photo_metadata ON photo_metadata.photo_id = photos.id").
		Where("photo_metadata.id IS NULL"))
	if err != nil {
		return health, err
	}

	return health, nil
}
