package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// TripArchive is a PostgreSQL implementation of repository.TripArchive.
type TripArchive struct {
	q Querier
}

// NewTripArchive creates a new PostgreSQL trip archive.
func NewTripArchive(db *sql.DB) *TripArchive {
	return &TripArchive{q: db}
}

// EnsureSchema creates the trips table if it does not exist.
func (a *TripArchive) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS trips (
			trip_id          TEXT PRIMARY KEY,
			rider_id         TEXT NOT NULL,
			driver_id        TEXT,
			origin_name      TEXT NOT NULL,
			origin_lat       DOUBLE PRECISION NOT NULL,
			origin_lng       DOUBLE PRECISION NOT NULL,
			destination_name TEXT NOT NULL,
			destination_lat  DOUBLE PRECISION NOT NULL,
			destination_lng  DOUBLE PRECISION NOT NULL,
			status           TEXT NOT NULL,
			price            DOUBLE PRECISION NOT NULL DEFAULT 0,
			distance_meters  INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			requested_at     TIMESTAMPTZ NOT NULL,
			matched_at       TIMESTAMPTZ,
			confirmed_at     TIMESTAMPTZ,
			cancelled_at     TIMESTAMPTZ,
			cancelled_by     TEXT,
			cancel_reason    TEXT
		)
	`
	_, err := a.q.ExecContext(ctx, query)
	return err
}

// Save upserts a trip record by trip ID.
func (a *TripArchive) Save(ctx context.Context, record *domain.TripRecord) error {
	query := `
		INSERT INTO trips (trip_id, rider_id, driver_id, origin_name, origin_lat, origin_lng, destination_name, destination_lat, destination_lng, status, price, distance_meters, duration_seconds, requested_at, matched_at, confirmed_at, cancelled_at, cancelled_by, cancel_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (trip_id) DO UPDATE SET
			driver_id = EXCLUDED.driver_id,
			status = EXCLUDED.status,
			price = EXCLUDED.price,
			distance_meters = EXCLUDED.distance_meters,
			duration_seconds = EXCLUDED.duration_seconds,
			matched_at = EXCLUDED.matched_at,
			confirmed_at = EXCLUDED.confirmed_at,
			cancelled_at = EXCLUDED.cancelled_at,
			cancelled_by = EXCLUDED.cancelled_by,
			cancel_reason = EXCLUDED.cancel_reason
	`

	_, err := a.q.ExecContext(ctx, query,
		record.TripID,
		record.RiderID,
		nullString(record.DriverID),
		record.OriginName,
		record.OriginLat,
		record.OriginLng,
		record.DestinationName,
		record.DestinationLat,
		record.DestinationLng,
		string(record.Status),
		record.Price,
		record.DistanceMeters,
		record.DurationSeconds,
		record.RequestedAt,
		nullTime(record.MatchedAt),
		nullTime(record.ConfirmedAt),
		nullTime(record.CancelledAt),
		nullString(record.CancelledBy),
		nullString(record.CancelReason),
	)

	return err
}

// ListByUser returns trips where the user was rider or driver, newest first.
func (a *TripArchive) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.TripRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT trip_id, rider_id, driver_id, origin_name, origin_lat, origin_lng, destination_name, destination_lat, destination_lng, status, price, distance_meters, duration_seconds, requested_at, matched_at, confirmed_at, cancelled_at, cancelled_by, cancel_reason
		FROM trips
		WHERE rider_id = $1 OR driver_id = $1
		ORDER BY requested_at DESC
		LIMIT $2
	`

	rows, err := a.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TripRecord
	for rows.Next() {
		record, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// SummaryByUser aggregates the user's archived trips in one query.
func (a *TripArchive) SummaryByUser(ctx context.Context, userID string) (*domain.TripSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COALESCE(SUM(distance_meters), 0),
			COALESCE(SUM(duration_seconds), 0),
			COALESCE(SUM(price) FILTER (WHERE status = $2), 0)
		FROM trips
		WHERE rider_id = $1 OR driver_id = $1
	`

	var summary domain.TripSummary
	var distanceMeters, durationSeconds int64

	err := a.q.QueryRowContext(ctx, query, userID,
		string(domain.OfferStatusConfirmed),
		string(domain.OfferStatusCancelled),
	).Scan(
		&summary.TotalTrips,
		&summary.ConfirmedTrips,
		&summary.CancelledTrips,
		&distanceMeters,
		&durationSeconds,
		&summary.TotalSpend,
	)
	if err != nil {
		return nil, err
	}

	summary.TotalDistanceKm = float64(distanceMeters) / 1000.0
	summary.TotalHours = float64(durationSeconds) / 3600.0

	return &summary, nil
}

// GetByID retrieves one archived trip.
func (a *TripArchive) GetByID(ctx context.Context, tripID string) (*domain.TripRecord, error) {
	query := `
		SELECT trip_id, rider_id, driver_id, origin_name, origin_lat, origin_lng, destination_name, destination_lat, destination_lng, status, price, distance_meters, duration_seconds, requested_at, matched_at, confirmed_at, cancelled_at, cancelled_by, cancel_reason
		FROM trips WHERE trip_id = $1
	`

	record, err := scanTrip(a.q.QueryRowContext(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (*domain.TripRecord, error) {
	var record domain.TripRecord
	var driverID, cancelledBy, cancelReason sql.NullString
	var matchedAt, confirmedAt, cancelledAt sql.NullTime
	var status string

	err := s.Scan(
		&record.TripID,
		&record.RiderID,
		&driverID,
		&record.OriginName,
		&record.OriginLat,
		&record.OriginLng,
		&record.DestinationName,
		&record.DestinationLat,
		&record.DestinationLng,
		&status,
		&record.Price,
		&record.DistanceMeters,
		&record.DurationSeconds,
		&record.RequestedAt,
		&matchedAt,
		&confirmedAt,
		&cancelledAt,
		&cancelledBy,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	record.Status = domain.OfferStatus(status)
	if driverID.Valid {
		record.DriverID = driverID.String
	}
	if matchedAt.Valid {
		record.MatchedAt = matchedAt.Time
	}
	if confirmedAt.Valid {
		record.ConfirmedAt = confirmedAt.Time
	}
	if cancelledAt.Valid {
		record.CancelledAt = cancelledAt.Time
	}
	if cancelledBy.Valid {
		record.CancelledBy = cancelledBy.String
	}
	if cancelReason.Valid {
		record.CancelReason = cancelReason.String
	}

	return &record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ repository.TripArchive = (*TripArchive)(nil)
