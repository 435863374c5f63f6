package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shiftwatch/internal/config"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertAlertSQL = `INSERT INTO change_alerts (
        series,
        position,
        change_type,
        confidence,
        algorithm,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (series, position, change_type) DO UPDATE
    SET confidence = EXCLUDED.confidence,
        algorithm  = EXCLUDED.algorithm,
        channels   = EXCLUDED.channels
    RETURNING id, series, position, change_type, confidence, algorithm, channels, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        series,
        position,
        change_type,
        confidence,
        algorithm,
        channels,
        created_at
    FROM change_alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	latestAlertPositionSQL = `SELECT MAX(position)
    FROM change_alerts
    WHERE series = $1;`

	deleteAlertsBeforeSQL = `DELETE FROM change_alerts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SeriesStore defines read access to the watched series.
type SeriesStore interface {
	ListSeriesPoints(ctx context.Context) ([]SeriesPoint, error)
	ListRecentPoints(ctx context.Context, limit int) ([]SeriesPoint, error)
	CountPoints(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
	LatestAlertPosition(ctx context.Context, series string) (decimal.Decimal, bool, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to series points and alerts. The series table and
// column names come from configuration, so those statements are rendered with
// sanitised identifiers rather than kept as constants.
type Store struct {
	pool *pgxpool.Pool

	listPointsSQL  string
	recentPointsSQL string
	countPointsSQL string
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool, cfg config.DatabaseConfig) *Store {
	table := pgx.Identifier{cfg.SeriesTable}.Sanitize()
	pos := pgx.Identifier{cfg.PositionColumn}.Sanitize()
	val := pgx.Identifier{cfg.ValueColumn}.Sanitize()

	return &Store{
		pool: pool,
		listPointsSQL: fmt.Sprintf(
			`SELECT %s, %s FROM %s ORDER BY %s;`, pos, val, table, pos),
		recentPointsSQL: fmt.Sprintf(
			`SELECT %s, %s FROM (
                SELECT %s, %s FROM %s ORDER BY %s DESC LIMIT $1
            ) tail ORDER BY %s;`, pos, val, pos, val, table, pos, pos),
		countPointsSQL: fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, table),
	}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// ListSeriesPoints returns the full series ordered by position.
func (s *Store) ListSeriesPoints(ctx context.Context) ([]SeriesPoint, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, s.listPointsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list series points: %w", queryErr)
	}
	defer rows.Close()

	return collectPoints(rows, 0)
}

// ListRecentPoints returns the trailing window of the series, oldest first.
func (s *Store) ListRecentPoints(ctx context.Context, limit int) ([]SeriesPoint, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, s.recentPointsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent points: %w", queryErr)
	}
	defer rows.Close()

	return collectPoints(rows, limit)
}

// CountPoints counts stored observations.
func (s *Store) CountPoints(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, s.countPointsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count points: %w", scanErr)
	}
	return count, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Series,
		alert.Position.String(),
		alert.ChangeType,
		alert.Confidence.String(),
		alert.Algorithm,
		alert.Channels,
	)

	rec, scanErr := scanAlert(row)
	if scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// LatestAlertPosition returns the largest alerted position for a series.
func (s *Store) LatestAlertPosition(ctx context.Context, seriesName string) (decimal.Decimal, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return decimal.Decimal{}, false, err
	}

	var posStr *string
	if scanErr := pool.QueryRow(ctx, latestAlertPositionSQL, seriesName).Scan(&posStr); scanErr != nil {
		return decimal.Decimal{}, false, fmt.Errorf("latest alert position: %w", scanErr)
	}
	if posStr == nil {
		return decimal.Decimal{}, false, nil
	}

	pos, convErr := decimal.NewFromString(*posStr)
	if convErr != nil {
		return decimal.Decimal{}, false, fmt.Errorf("parse alert position: %w", convErr)
	}
	return pos, true, nil
}

// DeleteAlertsBefore deletes historical alerts.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alerts before: %w", execErr)
	}
	return nil
}

func collectPoints(rows pgx.Rows, sizeHint int) ([]SeriesPoint, error) {
	points := make([]SeriesPoint, 0, sizeHint)
	for rows.Next() {
		var posStr, valStr string
		if err := rows.Scan(&posStr, &valStr); err != nil {
			return nil, err
		}

		pos, err := decimal.NewFromString(posStr)
		if err != nil {
			return nil, fmt.Errorf("parse position: %w", err)
		}
		val, err := decimal.NewFromString(valStr)
		if err != nil {
			return nil, fmt.Errorf("parse value: %w", err)
		}

		points = append(points, SeriesPoint{Position: pos, Value: val})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return points, nil
}

func scanAlert(row pgx.Row) (AlertRecord, error) {
	var rec AlertRecord
	var posStr, confStr string
	if err := row.Scan(
		&rec.ID,
		&rec.Series,
		&posStr,
		&rec.ChangeType,
		&confStr,
		&rec.Algorithm,
		&rec.Channels,
		&rec.CreatedAt,
	); err != nil {
		return AlertRecord{}, err
	}

	var convErr error
	rec.Position, convErr = decimal.NewFromString(posStr)
	if convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse position: %w", convErr)
	}
	rec.Confidence, convErr = decimal.NewFromString(confStr)
	if convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse confidence: %w", convErr)
	}

	return rec, nil
}
