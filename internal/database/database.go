package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"Eat42/internal/config"
	"Eat42/internal/metabolic"
)

// ErrUserNotFound is returned when no user row matches the identifier.
var ErrUserNotFound = errors.New("user not found")

// dateLayout is how pregnancy_start_date is stored.
const dateLayout = "2006-01-02"

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	Close()

	// RecentGlucoseReadings returns up to limit readings for the user,
	// newest first.
	RecentGlucoseReadings(ctx context.Context, userID string, limit int) ([]metabolic.Reading, error)

	// PregnancyWeek returns the user's current pregnancy week, or 0 when no
	// start date is recorded.
	PregnancyWeek(ctx context.Context, userID string) (int, error)
}

type service struct {
	pool *pgxpool.Pool
	name string
	now  func() time.Time
}

// New opens a connection pool for cfg and verifies it with a ping.
func New(ctx context.Context, cfg config.Database) (Service, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Database, err)
	}

	log.Info().Str("database", cfg.Database).Str("host", cfg.Host).Msg("Connected to database")
	return &service{pool: pool, name: cfg.Database, now: time.Now}, nil
}

/* ====================================================================
                   		Queries
==================================================================== */

const recentGlucoseSQL = `SELECT level, "timestamp" FROM glucoselog
WHERE user_id::text = $1
ORDER BY "timestamp" DESC
LIMIT $2`

func (s *service) RecentGlucoseReadings(ctx context.Context, userID string, limit int) ([]metabolic.Reading, error) {
	rows, err := s.pool.Query(ctx, recentGlucoseSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query glucose readings: %w", err)
	}

	readings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (metabolic.Reading, error) {
		var r metabolic.Reading
		err := row.Scan(&r.Value, &r.Timestamp)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan glucose readings: %w", err)
	}
	return readings, nil
}

const pregnancyStartSQL = `SELECT pregnancy_start_date FROM "user" WHERE id::text = $1`

func (s *service) PregnancyWeek(ctx context.Context, userID string) (int, error) {
	var start *string
	err := s.pool.QueryRow(ctx, pregnancyStartSQL, userID).Scan(&start)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query pregnancy start: %w", err)
	}
	if start == nil || *start == "" {
		return 0, nil
	}
	return weeksSince(*start, s.now())
}

// weeksSince returns the whole weeks elapsed between start and now, never
// negative.
func weeksSince(start string, now time.Time) (int, error) {
	t, err := time.ParseInLocation(dateLayout, start, now.Location())
	if err != nil {
		return 0, fmt.Errorf("parse pregnancy start %q: %w", start, err)
	}
	days := int(now.Sub(t).Hours() / 24)
	if days < 0 {
		return 0, nil
	}
	return days / 7, nil
}

/* ====================================================================
                   		Health
==================================================================== */

// Health checks the health of the database connection.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("Database ping failed")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["empty_acquire_count"] = strconv.FormatInt(poolStats.EmptyAcquireCount(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() {
	log.Info().Str("database", s.name).Msg("Disconnected from database")
	s.pool.Close()
}
