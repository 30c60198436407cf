package watermark

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore keeps marks in table. The name is interpolated into the
// queries and must come from trusted configuration.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db, table}
}

// Init creates the table if it does not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			region_id INTEGER NOT NULL,
			worker_id INTEGER NOT NULL,
			last_millis BIGINT NOT NULL,
			PRIMARY KEY (region_id, worker_id)
		)`, s.table,
	))
	return err
}

func (s *PostgresStore) Load(ctx context.Context, key Key) (int64, error) {
	var millis int64
	err := s.db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT last_millis FROM %s WHERE region_id = $1 AND worker_id = $2", s.table),
		key.RegionID, key.WorkerID,
	).Scan(&millis)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return millis, err
}

func (s *PostgresStore) Save(ctx context.Context, key Key, millis int64) error {
	_, err := s.db.ExecContext(
		ctx,
		fmt.Sprintf(
			"INSERT INTO %[1]s (region_id, worker_id, last_millis) VALUES ($1, $2, $3) "+
				"ON CONFLICT (region_id, worker_id) DO UPDATE SET last_millis = GREATEST(%[1]s.last_millis, EXCLUDED.last_millis)",
			s.table,
		),
		key.RegionID, key.WorkerID, millis,
	)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
