package watermark

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresStore(db, "watermarks"), mock
}

func TestPostgresStore_Init(t *testing.T) {
	s, mock := newPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS watermarks")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Init(context.Background()))
}

func TestPostgresStore_Load(t *testing.T) {
	query := regexp.QuoteMeta("SELECT last_millis FROM watermarks WHERE region_id = $1 AND worker_id = $2")

	t.Run("present", func(t *testing.T) {
		s, mock := newPostgresStore(t)
		mock.ExpectQuery(query).
			WithArgs(int64(3), int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"last_millis"}).AddRow(int64(1672600001234)))

		millis, err := s.Load(context.Background(), Key{3, 7})
		require.NoError(t, err)
		assert.Equal(t, int64(1672600001234), millis)
	})

	t.Run("absent", func(t *testing.T) {
		s, mock := newPostgresStore(t)
		mock.ExpectQuery(query).
			WithArgs(int64(3), int64(7)).
			WillReturnError(sql.ErrNoRows)

		millis, err := s.Load(context.Background(), Key{3, 7})
		require.NoError(t, err)
		assert.Equal(t, int64(0), millis)
	})

	t.Run("failure", func(t *testing.T) {
		s, mock := newPostgresStore(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(query).WillReturnError(boom)

		_, err := s.Load(context.Background(), Key{3, 7})
		assert.ErrorIs(t, err, boom)
	})
}

func TestPostgresStore_Save(t *testing.T) {
	s, mock := newPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO watermarks (region_id, worker_id, last_millis) VALUES ($1, $2, $3) " +
			"ON CONFLICT (region_id, worker_id) DO UPDATE SET last_millis = GREATEST(watermarks.last_millis, EXCLUDED.last_millis)",
	)).
		WithArgs(int64(3), int64(7), int64(1672600001234)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Save(context.Background(), Key{3, 7}, 1672600001234))
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newPostgresStore(t)
	mock.ExpectPing()
	assert.NoError(t, s.Ping(context.Background()))
}
