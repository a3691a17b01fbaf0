package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/setof/qna-backend/internal/domain/qna"
	"github.com/setof/qna-backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a file-backed SQLite database with the qna schema.
// One connection keeps concurrent transactions serialized.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "qna.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.QnaModel{}, &models.QnaReplyModel{}))
	return db
}

// newMockDB returns a gorm session on the postgres dialect backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newTestWriter(t *testing.T, writerType qna.WriterType) qna.Writer {
	t.Helper()
	w, err := qna.NewWriter(uuid.New(), writerType, "tester")
	require.NoError(t, err)
	return w
}

func newTestProductQna(t *testing.T, targetID int64) *qna.Qna {
	t.Helper()
	content, err := qna.NewContent("Does it run small?", "I usually wear a medium.")
	require.NoError(t, err)
	q, err := qna.NewProductQna(qna.DetailTypeSize, targetID, newTestWriter(t, qna.WriterTypeCustomer), content, false)
	require.NoError(t, err)
	return q
}

func newTestOrderQna(t *testing.T, targetID int64, images []qna.QnaImage) *qna.Qna {
	t.Helper()
	content, err := qna.NewContent("Where is my parcel?", "It has been a week.")
	require.NoError(t, err)
	q, err := qna.NewOrderQna(qna.DetailTypeShipment, targetID, newTestWriter(t, qna.WriterTypeCustomer), content, true, images)
	require.NoError(t, err)
	return q
}

// createdAt spaces creation times so ordering assertions are stable
func createdAt(i int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
}
