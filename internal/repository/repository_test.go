package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"swachhsetu/internal/model"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return openMockDB(t, sqlDB), mock
}

func openMockDB(t *testing.T, sqlDB *sql.DB) *gorm.DB {
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.New(log.New(io.Discard, "", log.LstdFlags), logger.Config{LogLevel: logger.Silent}),
	})
	require.NoError(t, err)
	return gormDB
}

func TestReportRepository_FindByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `reports`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	report, err := repo.FindByID(context.Background(), uuid.New())

	assert.Nil(t, report)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_Delete_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `reports`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_CountByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) AS count FROM `reports`").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("resolved", 2).
			AddRow("rejected", 1))

	counts, err := repo.CountByStatus(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(6), counts.Total)
	assert.Equal(t, int64(3), counts.Pending)
	assert.Equal(t, int64(2), counts.Resolved)
	assert.Equal(t, int64(1), counts.Rejected)
	assert.Zero(t, counts.InProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_CountByColumn_RejectsUnknownColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	_, err := repo.CountByColumn(context.Background(), "title; DROP TABLE reports")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateRole(context.Background(), uuid.New(), model.RoleModerator)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_Subscribe_IgnoresDuplicates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `schedule_subscriptions`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Subscribe(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_OtherOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `notifications` WHERE id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.MarkRead(context.Background(), uuid.New(), uuid.New(), time.Now())

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_LeavesPointsAlone(t *testing.T) {
	var statements []string
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		statements = append(statements, actual)
		if !strings.Contains(actual, expected) {
			return fmt.Errorf("query %q does not contain %q", actual, expected)
		}
		return nil
	})
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	repo := NewUserRepository(openMockDB(t, sqlDB))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.UpdateProfile(context.Background(), uuid.New(), map[string]interface{}{
		"name":      "Asha Patil",
		"dark_mode": true,
		"city":      "Pune",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "`name`")
	assert.Contains(t, statements[0], "`dark_mode`")
	assert.NotContains(t, statements[0], "`points`")
	assert.NotContains(t, statements[0], "`level`")
	assert.NotContains(t, statements[0], "`role`")
}

func TestUserRepository_UpdateProfile_RejectsOtherColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	err := repo.UpdateProfile(context.Background(), uuid.New(), map[string]interface{}{"points": 500})

	assert.ErrorIs(t, err, gorm.ErrInvalidField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_ListWithin_AcrossAntimeridian(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT \\* FROM `reports` WHERE .*longitude >= \\? OR longitude <= \\?").
		WithArgs(-17.05, -16.95, 179.95, -179.95).
		WillReturnRows(sqlmock.NewRows([]string{"id", "latitude", "longitude"}).
			AddRow(id.String(), -17.0, -179.9999))

	reports, err := repo.ListWithin(context.Background(), Bounds{
		MinLat: -17.05, MaxLat: -16.95,
		MinLng: 179.95, MaxLng: -179.95,
	}, nil)

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, id, reports[0].ID)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	txm := NewTxManager(db)
	failure := fmt.Errorf("transition rejected")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := txm.WithTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		assert.NotNil(t, tx.Reports)
		assert.NotNil(t, tx.Users)
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}
