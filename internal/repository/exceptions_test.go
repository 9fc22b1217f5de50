package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/config"
	"github.com/restohub/backend/internal/domain"
	"github.com/restohub/backend/internal/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// newTestRepository 连接 TEST_DATABASE_DSN 指定的数据库，未设置时跳过
func newTestRepository(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 10
	cfg.Database.TransactionTimeout = 20

	return NewRepository(cfg, db), db
}

func TestGetExceptionsForDateReturnsMalformedRows(t *testing.T) {
	repo, db := newTestRepository(t)

	est := &domain.Establishment{
		OrganizationID: uuid.New(),
		Name:           "测试餐厅",
		Slug:           "test-" + uuid.NewString()[:8],
		Timezone:       "Asia/Shanghai",
	}
	require.NoError(t, repo.CreateEstablishment(est))
	t.Cleanup(func() { _ = repo.DeleteEstablishment(est.ID) })

	insert := func(exceptionType string, date, startDate, endDate any) {
		_, err := db.Exec(`
			INSERT INTO exceptions (establishment_id, organization_id, exception_type, date, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, est.ID, est.OrganizationID, exceptionType, date, startDate, endDate)
		require.NoError(t, err)
	}

	insert("single_day", "2024-01-01", nil, nil) // 当天
	insert("period", nil, "2023-12-30", "2024-01-02")
	insert("single_day", "2024-01-02", nil, nil) // 其他日期，不应返回
	insert("single_day", nil, nil, nil)          // 缺少 date
	insert("service", nil, nil, nil)             // 缺少 date 和模板
	insert("period", nil, "2023-12-30", nil)     // 缺少结束日期

	exceptions, err := repo.GetExceptionsForDate(est.ID, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, exceptions, 5)

	assert.Len(t, availability.Skipped(exceptions), 3)
}
