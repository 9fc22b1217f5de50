package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/config"
	"github.com/restohub/backend/internal/repository"
	"github.com/restohub/backend/internal/seed"
	"github.com/restohub/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var establishmentIDParam string
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机餐厅, 2: 插入随机时段模板, 3: 插入随机例外, 4: 从 CSV 导入时段模板)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&establishmentIDParam, "establishment-id", "", "操作 2、3、4 对应的餐厅 ID")
	flag.StringVar(&file, "file", "./internal/seed/data/slot_templates.csv", "操作 4 读取的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 操作 2、3、4 都需要一个已存在的餐厅
	loadEstablishmentID := func() (uuid.UUID, bool) {
		id, err := uuid.Parse(establishmentIDParam)
		if err != nil {
			slog.Error("请输入合法的餐厅 ID", slog.String("establishment_id", establishmentIDParam))
			return uuid.Nil, false
		}
		if _, err := repo.GetEstablishmentByID(id); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的餐厅不存在", slog.String("establishment_id", establishmentIDParam))
			default:
				slog.Error("无法获取餐厅", slog.String("error", err.Error()))
			}
			return uuid.Nil, false
		}
		return id, true
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的餐厅数量")
			return
		}

		organizationID, err := uuid.Parse(cfg.Seed.OrganizationID)
		if err != nil {
			slog.Error("配置中的组织 ID 无效", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			est := utils.GenerateRandomEstablishment(organizationID, cfg.Establishment.DefaultTimezone)
			if err := repo.CreateEstablishment(est); err != nil {
				slog.Error("无法插入餐厅", slog.String("error", err.Error()))
				continue
			}

			slog.Info("已插入餐厅", slog.String("id", est.ID.String()), slog.String("name", est.Name), slog.String("slug", est.Slug))
			cnt++
		}

		slog.Info("插入餐厅成功", slog.Int("count", cnt))
	case 2:
		establishmentID, ok := loadEstablishmentID()
		if !ok {
			return
		}

		existing, err := repo.GetSlotTemplatesByEstablishment(establishmentID)
		if err != nil {
			slog.Error("无法获取时段模板", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, st := range utils.GenerateRandomSlotTemplates(establishmentID) {
			if err := utils.ValidateSlotTemplate(st, existing); err != nil {
				slog.Warn("随机时段模板与已有模板冲突，已跳过", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateSlotTemplate(st); err != nil {
				slog.Error("无法插入时段模板", slog.String("error", err.Error()))
				continue
			}

			existing = append(existing, *st)
			cnt++
		}

		slog.Info("插入时段模板成功", slog.Int("count", cnt))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的例外数量")
			return
		}

		establishmentID, ok := loadEstablishmentID()
		if !ok {
			return
		}

		est, err := repo.GetEstablishmentByID(establishmentID)
		if err != nil {
			slog.Error("无法获取餐厅", slog.String("error", err.Error()))
			return
		}
		templates, err := repo.GetSlotTemplatesByEstablishment(establishmentID)
		if err != nil {
			slog.Error("无法获取时段模板", slog.String("error", err.Error()))
			return
		}

		loc, err := time.LoadLocation(est.Timezone)
		if err != nil {
			loc = time.UTC
		}
		from := availability.DateOf(time.Now(), loc)

		cnt := 0
		for i := 0; i < n; i++ {
			e := utils.GenerateRandomException(est, templates, from)
			if err := repo.CreateException(e); err != nil {
				slog.Error("无法插入例外", slog.String("error", err.Error()))
				continue
			}

			slog.Info("已插入例外", slog.String("summary", utils.FormatExceptionSummary(e)), slog.String("reason", e.Reason))
			cnt++
		}

		slog.Info("插入例外成功", slog.Int("count", cnt))
	case 4:
		establishmentID, ok := loadEstablishmentID()
		if !ok {
			return
		}

		seed.ImportSlotTemplates(repo, establishmentID, file)
	default:
		slog.Error("指定的操作非法")
	}
}
