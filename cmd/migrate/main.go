package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/restohub/backend/internal/config"
	"github.com/restohub/backend/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var command string

	flag.StringVar(&command, "cmd", "up", "要执行的迁移命令 (up, down, version)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	switch command {
	case "up":
		err = migrations.Up(context.Background(), dbpool)
	case "down":
		err = migrations.Down(context.Background(), dbpool)
	case "version":
		var version int64
		version, err = migrations.Version(context.Background(), dbpool)
		if err == nil {
			logger.Info("当前数据库版本", "version", version)
		}
	default:
		logger.Error("未知的迁移命令", "cmd", command)
		return
	}
	if err != nil {
		logger.Error("迁移失败", "cmd", command, "error", err)
		return
	}

	logger.Info("迁移命令执行成功", "cmd", command)
}
