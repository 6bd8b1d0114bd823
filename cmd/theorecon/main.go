// theorecon 对指定交易日区间做一次理论价比对，输出 JSON 报告，有 break 时以 2 退出
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/application"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/internal/theoprice/infrastructure"
	"github.com/wyfcoding/theoprice/pkg/config"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/theoprice.toml", "path to config file")
	fromFlag := flag.String("from", "", "first trading date, YYYYMMDD")
	toFlag := flag.String("to", "", "last trading date, YYYYMMDD (defaults to -from)")
	linesFlag := flag.Bool("lines", false, "include per-issue lines in the report")
	flag.Parse()

	if *toFlag == "" {
		*toFlag = *fromFlag
	}
	from, err := application.ParseDate(*fromFlag)
	if err != nil {
		log.Fatalf("invalid -from %q: %v", *fromFlag, err)
	}
	to, err := application.ParseDate(*toFlag)
	if err != nil {
		log.Fatalf("invalid -to %q: %v", *toFlag, err)
	}

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化日志，stdout 留给报告
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if loggerCfg.Output == "stdout" {
		loggerCfg.Output = "stderr"
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tolerance, err := decimal.NewFromString(cfg.Reconcile.Tolerance)
	if err != nil {
		logger.Fatal(ctx, "Invalid reconcile tolerance", "tolerance", cfg.Reconcile.Tolerance, "error", err)
	}

	// 3. 连接输入库、缓存与 Kafka
	stack, err := infrastructure.Build(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize infrastructure", "error", err)
	}
	defer stack.Close()
	if stack.Inputs == nil {
		logger.Fatal(ctx, "database.dsn is required for reconciliation")
	}

	// 4. 比对
	svc := application.NewReconciliationService(
		stack.Inputs,
		stack.Publisher,
		domain.NewTheoPriceDispatcher(),
		metrics.New("recon"),
		tolerance,
		cfg.Reconcile.Workers,
	)
	report, err := svc.Run(ctx, from, to)
	if err != nil {
		logger.Error(ctx, "Reconciliation failed", "error", err)
		stack.Close()
		os.Exit(1)
	}

	// 5. 输出报告
	if !*linesFlag {
		report.Lines = nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error(ctx, "Failed to write report", "error", err)
		stack.Close()
		os.Exit(1)
	}
	if report.Breaks > 0 {
		stack.Close()
		os.Exit(2)
	}
}
