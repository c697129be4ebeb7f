package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/internal/metrics"
	"github.com/betbot/brokersync/internal/services"
	"github.com/betbot/brokersync/pkg/config"
	"github.com/betbot/brokersync/pkg/logger"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	metricsAddr := flag.String("metrics", "", "metrics/debug 监听地址（例如 127.0.0.1:6060，为空则不启动）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	bc, err := cfg.ActiveBroker()
	if err != nil {
		logger.Errorf("配置错误: %v", err)
		os.Exit(1)
	}
	mode, err := bc.Mode()
	if err != nil {
		logger.Errorf("配置错误: %v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *metricsAddr != "" {
		if _, err := metrics.StartAsync(ctx, *metricsAddr); err != nil {
			logger.Warnf("metrics 服务启动失败: %v", err)
		}
	}

	client := api.NewClient(bc.BaseURL, bc.APIKey, bc.APISecret)
	svc := services.NewBrokerService(cfg.Broker, bc.Pair, mode, client, cfg.QuoteLevels)

	fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("🚀 交易所行情/持仓监控\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("交易所: %s\n", cfg.Broker)
	fmt.Printf("交易对: %s\n", bc.Pair)
	fmt.Printf("交易模式: %s\n", mode)
	fmt.Printf("轮询间隔: %d秒\n", cfg.PollInterval)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	ticker := time.NewTicker(time.Duration(cfg.PollInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("收到退出信号，停止监控")
			return
		case <-ticker.C:
			pollOnce(ctx, svc)
		}
	}
}

// pollOnce 拉取一轮行情和持仓并打印摘要
func pollOnce(ctx context.Context, svc *services.BrokerService) {
	quotes := svc.FetchQuotes(ctx)
	if len(quotes) == 0 {
		// 空列表表示“行情不可用”，不是“市场是空的”
		logger.Warnf("行情不可用: broker=%s", svc.Broker())
	} else {
		bestAsk, bestBid := bestPrices(quotes)
		logger.Infof("📊 [行情] broker=%s quotes=%d bestAsk=%.0f bestBid=%.0f",
			svc.Broker(), len(quotes), bestAsk, bestBid)
	}

	position, err := svc.GetPosition(ctx)
	if err != nil {
		logger.Warnf("查询持仓失败: %v", err)
		return
	}
	logger.Infof("💰 [持仓] broker=%s position=%.8f", svc.Broker(), position)
}

// bestPrices 从报价列表取各侧第一档（列表保持最优价优先）
func bestPrices(quotes []domain.Quote) (bestAsk, bestBid float64) {
	for _, q := range quotes {
		if q.Side == domain.QuoteSideAsk && bestAsk == 0 {
			bestAsk = q.Price
		}
		if q.Side == domain.QuoteSideBid && bestBid == 0 {
			bestBid = q.Price
		}
		if bestAsk != 0 && bestBid != 0 {
			break
		}
	}
	return bestAsk, bestBid
}
