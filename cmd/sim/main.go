package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"

	"github.com/palemoky/blackjack-sim/internal/config"
	"github.com/palemoky/blackjack-sim/internal/logger"
	"github.com/palemoky/blackjack-sim/internal/sim"
	"github.com/palemoky/blackjack-sim/internal/storage"
	"github.com/palemoky/blackjack-sim/internal/ui"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envPath := flag.String("env", ".env", "环境变量文件路径")
	shoes := flag.Int("shoes", 0, "模拟靴数 (0 使用配置)")
	seed := flag.Uint64("seed", 0, "随机种子 (0 使用配置或随机)")
	workers := flag.Int("workers", 0, "并发数 (0 使用配置)")
	useTUI := flag.Bool("tui", false, "显示交互式进度界面")
	logDir := flag.String("log-dir", "", "日志目录 (默认 ~/.blackjack-sim)")
	flag.Parse()

	if err := logger.Init(*logDir); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	cfg, err := loadConfig(*configPath, *envPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *shoes > 0 {
		cfg.Simulation.Shoes = *shoes
	}
	if *seed > 0 {
		cfg.Simulation.Seed = *seed
	}
	if *workers > 0 {
		cfg.Simulation.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Fatalf("加载策略表失败: %v", err)
	}
	opts, err := cfg.SimOptions()
	if err != nil {
		log.Fatalf("配置无效: %v", err)
	}
	runner, err := sim.NewRunner(engine, opts)
	if err != nil {
		log.Fatalf("创建模拟器失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *storage.ResultStore
	if cfg.Redis.Enabled {
		client := storage.NewRedisClient(cfg.Redis)
		defer func() { _ = client.Close() }()
		store = storage.NewResultStore(client)
		if err := store.Ping(ctx); err != nil {
			pterm.Warning.Printf("Redis 不可用，结果不会保存: %v\n", err)
			store = nil
		}
	}

	var (
		mu      sync.Mutex
		reports []sim.ShoeReport
	)
	collect := func(rep sim.ShoeReport) {
		mu.Lock()
		reports = append(reports, rep)
		mu.Unlock()
		if store != nil {
			if err := store.AppendShoe(ctx, rep); err != nil {
				logger.LogError("save shoe %d: %v", rep.Index, err)
			}
		}
	}

	var sum *sim.Summary
	if *useTUI {
		sum, err = runWithTUI(ctx, runner, collect)
	} else {
		sum, err = runPlain(ctx, runner, collect)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			pterm.Warning.Println("模拟已取消")
			os.Exit(130)
		}
		log.Fatalf("模拟失败: %v", err)
	}

	if store != nil {
		if err := store.SaveSummary(ctx, sum); err != nil {
			pterm.Warning.Printf("保存结果失败: %v\n", err)
		} else {
			pterm.Success.Printf("结果已保存: %s\n", sum.RunID)
		}
	}
	ui.PrintReport(sum, reports)
}

// loadConfig 读取配置文件，并用 .env 和环境变量覆盖
func loadConfig(path, envPath string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}
	fileEnv, err := config.LoadEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(config.EnvLookup(fileEnv)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runPlain 使用 pterm 进度条
func runPlain(ctx context.Context, runner *sim.Runner, collect func(sim.ShoeReport)) (*sim.Summary, error) {
	opts := runner.Options()
	bar, err := pterm.DefaultProgressbar.
		WithTotal(opts.Shoes).
		WithTitle(fmt.Sprintf("Simulating (seed %d)", opts.Seed)).
		Start()
	if err != nil {
		return nil, err
	}
	sum, err := runner.Run(ctx, func(rep sim.ShoeReport) {
		collect(rep)
		bar.Increment()
	})
	_, _ = bar.Stop()
	return sum, err
}

// runWithTUI 使用 bubbletea 进度界面
func runWithTUI(ctx context.Context, runner *sim.Runner, collect func(sim.ShoeReport)) (*sim.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewProgressModel(runner.Options(), cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		sum, err := runner.Run(ctx, func(rep sim.ShoeReport) {
			collect(rep)
			p.Send(ui.ShoeDoneMsg{Report: rep})
		})
		p.Send(ui.RunDoneMsg{Summary: sum, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return nil, err
	}
	if !model.Done() {
		return nil, context.Canceled
	}
	return model.Summary(), model.Err()
}
