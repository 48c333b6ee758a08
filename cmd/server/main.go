package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palemoky/blackjack-sim/internal/config"
	"github.com/palemoky/blackjack-sim/internal/logger"
	"github.com/palemoky/blackjack-sim/internal/server"
	"github.com/palemoky/blackjack-sim/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envPath := flag.String("env", ".env", "环境变量文件路径")
	flag.Parse()

	logger.SetOutput(os.Stderr)

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}
	fileEnv, err := config.LoadEnvFile(*envPath)
	if err != nil {
		log.Fatalf("读取环境变量文件失败: %v", err)
	}
	if err := cfg.ApplyEnv(config.EnvLookup(fileEnv)); err != nil {
		log.Fatalf("环境变量无效: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Fatalf("加载策略表失败: %v", err)
	}

	var store *storage.ResultStore
	if cfg.Redis.Enabled {
		client := storage.NewRedisClient(cfg.Redis)
		defer func() { _ = client.Close() }()
		store = storage.NewResultStore(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.Ping(ctx); err != nil {
			log.Printf("Redis 不可用，结果持久化将失败: %v", err)
		}
		cancel()
	}

	// 创建服务器
	srv := server.NewServer(cfg, engine, store)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("正在关闭服务器...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("关闭服务器出错: %v", err)
		}
	}()

	// 启动服务器
	log.Printf("🃏 Blackjack 模拟服务器启动于 %s", cfg.Server.Addr())
	if err := srv.Start(); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
	log.Println("服务器已关闭")
}
