package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chatgate/api"
	"chatgate/config"
	"chatgate/database"
	"chatgate/logging"
	"chatgate/router"
	"chatgate/service"
)

// @title Chat Gateway API
// @version 1.0
// @description 本地大模型聊天网关：同步/流式问答与历史记录
// @host localhost:8080
// @BasePath /

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("chatgate v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	if _, err := logging.Init(cfg.Log); err != nil {
		log.Printf("日志文件初始化失败，改为输出到标准输出: %v", err)
	}

	config.PrintConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("存储初始化失败", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	client, err := service.NewInferenceClient(cfg.Inference)
	if err != nil {
		slog.Error("推理服务初始化失败", "error", err)
		os.Exit(1)
	}

	chatService := service.NewChatService(client, store, cfg.Inference)
	historyService := service.NewHistoryService(store, cfg.History.RecentLimit)

	r := router.SetupRouter(cfg, api.NewChatHandler(chatService), api.NewHistoryHandler(historyService))

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	log.Printf("==========================================")
	log.Printf("  🤖 聊天网关已启动")
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/", cfg.Server.Port)
	log.Printf("==========================================")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("服务器启动失败", "error", err)
		closeStore()
		os.Exit(1)
	case <-ctx.Done():
	}

	slog.Info("正在关闭服务器", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("服务器关闭超时", "error", err)
	}
	slog.Info("服务器已关闭")
}

// openStore 按配置的驱动创建历史记录存储
func openStore(ctx context.Context, cfg *config.Config) (service.MessageStore, func(), error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := database.OpenMySQL(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := database.NewGormStore(db)
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		if err := database.RunMigrations(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxOpenConns))
		if err != nil {
			return nil, nil, err
		}
		store := database.NewPostgresStore(pool)
		return store, func() { _ = store.Close() }, nil
	case "memory":
		slog.Warn("使用内存存储，重启后历史记录会丢失")
		return database.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}
}
