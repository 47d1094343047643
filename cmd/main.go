// 程序入口：读取配置、装配上游客户端与编排器并启动服务；路由注册在 internal/api
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ip-location/internal/api"
	"ip-location/internal/config"
	"ip-location/internal/logger"
	"ip-location/internal/metrics"
	"ip-location/internal/resolve"
	"ip-location/internal/upstream"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	l.Debug("log_init_ok")

	defaults := config.FromEnv()
	l.Info("defaults_loaded",
		"baidu_ak_configured", defaults.HasBaiduAK(),
		"amap_key_configured", defaults.HasAmapKey(),
	)

	// 单个共享客户端：每次上游调用受 5s 超时约束，超时只作用于该次调用
	client := &http.Client{Timeout: 5 * time.Second}
	resolver := resolve.New(defaults,
		upstream.NewBaiduMap(client),
		upstream.NewAmap(client),
		upstream.NewOpenData(client),
		upstream.NewPConline(client),
	)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewRoutes(resolver, defaults).Build())
	mux.Handle("/metrics", metrics.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8000"
	}
	s := &http.Server{Addr: addr, Handler: logger.AccessMiddleware(l)(mux)}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_exit", "err", err)
		os.Exit(1)
	}
}
