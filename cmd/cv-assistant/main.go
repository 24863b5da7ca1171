package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"cv-assistant-go/internal/agent"
	"cv-assistant-go/internal/api/handler"
	"cv-assistant-go/internal/api/router"
	"cv-assistant-go/internal/config"
	"cv-assistant-go/internal/logger"
	"cv-assistant-go/internal/pdf"
	"cv-assistant-go/internal/session"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	// 2. 初始化日志，并把Hertz自身的日志也接到zerolog
	logger.Init(cfg.Logger)
	glog.SetLogger(hertzadapter.From(logger.Logger))
	logger.Info().Str("environment", cfg.Server.Environment).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 初始化链路追踪（可选）
	if cfg.Tracing.Enabled {
		tp, err := initTracerProvider(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("初始化链路追踪失败")
		}
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("关闭TracerProvider失败")
			}
		}()
		logger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("链路追踪已启用")
	}

	// 4. 初始化会话存储并启动后台清理任务
	store := session.NewStore(cfg.Session.TTL(), cfg.Session.SweepInterval(),
		session.WithMaxEntries(cfg.Session.MaxEntries))
	store.StartSweeper(ctx)
	logger.Info().Dur("ttl", cfg.Session.TTL()).Dur("sweep_interval", cfg.Session.SweepInterval()).
		Msg("会话存储初始化成功")

	// 5. 初始化对话网关
	modelOpts := []agent.GeminiOption{
		agent.WithTemperature(cfg.Gemini.Temperature),
		agent.WithMaxTokens(cfg.Gemini.MaxTokens),
	}
	if cfg.Gemini.RequestTimeout != "" {
		if d, err := time.ParseDuration(cfg.Gemini.RequestTimeout); err == nil {
			modelOpts = append(modelOpts, agent.WithRequestTimeout(d))
		} else {
			logger.Warn().Str("request_timeout", cfg.Gemini.RequestTimeout).Msg("解析请求超时失败，忽略")
		}
	}
	chatModel, err := agent.NewGeminiChatModel(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.APIURL, modelOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化Gemini客户端失败")
	}
	gateway := agent.NewGateway(chatModel)

	// 6. 组装处理器
	chatHandler := handler.NewChatHandler(cfg, store, gateway)
	cvHandler := handler.NewCVHandler(cfg, store, pdf.NewRenderer())

	// 7. 创建HTTP服务器
	serverOpts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	}
	var tracerCfg *hertztracing.Config
	if cfg.Tracing.Enabled {
		tracer, tCfg := hertztracing.NewServerTracer()
		serverOpts = append(serverOpts, tracer)
		tracerCfg = tCfg
	}
	h := server.New(serverOpts...)
	if tracerCfg != nil {
		h.Use(hertztracing.ServerMiddleware(tracerCfg))
	}

	router.RegisterRoutes(h, chatHandler, cvHandler)
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP 服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	// 8. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	cancel() // 停止会话清理任务

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// initTracerProvider 初始化OTLP gRPC导出器和TracerProvider
func initTracerProvider(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Tracing.ServiceName),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SamplingRate))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}
