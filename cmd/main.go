package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"profile-agent-go/internal/api/handler"
	"profile-agent-go/internal/api/router"
	"profile-agent-go/internal/config"
	"profile-agent-go/internal/llm"
	appLogger "profile-agent-go/internal/logger"
	"profile-agent-go/internal/parser"
	"profile-agent-go/internal/processor"
	"profile-agent-go/internal/storage"
	"profile-agent-go/internal/tracing"
	"profile-agent-go/pkg/ratelimit"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, &cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracer(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	debugLogger := log.New(io.Discard, "", 0)
	if cfg.Logger.Level == "debug" {
		debugLogger = log.New(appLogger.Logger, "", log.LstdFlags)
	}

	chatModel := newChatModel(cfg, debugLogger)
	glog.Infof("神谕客户端初始化成功: %s (%s)", cfg.Oracle.Model, cfg.Oracle.Endpoint)

	converter, err := newConverter(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化文档转换器失败: %v", err)
	}

	pipeline := newPipeline(cfg, chatModel, converter, debugLogger)
	glog.Info("分析流水线组装完成")

	profileHandler := handler.NewProfileHandler(cfg, storageManager, pipeline)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, profileHandler)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并把Hertz的日志接到同一个输出
func initLogger(cfg *config.Config) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(appLogger.Logger))
}

// newChatModel 组装聊天补全客户端，QPM>0时启用令牌桶限流
func newChatModel(cfg *config.Config, debugLogger *log.Logger) model.ToolCallingChatModel {
	options := []llm.ClientOption{
		llm.WithModelName(cfg.Oracle.Model),
		llm.WithMaxTokens(cfg.Oracle.MaxTokens),
		llm.WithDefaultTemperature(float32(cfg.Oracle.Temperature)),
		llm.WithSeed(cfg.Oracle.Seed),
		llm.WithRequestTimeout(time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second),
		llm.WithClientLogger(debugLogger),
	}
	if cfg.Oracle.QPM > 0 {
		options = append(options, llm.WithRateLimiter(ratelimit.NewTokenBucket(cfg.Oracle.QPM, 0)))
	}
	return llm.NewClient(cfg.Oracle.Endpoint, options...)
}

// newConverter 选择文档转换器: 配置了Tika服务器用Tika(.pdf/.docx)，
// 否则用内置的Eino PDF解析(仅.pdf)
func newConverter(ctx context.Context, cfg *config.Config) (parser.DocumentConverter, error) {
	if cfg.Tika.ServerURL != "" {
		var tikaOptions []parser.TikaOption
		if cfg.Tika.TimeoutSeconds > 0 {
			tikaOptions = append(tikaOptions, parser.WithTikaTimeout(time.Duration(cfg.Tika.TimeoutSeconds)*time.Second))
		}
		glog.Infof("使用Tika文档转换器: %s", cfg.Tika.ServerURL)
		return parser.NewTikaConverter(cfg.Tika.ServerURL, tikaOptions...), nil
	}

	glog.Info("使用内置Eino PDF转换器")
	return parser.NewEinoPDFConverter(ctx)
}

// newPipeline 按配置组装完整的分析流水线，解析与抽取共享同一个调度器
func newPipeline(cfg *config.Config, chatModel model.ToolCallingChatModel,
	converter parser.DocumentConverter, debugLogger *log.Logger) *processor.Pipeline {

	dispatcher := processor.NewDispatcher(
		processor.WithConcurrencyCeiling(cfg.Dispatcher.ConcurrencyCeiling),
		processor.WithDispatcherLogger(debugLogger),
	)

	chunker := parser.NewHTMLChunker(
		parser.WithChunkSize(cfg.Parser.ChunkSize),
		parser.WithChunkerLogger(debugLogger),
	)

	resumeParser := processor.NewResumeParser(chatModel,
		processor.WithPageSize(cfg.Parser.PageSizeLines),
		processor.WithLargeDocThreshold(cfg.Parser.LargeDocThreshold),
		processor.WithResumeParserDispatcher(dispatcher),
		processor.WithResumeParserLogger(debugLogger),
	)

	segmenter := parser.NewProjectSegmenter(
		parser.WithSegmentKeywords(cfg.Parser.SegmentKeywords),
		parser.WithSegmenterLogger(debugLogger),
	)
	blockProcessor := processor.NewBlockProcessor(chatModel,
		processor.WithBlockDispatcher(dispatcher),
		processor.WithBlockSegmenter(segmenter),
		processor.WithBlockLogger(debugLogger),
	)

	aggregator := processor.NewResultAggregator(chatModel,
		processor.WithAggregatorLogger(debugLogger),
	)

	return processor.NewPipeline(converter, chunker, resumeParser, blockProcessor, aggregator,
		processor.WithPipelineLogger(debugLogger),
	)
}
