package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/mailcanvas/modules/editor"
	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/clientip"
	"github.com/dmitrymomot/mailcanvas/pkg/config"
	"github.com/dmitrymomot/mailcanvas/pkg/email"
	"github.com/dmitrymomot/mailcanvas/pkg/environment"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/httpserver"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
	"github.com/dmitrymomot/mailcanvas/pkg/requestid"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("mailcanvas stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	env := environment.Parse(cfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, cfg.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	deps := &dependencies{log: log}
	defer deps.close()

	storage, err := newStorage(ctx)
	if err != nil {
		return err
	}

	backend, err := deps.templateBackend(ctx, cfg, storage)
	if err != nil {
		return err
	}
	templates := templatestore.New(backend, templatestore.WithLogger(log))

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			return err
		}
	}
	resolver := catalog.NewResolver(cat, templates, storage,
		catalog.WithCache(cfg.TemplateCacheSize, cfg.TemplateCacheTTL),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.TemplateFetchTTL}),
		catalog.WithLogger(log),
	)
	if local, ok := storage.(*file.LocalStorage); ok && cfg.CatalogWatch {
		go func() {
			if err := resolver.Watch(ctx, local.BaseDir()); err != nil {
				log.WarnContext(ctx, "template watcher stopped", logger.Error(err))
			}
		}()
	}

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return err
	}
	sender, err := email.New(emailCfg, storage)
	if err != nil {
		return err
	}

	var composerCfg composer.Config
	if err := config.Load(&composerCfg); err != nil {
		return err
	}
	events, err := deps.broadcaster(ctx, cfg, max(composerCfg.EventBuffer, 1))
	if err != nil {
		return err
	}
	svc := composer.New(resolver, templates, storage,
		composer.WithConfig(composerCfg),
		composer.WithSender(sender),
		composer.WithBroadcaster(events),
		composer.WithLogger(log),
	)
	go svc.RunJanitor(ctx)

	limiter, err := deps.sendLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	router := editor.Router(editor.RouterOptions{
		Editor: editor.New(svc, editor.WithLogger(log), editor.WithSendLimiter(limiter)),
		Health: httpserver.HealthHandler(log, cfg.HealthTimeout, deps.checks...),
		Middlewares: []func(http.Handler) http.Handler{
			requestid.Middleware,
			clientip.Middleware(),
			environment.Middleware(env),
		},
	})

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	log.InfoContext(ctx, "mailcanvas starting",
		slog.String("addr", httpCfg.Addr),
		slog.String("template_store", cfg.TemplateStore),
		slog.String("broadcast", cfg.Broadcast),
		slog.String("email_driver", emailCfg.Driver),
	)
	err = httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newStorage returns the blob storage for documents, template files and the
// dev mail outbox.
func newStorage(ctx context.Context) (file.Storage, error) {
	var cfg file.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if cfg.Driver == storageS3 {
		var s3cfg file.S3Config
		if err := config.Load(&s3cfg); err != nil {
			return nil, err
		}
		s3, err := file.NewS3Storage(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	local, err := file.NewLocalStorage(cfg.BaseDir, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return local, nil
}
