package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/ai"
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/converter"
	"github.com/Vovarama1992/audioproc/internal/domain"
	"github.com/Vovarama1992/audioproc/internal/error_notificator"
	"github.com/Vovarama1992/audioproc/internal/infra"
	"github.com/Vovarama1992/audioproc/internal/ports"
	"github.com/Vovarama1992/audioproc/internal/profile"
	"github.com/Vovarama1992/audioproc/internal/speech"
	"github.com/Vovarama1992/audioproc/internal/textrules"
)

const serviceName = "audioproc"

// app — всё, что собрано в main и передаётся командам.
type app struct {
	env *config.Config
	log *zap.Logger
	zl  *logger.ZapLogger

	in  io.Reader
	out io.Writer

	profiles *profile.Store
	rules    textrules.Repo
	runs     ports.RunService
	mirror   ports.ArtifactMirror
	notifier error_notificator.Notificator

	conv    *converter.Converter
	closers []func() error
}

func newApp(ctx context.Context, env *config.Config, log *zap.Logger, in io.Reader, out io.Writer) *app {
	a := &app{
		env:      env,
		log:      log,
		zl:       logger.NewZapLogger(log.Sugar()),
		in:       in,
		out:      out,
		profiles: profile.NewStore(env.ProfileFile),
		rules:    textrules.NewFileRepo(env.RulesFile),
	}

	// =========================================================================
	// RUN LEDGER (Postgres, optional)
	// =========================================================================

	if env.DatabaseURL != "" {
		if runs, err := a.openLedger(ctx); err != nil {
			log.Warn("run ledger disabled", zap.Error(err))
		} else {
			a.runs = runs
		}
	}

	// =========================================================================
	// ARTIFACT MIRROR (S3, optional)
	// =========================================================================

	if env.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, env.S3)
		if err != nil {
			log.Warn("artifact mirror disabled", zap.Error(err))
		} else {
			a.mirror = domain.NewS3Service(s3Client)
		}
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	channels := []error_notificator.Notificator{error_notificator.NewLogInfra(log)}
	if env.TelegramToken != "" {
		bot, err := error_notificator.NewTelegramBot(env.TelegramToken)
		if err != nil {
			log.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, error_notificator.NewTelegramInfra(bot, env.TelegramChatID, log))
		}
	}
	a.notifier = error_notificator.NewService(channels...)

	return a
}

func (a *app) openLedger(ctx context.Context) (ports.RunService, error) {
	db, err := sql.Open("postgres", a.env.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	repo := infra.NewRunRepo(db)
	if err := repo.Migrate(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	a.closers = append(a.closers, db.Close)
	return domain.NewRunService(repo), nil
}

// converter собирается лениво: ключ может прийти из меню.
func (a *app) converter() (*converter.Converter, error) {
	if a.conv != nil {
		return a.conv, nil
	}
	if err := a.env.RequireAPIKey(); err != nil {
		return nil, err
	}

	// =========================================================================
	// CLIENTS (TTS / Whisper / chat)
	// =========================================================================

	speechClient := speech.NewOpenAIClient(a.env.OpenAIKey, a.env.OpenAIBaseURL)
	chatClient := ai.NewOpenAIClient(a.env.OpenAIKey, a.env.OpenAIBaseURL)

	a.conv = converter.New(converter.Deps{
		Speech:   speech.NewService(speechClient, speechClient, a.log),
		Cleaner:  ai.NewCleaner(chatClient, ai.NewTiktokenCounter(a.log), a.log),
		Rules:    textrules.NewService(a.rules),
		Mirror:   a.mirror,
		Runs:     a.runs,
		Notifier: a.notifier,
		Log:      a.log,
	})
	return a.conv, nil
}

// outcome — итог команды одной записью, через общий логгер сервисов.
func (a *app) outcome(command string, code int, err error) {
	entry := logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("%s finished with exit code %d", command, code),
		Service: serviceName,
	}
	if err != nil {
		entry.Level = "error"
		entry.Error = err
	}
	a.zl.Log(entry)
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
}
