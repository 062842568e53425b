package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/config"
	"prepify-quiz/internal/infra/memory"
	infraredis "prepify-quiz/internal/infra/redis"
	"prepify-quiz/internal/quiz"
	"prepify-quiz/internal/timer"
	transport "prepify-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// questionCache is a question source that can drop a category after admin writes.
type questionCache interface {
	quiz.QuestionSource
	app.CacheInvalidator
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var cache questionCache
	if redisClient != nil {
		cache = infraredis.NewQuestionCache(redisClient, st.questions, quizTTL)
	} else {
		cache = memory.NewQuestionCache(st.questions, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	matcher, err := quiz.MatcherFor(cfg.Quiz.Match)
	if err != nil {
		return err
	}
	builder := quiz.NewBuilder(quiz.NewBank(cache),
		quiz.WithTiming(quiz.Timing{
			Standard:    cfg.Quiz.StandardSeconds,
			SuddenDeath: cfg.Quiz.SuddenDeathSeconds,
			Sprint:      cfg.Quiz.SprintSeconds,
		}),
		quiz.WithMatcher(matcher),
	)

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Printf("auth.secret not set; tokens will not survive a restart")
	}

	handler := transport.NewRouter(transport.Deps{
		Quiz:           app.NewQuizService(sessions, builder, st.results, timer.Ticker{}),
		Admin:          app.NewAdminService(st.questions, cache),
		Stats:          app.NewStatsService(st.results),
		Accounts:       auth.NewService(st.users, cfg.Auth.BcryptCost),
		Tokens:         auth.NewTokens(secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour)),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// no write timeout: quiz websockets stay open for the whole attempt
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting prepify on :%s (storage=%s)", finalPort, cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
