package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/webx403/webx403-go/adapters/events"
	"github.com/webx403/webx403-go/adapters/store"
	"github.com/webx403/webx403-go/internal/logging"
	"github.com/webx403/webx403-go/ports"
	"github.com/webx403/webx403-go/service"
	ginadapter "github.com/webx403/webx403-go/transport/gin"
)

type config struct {
	Addr      string        `env:"WEBX403_ADDR,default=:9000"`
	Audience  string        `env:"WEBX403_AUDIENCE,default=http://localhost:9000"`
	Issuer    string        `env:"WEBX403_ISSUER,default=webx403"`
	TTL       time.Duration `env:"WEBX403_TTL,default=60s"`
	ClockSkew time.Duration `env:"WEBX403_CLOCK_SKEW,default=120s"`
	RedisURL  string        `env:"WEBX403_REDIS_URL"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		logging.Fatalf(logger, err, "failed to load configuration")
	}

	ctx := context.Background()
	wmLogger := watermill.NewStdLogger(false, false)

	// With Redis both the replay horizon and the event stream are shared
	// across instances. Without it the server runs self-contained: replay
	// state in memory and auth events looped back into the log.
	var (
		replay    ports.ReplayStore
		publisher message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logging.Fatalf(logger, err, "failed to parse redis url")
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Fatalf(logger, err, "failed to connect to redis")
		}
		defer redisClient.Close()

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			logging.Fatalf(logger, err, "failed to create redis publisher")
		}
		replay = store.NewRedisStore(redisClient)
	} else {
		memStore, err := store.NewMemoryStore(0)
		if err != nil {
			logging.Fatalf(logger, err, "failed to create replay store")
		}
		defer memStore.Close()
		replay = memStore

		pubsub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		publisher = pubsub
		go consumeAuthEvents(ctx, pubsub, logger)
	}

	engine, err := service.NewEngine(cfg.Audience,
		service.WithIssuer(cfg.Issuer),
		service.WithTTL(cfg.TTL),
		service.WithClockSkew(cfg.ClockSkew),
		service.WithReplayStore(replay),
		service.WithEventPublisher(events.NewWatermillPublisher(publisher)),
		service.WithLogger(logger),
	)
	if err != nil {
		logging.Fatalf(logger, err, "failed to build engine")
	}
	defer engine.Close()

	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(ginadapter.Middleware(engine))
	{
		api.GET("/me", func(c *gin.Context) {
			address, ok := ginadapter.WalletAddress(c)
			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet not found in context"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"address": address})
		})
	}

	logger.Info("listening", slog.String("addr", cfg.Addr), slog.String("audience", cfg.Audience))
	if err := router.Run(cfg.Addr); err != nil {
		logging.Fatalf(logger, err, "server stopped")
	}
}

func consumeAuthEvents(ctx context.Context, pubsub *gochannel.GoChannel, logger *slog.Logger) {
	messages, err := pubsub.Subscribe(ctx, events.DefaultTopic)
	if err != nil {
		logger.Warn("failed to subscribe to auth events", logging.Error(err))
		return
	}
	for msg := range messages {
		logger.Info("auth event", slog.String("payload", string(msg.Payload)))
		msg.Ack()
	}
}
