package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/roombooking/api"
	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/assistant"
	"github.com/Domenick1991/roombooking/internal/bootstrap"
	"github.com/Domenick1991/roombooking/internal/cache"
	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/Domenick1991/roombooking/internal/service/rooms"
	"github.com/Domenick1991/roombooking/internal/timezone"
	"github.com/Domenick1991/roombooking/internal/weather"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfgPath := pflag.StringP("config", "c", defaultConfigPath(), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	normalizer, err := timezone.NewNormalizer(cfg.Booking.TimeZone)
	if err != nil {
		return fmt.Errorf("booking time zone: %w", err)
	}
	loc, err := normalizer.Location("")
	if err != nil {
		return err
	}

	bookingRepo, closeStore, err := openBookingStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	roomRepo := repository.NewRoomRepository(roomsFromConfig(cfg.Booking.Rooms))

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = cache.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(logger.Named("booking"))}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger.Named("kafka"))
		defer producer.Close()
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.Warn("kafka check failed, events may be dropped", zap.Strings("brokers", cfg.Kafka.Brokers), zap.Error(err))
		}
		cancel()
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
	}
	bookingService := booking.NewBookingService(bookingRepo, roomRepo, normalizer, cfg.Booking.DefaultResource, bookingOpts...)
	roomService := rooms.NewRoomService(roomRepo)

	var extractorOpts []assistant.ExtractorOption
	if cfg.Assistant.StrictSinglePayload {
		extractorOpts = append(extractorOpts, assistant.WithStrictSinglePayload())
	}
	extractor := assistant.NewExtractor(normalizer, extractorOpts...)

	var advisor assistant.Advisor = assistant.UnavailableAdvisor{}
	if cfg.Assistant.APIKey != "" {
		gemini, err := assistant.NewGeminiAdvisor(ctx, cfg.Assistant, extractor, logger.Named("gemini"))
		if err != nil {
			return err
		}
		defer gemini.Close()
		advisor = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant replies will degrade")
	}

	engineOpts := []assistant.EngineOption{
		assistant.WithMaxHistory(cfg.Assistant.MaxHistory),
		assistant.WithEngineLogger(logger.Named("assistant")),
	}
	if cfg.Weather.Enabled() {
		weatherOpts := []weather.Option{weather.WithLogger(logger.Named("weather"))}
		if redisClient != nil {
			weatherOpts = append(weatherOpts, weather.WithCache(
				cache.NewRedisCache(redisClient, time.Duration(cfg.Weather.CacheTTLMinutes)*time.Minute)))
		}
		engineOpts = append(engineOpts, assistant.WithContextProvider(weather.NewProvider(cfg.Weather, loc, weatherOpts...)))
	}
	var matcherOpts []assistant.MatcherOption
	if cfg.Assistant.WholeWordConfirm {
		matcherOpts = append(matcherOpts, assistant.WithWholeWords())
	}
	engine := assistant.NewEngine(advisor, extractor, assistant.NewMatcher(cfg.Assistant.Confirmations, matcherOpts...),
		bookingService, bookingService, normalizer, engineOpts...)

	var sessions assistant.SessionStore
	if redisClient != nil {
		sessions = cache.NewRedisSessionStore(redisClient, cfg.Session.TTL())
	} else {
		sessions = repository.NewMemorySessionRepository(cfg.Session.TTL())
	}
	assistantService := assistant.NewService(engine, sessions,
		assistant.WithGreeting(cfg.Assistant.Greeting),
		assistant.WithServiceLogger(logger.Named("assistant")))

	router := bootstrap.NewRouter(cfg, logger, bootstrap.Handlers{
		Bookings:  api.NewBookingHandler(bookingService, logger),
		Rooms:     api.NewRoomHandler(roomService, logger),
		Assistant: api.NewAssistantHandler(assistantService, logger),
	})
	return bootstrap.Run(ctx, cfg, logger, router)
}

// openBookingStore connects the configured driver and prepares its schema.
func openBookingStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (repository.BookingRepository, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := repository.NewBookingRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres booking store")
		return repo, pool.Close, nil

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := repository.NewMongoBookingRepository(client, cfg.Mongo.Database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("using mongo booking store", zap.String("database", cfg.Mongo.Database))
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case "memory":
		logger.Info("using in-memory booking store")
		return repository.NewMemoryBookingRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func roomsFromConfig(cfg []config.RoomConfig) []domain.Room {
	out := make([]domain.Room, 0, len(cfg))
	for _, r := range cfg {
		name := r.Name
		if name == "" {
			name = r.Key
		}
		out = append(out, domain.Room{Key: r.Key, Name: name, Capacity: r.Capacity})
	}
	return out
}
