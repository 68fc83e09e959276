package app

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"time"

	"remindme/internal/config"
	"remindme/internal/events"
	"remindme/internal/logging"
	"remindme/internal/metrics"
	"remindme/internal/photos"
	"remindme/internal/repo"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type App struct {
	cfg    config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
	fs     *firestore.Client
	redis  *redis.Client
	router *gin.Engine
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = rdb

	deps := Deps{
		Redis:     rdb,
		Broker:    events.NewRedisBroker(rdb),
		Revisions: events.NewRedisRevisions(rdb),
		Photos:    photos.NewStore(cfg.Photos.MaxBytes, cfg.Photos.MaxPerUser),
		Logger:    logger,
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := newPostgres(cfg.PG.DSN)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		a.db = db
		if err := runMigrations(cfg.PG.DSN, cfg.PG.MigrationsDir); err != nil {
			a.closeAll()
			return nil, err
		}
		deps.Users = repo.NewPGUserRepo(db)
		deps.Reminders = repo.NewPGReminderRepo(db)
		deps.Shopping = repo.NewPGShoppingRepo(db)
	case config.StoreDriverFirestore:
		fs, err := newFirestore(ctx, cfg.Store)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		a.fs = fs
		deps.Users = repo.NewFSUserRepo(fs)
		deps.Reminders = repo.NewFSReminderRepo(fs)
		deps.Shopping = repo.NewFSShoppingRepo(fs)
	case config.StoreDriverMemory:
		mem := repo.NewMemoryStore()
		deps.Users = mem.Users()
		deps.Reminders = mem.Reminders()
		deps.Shopping = mem.Shopping()
	default:
		a.closeAll()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	logger.Info("store ready", zap.String("driver", cfg.Store.Driver))

	a.router = newRouter(cfg, deps)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.closeAll()
	return nil
}

func (a *App) closeAll() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.fs != nil {
		_ = a.fs.Close()
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// newFirestore opens Firestore through the Firebase app. Without a
// credentials file it falls back to application default credentials.
func newFirestore(ctx context.Context, cfg config.StoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}
	var fbCfg *firebase.Config
	if cfg.FirestoreProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FirestoreProjectID}
	}
	fbApp, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func openMigrationDB(dsn string) (*sql.DB, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("goose open db: %w", err)
	}
	return db, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := openMigrationDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Migrate runs a goose command ("up", "down", "status") against PG_DSN.
func Migrate(ctx context.Context, cfg config.PGConfig, command string) error {
	if cfg.DSN == "" {
		return fmt.Errorf("PG_DSN is required for migrations")
	}
	db, err := openMigrationDB(cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.RunContext(ctx, command, db, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func newRouter(cfg config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Logger != nil {
		r.Use(logging.Gin(deps.Logger.Named("http")))
	}
	r.Use(metrics.Gin())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, deps)
	return r
}
