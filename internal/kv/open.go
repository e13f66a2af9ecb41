package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophdash/internal/filex"
	"github.com/dmitrijs2005/gophdash/internal/kv/migrations"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendS3       = "s3"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Config selects and parameterises a backend. Only the fields of the chosen
// backend are read.
type Config struct {
	Backend string

	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Prefix namespaces keys on shared redis and s3 backends.
	Prefix string
}

// Store is an opened Repository that owns its underlying connection.
type Store struct {
	Repository
	Backend string

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the configured backend. SQL backends are migrated to the
// latest schema before Open returns.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		if _, err := filex.EnsureParentDir(cfg.DSN); err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db, migrations.SQLite, "sqlite3", "sqlite"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite migrations: %w", err)
		}
		return &Store{Repository: NewSQLiteRepository(db), Backend: BackendSQLite, close: db.Close}, nil

	case BackendPostgres:
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres unavailable: %w", err)
		}
		if err := RunMigrations(ctx, db, migrations.Postgres, "postgres", "postgres"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return &Store{Repository: NewPostgresRepository(db), Backend: BackendPostgres, close: db.Close}, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		return &Store{Repository: NewRedisRepository(rdb, cfg.Prefix), Backend: BackendRedis, close: rdb.Close}, nil

	case BackendMemory:
		return &Store{Repository: NewMemoryRepository(), Backend: BackendMemory}, nil

	case BackendS3:
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{Repository: NewS3Repository(client, cfg.S3Bucket, cfg.Prefix), Backend: BackendS3}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations found in dir of fsys.
func RunMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, dir)
}

func newS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
