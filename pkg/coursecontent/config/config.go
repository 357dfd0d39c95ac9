// Package config assembles a coursecontent.Service from declarative
// configuration, typically sourced from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
	repomemory "github.com/edustack/course-content/pkg/coursecontent/repo/memory"
	repopg "github.com/edustack/course-content/pkg/coursecontent/repo/postgres"
	fsstorage "github.com/edustack/course-content/pkg/coursecontent/storage/fs"
	memorystorage "github.com/edustack/course-content/pkg/coursecontent/storage/memory"
	s3storage "github.com/edustack/course-content/pkg/coursecontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		DBSchema:     "coursecontent",
		Storage: StorageConfig{
			Type: "memory",
		},
	}
}

// ServerConfig represents server configuration for the course-content service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: coursecontent)

	// Storage configuration
	Storage StorageConfig
}

// StorageConfig selects and parameterizes the blob storage backend.
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// Filesystem options
	BaseDir   string
	URLPrefix string

	// S3 options
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	CreateBucket    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for the fs backend")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (coursecontent.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildStorageBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	return coursecontent.New(
		coursecontent.WithRepository(repo),
		coursecontent.WithBlobStore(store),
	)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (coursecontent.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			// set search_path for this session
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorageBackend creates a BlobStore based on the configuration
func (c *ServerConfig) buildStorageBackend() (coursecontent.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.Storage.URLPrefix,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			URLPrefix:              c.Storage.URLPrefix,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets
// search_path for the session. It fails if the schema (when provided) does
// not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
