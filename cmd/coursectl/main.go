// coursectl is the operator command line for course content: list, export
// and import courses against the live database and blob store.
//
// Usage:
//
//	coursectl list
//	coursectl export <course-id> <archive.zip>
//	coursectl import <archive.zip>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
	repopg "github.com/edustack/course-content/pkg/coursecontent/repo/postgres"
	fsstorage "github.com/edustack/course-content/pkg/coursecontent/storage/fs"
)

type Config struct {
	DB      DbConfig
	Storage StorageConfig
}

type DbConfig struct {
	Port     uint16 `env:"CONTENT_PG_PORT" env-default:"5432"`
	Host     string `env:"CONTENT_PG_HOST" env-default:"localhost"`
	Name     string `env:"CONTENT_PG_NAME" env-default:"coursecontent_db"`
	User     string `env:"CONTENT_PG_USER" env-default:"content"`
	Password string `env:"CONTENT_PG_PASSWORD" env-default:"pwd"`
}

type StorageConfig struct {
	BaseDir   string `env:"CONTENT_STORAGE_DIR" env-default:"./data/storage"`
	URLPrefix string `env:"CONTENT_STORAGE_URL_PREFIX" env-default:""`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func NewDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func buildService(ctx context.Context, config Config) (coursecontent.Service, error) {
	pool, err := NewDbPool(ctx, config.DB)
	if err != nil {
		return nil, err
	}

	store, err := fsstorage.New(fsstorage.Config{
		BaseDir:   config.Storage.BaseDir,
		URLPrefix: config.Storage.URLPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	return coursecontent.New(
		coursecontent.WithRepository(repopg.NewWithPool(pool)),
		coursecontent.WithBlobStore(store),
	)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: coursectl <list | export course-id archive.zip | import archive.zip>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, err := buildService(ctx, config)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		summaries, err := svc.ListCourses(ctx)
		if err != nil {
			slog.Error("Failed to list courses", "err", err)
			os.Exit(1)
		}
		for _, s := range summaries {
			fmt.Printf("%s\t%s\t(published=%t)\n", s.ID, s.Title, s.Published)
		}

	case "export":
		if len(os.Args) != 4 {
			usage()
		}
		courseID, path := os.Args[2], os.Args[3]
		f, err := os.Create(path)
		if err != nil {
			slog.Error("Failed to create archive file", "path", path, "err", err)
			os.Exit(1)
		}
		if err := svc.ExportArchive(ctx, courseID, f); err != nil {
			f.Close()
			os.Remove(path)
			slog.Error("Failed to export course", "course_id", courseID, "err", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			slog.Error("Failed to finish archive file", "path", path, "err", err)
			os.Exit(1)
		}
		fmt.Printf("exported %s to %s\n", courseID, path)

	case "import":
		if len(os.Args) != 3 {
			usage()
		}
		path := os.Args[2]
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Failed to read archive file", "path", path, "err", err)
			os.Exit(1)
		}
		courseID, err := svc.ImportArchive(ctx, data)
		if err != nil {
			slog.Error("Failed to import course", "path", path, "err", err)
			os.Exit(1)
		}
		fmt.Printf("imported course %s\n", courseID)

	default:
		usage()
	}
}
