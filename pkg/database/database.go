// Package database opens the gorm connection shared by the persistent keystore and the
// execution journal.
//
// Sqlite is the default and is migrated with gorm AutoMigrate. Postgres needs every connection
// field; its schema is created on demand and its tables come from the embedded goose migrations.
package database

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/snehendu098/ghost/pkg/log"
)

//go:embed migrations/*/*.sql
var embedMigrations embed.FS

// Config selects the database. An empty Name with the sqlite driver opens a shared in-memory
// database.
type Config struct {
	URL      string `env:"GHOST_DATABASE_URL" env-default:""`
	Name     string `env:"GHOST_DATABASE_NAME" env-default:""`
	Schema   string `env:"GHOST_DATABASE_SCHEMA" env-default:""`
	Driver   string `env:"GHOST_DATABASE_DRIVER" env-default:"sqlite"`
	Username string `env:"GHOST_DATABASE_USERNAME" env-default:"postgres"`
	Password string `env:"GHOST_DATABASE_PASSWORD" env-default:""`
	Host     string `env:"GHOST_DATABASE_HOST" env-default:"localhost"`
	Port     string `env:"GHOST_DATABASE_PORT" env-default:"5432"`
}

// ParseConnectionString turns a "file:" sqlite path or a postgres URI into a Config.
func ParseConnectionString(connStr string) (Config, error) {
	if strings.HasPrefix(connStr, "file:") {
		path, _, _ := strings.Cut(connStr[len("file:"):], "?")
		return Config{Name: path, Driver: "sqlite"}, nil
	}

	parsed, err := url.Parse(connStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid connection string: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return Config{}, fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}

	cnf := Config{
		Driver: "postgres",
		Name:   strings.TrimPrefix(parsed.Path, "/"),
		Host:   parsed.Hostname(),
		Port:   parsed.Port(),
		Schema: parsed.Query().Get("search_path"),
	}
	if cnf.Port == "" {
		cnf.Port = "5432"
	} else if _, err := strconv.Atoi(cnf.Port); err != nil {
		return Config{}, fmt.Errorf("invalid port: %s", cnf.Port)
	}
	if user := parsed.User; user != nil {
		cnf.Username = user.Username()
		cnf.Password, _ = user.Password()
	}
	return cnf, nil
}

// Connect opens the database described by cnf. models are auto-migrated on sqlite; on postgres
// the embedded migrations must already cover them.
func Connect(ctx context.Context, cnf Config, models ...any) (*gorm.DB, error) {
	if cnf.URL != "" {
		parsed, err := ParseConnectionString(cnf.URL)
		if err != nil {
			return nil, err
		}
		cnf = parsed
	}

	switch cnf.Driver {
	case "postgres":
		return connectToPostgresql(ctx, cnf)
	case "sqlite", "":
		return connectToSqlite(ctx, cnf, models)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cnf.Driver)
	}
}

func gormConfig(cnf Config) *gorm.Config {
	conf := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cnf.Schema != "" {
		conf.NamingStrategy = schema.NamingStrategy{TablePrefix: cnf.Schema + "."}
	}
	return conf
}

func connectToPostgresql(ctx context.Context, cnf Config) (*gorm.DB, error) {
	lg := log.FromContext(ctx).WithName("database")
	lg.Info("connecting to postgresql", "host", cnf.Host, "name", cnf.Name)

	if err := ensurePostgresqlSchema(ctx, cnf); err != nil {
		return nil, fmt.Errorf("failed to ensure postgresql schema: %w", err)
	}
	if err := migratePostgres(ctx, cnf); err != nil {
		return nil, fmt.Errorf("failed to apply postgresql migrations: %w", err)
	}

	db, err := gorm.Open(postgres.Open(postgresqlDSN(cnf)), gormConfig(cnf))
	if err != nil {
		return nil, err
	}
	return db, nil
}

func connectToSqlite(ctx context.Context, cnf Config, models []any) (*gorm.DB, error) {
	lg := log.FromContext(ctx).WithName("database")

	dsn := "file::memory:?cache=shared"
	if cnf.Name != "" {
		dsn = fmt.Sprintf("file:%s?cache=shared", cnf.Name)
		lg.Info("connecting to sqlite", "name", cnf.Name)
	} else {
		lg.Info("connecting to in-memory sqlite")
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(cnf))
	if err != nil {
		return nil, err
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
	}
	return db, nil
}

func postgresqlDSN(cnf Config) string {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		cnf.Username, cnf.Password, cnf.Host, cnf.Port, cnf.Name,
	)
	if cnf.Schema != "" {
		dsn = fmt.Sprintf("%s search_path=%s", dsn, cnf.Schema)
	}
	return dsn
}

func ensurePostgresqlSchema(ctx context.Context, cnf Config) error {
	lg := log.FromContext(ctx).WithName("database")
	if cnf.Schema == "" {
		return nil
	}

	noSchema := cnf
	noSchema.Schema = ""
	db, err := sqlx.ConnectContext(ctx, "postgres", postgresqlDSN(noSchema))
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	if err := db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)", cnf.Schema); err != nil {
		return fmt.Errorf("error while checking schema existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", cnf.Schema)); err != nil {
		return fmt.Errorf("error while creating schema: %w", err)
	}
	lg.Info("schema created", "schema", cnf.Schema)
	return nil
}

func migratePostgres(ctx context.Context, cnf Config) error {
	lg := log.FromContext(ctx).WithName("database")

	db, err := goose.OpenDBWithDriver("postgres", postgresqlDSN(cnf))
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations/postgres"); err != nil {
		return err
	}

	lg.Info("applied migrations")
	return nil
}
