package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rpattn/listimport/internal/cache"
	"github.com/rpattn/listimport/internal/config"
	"github.com/rpattn/listimport/internal/db"
	"github.com/rpattn/listimport/internal/ingestion"
	"github.com/rpattn/listimport/internal/repository"
	"github.com/rpattn/listimport/internal/resolve"
	"github.com/rpattn/listimport/internal/source"

	"github.com/valkey-io/valkey-go"
)

// Runtime holds the connections and repositories shared by the commands.
type Runtime struct {
	Config    config.Config
	Logger    *slog.Logger
	Conn      *db.Connection
	Fields    repository.FieldRepository
	Directory repository.DirectoryRepository
	Items     repository.ListItemRepository
	Taxonomy  repository.TaxonomyRepository
	Logs      repository.ImportLogRepository
	Opener    *source.Opener

	cache       cache.Store
	cacheClient valkey.Client
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Start connects to the target store and the optional cache and object
// storage. When migrate is set the list store schema is brought up to date
// first.
func Start(ctx context.Context, cfg config.Config, logger *slog.Logger, migrate bool) (*Runtime, error) {
	if migrate {
		if err := db.RunMigrations(cfg.Database, logger); err != nil {
			return nil, err
		}
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to list store", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.DBName))

	rt := &Runtime{
		Config:    cfg,
		Logger:    logger,
		Conn:      conn,
		Fields:    repository.NewFieldRepository(conn.Pool),
		Directory: repository.NewDirectoryRepository(conn.Pool),
		Items:     repository.NewListItemRepository(conn.Pool),
		Taxonomy:  repository.NewTaxonomyRepository(conn.Pool),
		Logs:      repository.NewImportLogRepository(conn.Pool),
	}

	if cfg.Cache.Enabled() {
		client, err := cache.NewValkeyClient(ctx, cfg.Cache)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.cacheClient = client
		rt.cache = cache.NewValkeyStore(client, fmt.Sprintf("listimport:%s:", cfg.Database.DBName))
		logger.Info("connected to valkey", slog.String("addr", cfg.Cache.Addr))
	}

	var objects source.ObjectStore
	if cfg.Storage.Enabled() {
		store, err := source.NewMinIOStore(cfg.Storage)
		if err != nil {
			rt.Close()
			return nil, err
		}
		objects = store
		logger.Info("object storage configured", slog.String("endpoint", cfg.Storage.Endpoint), slog.String("bucket", store.Bucket()))
	}
	rt.Opener = source.NewOpener(objects)

	return rt, nil
}

// NewService assembles an import service that classifies fields through
// fields.
func (rt *Runtime) NewService(fields resolve.FieldSource) *ingestion.Service {
	return NewService(rt.Config, rt.Logger, fields, Repositories{
		Directory: rt.Directory,
		Items:     rt.Items,
		Taxonomy:  rt.Taxonomy,
		Logs:      rt.Logs,
	}, rt.cache)
}

// Close releases every connection held by the runtime.
func (rt *Runtime) Close() {
	if rt.cacheClient != nil {
		rt.cacheClient.Close()
	}
	if rt.Conn != nil {
		rt.Conn.Close()
	}
}

// Repositories are the stores an import service reads and writes.
type Repositories struct {
	Directory repository.DirectoryRepository
	Items     repository.ListItemRepository
	Taxonomy  repository.TaxonomyRepository
	Logs      repository.ImportLogRepository
}

// NewService wires classifier, resolvers and assembler into a service.
// store may be nil.
func NewService(cfg config.Config, logger *slog.Logger, fields resolve.FieldSource, repos Repositories, store cache.Store) *ingestion.Service {
	remote := resolve.NewRemote(cfg.Remote, logger)

	entities := resolve.NewEntityResolver(repos.Directory, remote)
	lookups := resolve.NewLookupResolver(repos.Items, cfg.Lookup, remote)
	terms := resolve.NewTaxonomyResolver(repos.Taxonomy, cfg.Taxonomy, remote)
	if store != nil {
		entities.WithCache(store, cfg.Cache.TTL, logger)
		lookups.WithCache(store, cfg.Cache.TTL, logger)
		terms.WithCache(store, cfg.Cache.TTL, logger)
	}

	assembler := ingestion.NewAssembler(
		resolve.NewClassifier(fields, remote),
		resolve.NewResolver(entities, lookups, terms),
		cfg.Import.Concurrency,
		logger,
	)
	return ingestion.NewService(cfg, repos.Items, repos.Logs, assembler, remote, logger)
}
