// Package wire provides dependency injection for queuebot.
// It creates singleton services with lazy initialization from the
// configuration registered with Configure.
package wire

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	cliadapter "github.com/example/queuebot/internal/adapters/cli"
	"github.com/example/queuebot/internal/adapters/discord"
	"github.com/example/queuebot/internal/adapters/speedrun"
	"github.com/example/queuebot/internal/adapters/sqlite"
	"github.com/example/queuebot/internal/app"
	"github.com/example/queuebot/internal/config"
	"github.com/example/queuebot/internal/db"
	"github.com/example/queuebot/internal/logging"
	"github.com/example/queuebot/internal/ports/primary"
)

// categoryRefresh is how long a loaded category catalog is trusted.
const categoryRefresh = time.Hour

var errNotConfigured = errors.New("wire: Configure must be called first")

var (
	cfg *config.Config

	storeOnce    sync.Once
	storeErr     error
	database     *sql.DB
	runService   primary.RunService
	aliasService primary.AliasService
	runRepo      *sqlite.RunRepository
	aliasRepo    *sqlite.CategoryAliasRepository

	engineOnce       sync.Once
	engineErr        error
	catalog          *app.CategoryCatalog
	reconcileService primary.ReconcileService
	poller           *app.Poller
)

// Configure registers the configuration used to build every service.
// It must be called before any other function in this package.
func Configure(c *config.Config) {
	cfg = c
}

// Config returns the registered configuration.
func Config() *config.Config {
	return cfg
}

// initStore opens the database and builds the store-backed services.
// Only the store settings need to be valid.
func initStore() {
	if cfg == nil {
		storeErr = errNotConfigured
		return
	}
	if storeErr = cfg.ValidateStore(); storeErr != nil {
		return
	}

	database, storeErr = db.Open(cfg.DatabaseURL)
	if storeErr != nil {
		return
	}

	runRepo = sqlite.NewRunRepository(database)
	aliasRepo = sqlite.NewCategoryAliasRepository(database)

	runService = app.NewRunService(runRepo)
	aliasService = app.NewAliasService(aliasRepo, cfg.Source.GameID)
}

// initEngine builds the HTTP clients and the reconciliation engine.
// The full configuration must be valid.
func initEngine() {
	storeOnce.Do(initStore)
	if storeErr != nil {
		engineErr = storeErr
		return
	}
	if engineErr = cfg.Validate(); engineErr != nil {
		return
	}

	gatewayClient, err := discord.New(cfg.Discord.BaseURL, cfg.Discord.Token, cfg.Discord.ChannelID,
		discord.WithTimeout(cfg.HTTPTimeout),
		discord.WithChannelInfoTTL(cfg.Discord.ChannelInfoTTL),
		discord.WithLogger(logging.New("discord")),
	)
	if err != nil {
		engineErr = err
		return
	}

	sourceOpts := []speedrun.Option{
		speedrun.WithTimeout(cfg.HTTPTimeout),
		speedrun.WithPageSize(cfg.Source.PageSize),
		speedrun.WithLogger(logging.New("speedrun")),
	}
	if cfg.Source.APIKey != "" {
		sourceOpts = append(sourceOpts, speedrun.WithAPIKey(cfg.Source.APIKey))
	}
	sourceClient, err := speedrun.New(cfg.Source.BaseURL, cfg.Source.GameID, sourceOpts...)
	if err != nil {
		engineErr = err
		return
	}

	gateway := app.NewRateLimitedGateway(gatewayClient, app.SleepContext)
	catalog = app.NewCategoryCatalog(sourceClient, aliasRepo, cfg.Source.GameID, categoryRefresh)

	sweep := app.NewSweepReconciler(runRepo, sourceClient, gateway, cfg.Source.NotFoundMarker)
	intake := app.NewIntakeReconciler(runRepo, sourceClient, gateway, catalog, cfg.Source.NotFoundMarker)

	reconcileService = app.NewReconcileService(sweep, intake)
	poller = app.NewPoller(reconcileService, cfg.PollInterval)
}

// Database returns the shared database handle.
func Database() (*sql.DB, error) {
	storeOnce.Do(initStore)
	return database, storeErr
}

// RunService returns the singleton RunService instance.
func RunService() (primary.RunService, error) {
	storeOnce.Do(initStore)
	return runService, storeErr
}

// AliasService returns the singleton AliasService instance.
func AliasService() (primary.AliasService, error) {
	storeOnce.Do(initStore)
	return aliasService, storeErr
}

// ReconcileService returns the singleton ReconcileService instance.
func ReconcileService() (primary.ReconcileService, error) {
	engineOnce.Do(initEngine)
	return reconcileService, engineErr
}

// CategoryCatalog returns the category catalog used for thread titles.
func CategoryCatalog() (*app.CategoryCatalog, error) {
	engineOnce.Do(initEngine)
	return catalog, engineErr
}

// Poller returns the poll loop driver.
func Poller() (*app.Poller, error) {
	engineOnce.Do(initEngine)
	return poller, engineErr
}

// Close releases the database handle, if one was opened.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// RunAdapter returns a new RunAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func RunAdapter() (*cliadapter.RunAdapter, error) {
	return RunAdapterWithOutput(os.Stdout)
}

// RunAdapterWithOutput returns a new RunAdapter writing to the given output.
func RunAdapterWithOutput(out io.Writer) (*cliadapter.RunAdapter, error) {
	svc, err := RunService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewRunAdapter(svc, out), nil
}

// AliasAdapter returns a new AliasAdapter writing to stdout.
func AliasAdapter() (*cliadapter.AliasAdapter, error) {
	svc, err := AliasService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewAliasAdapter(svc, os.Stdout), nil
}

// CycleAdapter returns a new CycleAdapter writing to stdout.
func CycleAdapter() (*cliadapter.CycleAdapter, error) {
	svc, err := ReconcileService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewCycleAdapter(svc, os.Stdout), nil
}
