package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/application/services/session"
	"github.com/vsinha/subsidy/pkg/config"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
	"github.com/vsinha/subsidy/pkg/infrastructure/api"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/subsidy/pkg/interfaces/cli/output"
)

// Config holds the flags shared by every command
type Config struct {
	EnvFile           string
	ScenarioDir       string
	InventoryFile     string
	BeneficiariesFile string
	Offline           bool
	Format            string
	Verbose           bool
}

// app is the wiring built once per invocation
type app struct {
	flags    Config
	settings *config.Config
	logger   *zap.Logger
	events   *events.InMemoryEventStore

	inventory     repositories.InventoryRepository
	beneficiaries repositories.BeneficiaryRepository
	programs      repositories.ProgramRepository
}

func newApp(flags Config) (*app, error) {
	if err := (output.Config{Format: flags.Format}).Validate(); err != nil {
		return nil, err
	}

	var settings *config.Config
	if flags.EnvFile != "" {
		settings = config.Load(flags.EnvFile)
	} else {
		settings = config.Load()
	}

	loggerCfg := &logger.ZapLoggerConfig{
		IsDevelopment:     settings.IsDevelopment(),
		Encoding:          settings.Logger.Encoding,
		Level:             settings.Logger.Level,
		DisableCaller:     settings.Logger.DisableCaller,
		DisableStacktrace: settings.Logger.DisableStacktrace,
	}
	if flags.Verbose {
		loggerCfg.Level = "debug"
	}
	log, err := logger.NewZapLogger(loggerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a := &app{
		flags:    flags,
		settings: settings,
		logger:   log,
		events:   events.NewInMemoryEventStore(log),
	}
	if err := a.events.Subscribe(nil, events.LogHandler(log.Named("events"))); err != nil {
		return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
	}
	if err := a.wireBackends(); err != nil {
		return nil, err
	}
	return a, nil
}

// wireBackends picks the REST API or, offline, the CSV-backed in-memory authority
func (a *app) wireBackends() error {
	if !a.flags.Offline {
		client := api.NewClient(a.settings.API.BaseURL, a.settings.API.Timeout, a.logger)
		a.inventory = client
		a.beneficiaries = client
		a.programs = client
		a.logger.Debug("using subsidy API", zap.String("base_url", a.settings.API.BaseURL))
		return nil
	}

	files, err := a.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	loader := csv.NewLoader()
	items, err := loader.LoadInventory(files["Inventory"])
	if err != nil {
		return fmt.Errorf("error loading inventory: %w", err)
	}
	registry, err := loader.LoadBeneficiaries(files["Beneficiaries"])
	if err != nil {
		return fmt.Errorf("error loading beneficiaries: %w", err)
	}

	inventoryRepo := memory.NewInventoryRepository()
	if err := inventoryRepo.LoadInventoryItems(items); err != nil {
		return fmt.Errorf("failed to load inventory into repository: %w", err)
	}
	beneficiaryRepo := memory.NewBeneficiaryRepository(len(registry))
	if err := beneficiaryRepo.LoadBeneficiaries(registry); err != nil {
		return fmt.Errorf("failed to load beneficiaries into repository: %w", err)
	}

	a.inventory = inventoryRepo
	a.beneficiaries = beneficiaryRepo
	a.programs = memory.NewProgramRepository(inventoryRepo)
	a.logger.Debug("using offline data",
		zap.String("inventory", files["Inventory"]),
		zap.String("beneficiaries", files["Beneficiaries"]),
		zap.Int("inventory_items", len(items)),
		zap.Int("registry", len(registry)))
	return nil
}

// resolveInputFiles determines the actual file paths to use
func (a *app) resolveInputFiles() (map[string]string, error) {
	inventoryPath := a.flags.InventoryFile
	beneficiariesPath := a.flags.BeneficiariesFile
	if a.flags.ScenarioDir != "" {
		if inventoryPath == "" {
			inventoryPath = filepath.Join(a.flags.ScenarioDir, "inventory.csv")
		}
		if beneficiariesPath == "" {
			beneficiariesPath = filepath.Join(a.flags.ScenarioDir, "beneficiaries.csv")
		}
	}
	if inventoryPath == "" || beneficiariesPath == "" {
		return nil, fmt.Errorf("offline mode needs --scenario or both --inventory and --beneficiaries")
	}

	files := map[string]string{
		"Inventory":     inventoryPath,
		"Beneficiaries": beneficiariesPath,
	}
	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}
	return files, nil
}

func (a *app) newSession() *session.Session {
	return session.New(session.Options{
		Inventory:     a.inventory,
		Beneficiaries: a.beneficiaries,
		Programs:      a.programs,
		EventStore:    a.events,
		Logger:        a.logger,
		Debounce:      a.settings.Allocation.RecomputeDebounce,
		BulkAddLimit:  a.settings.Allocation.BulkAddLimit,
	})
}

func (a *app) outputConfig() output.Config {
	return output.Config{Format: a.flags.Format, Verbose: a.flags.Verbose}
}

func (a *app) close() {
	_ = a.logger.Sync()
}
