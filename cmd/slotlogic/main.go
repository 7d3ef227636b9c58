// slotlogic - Parametric Attribute Resolver
//
// This is the main entry point for the slotlogic service. It loads preset
// definitions describing interface trees of typed slots, persists applied
// values in SQLite, and exposes resolution, validated writes, randomization,
// and batch apply over a REST API. Applied values are optionally published
// to MQTT and recorded as InfluxDB telemetry.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/dwneale/slotlogic/migrations"

	"github.com/dwneale/slotlogic/internal/api"
	"github.com/dwneale/slotlogic/internal/infrastructure/config"
	"github.com/dwneale/slotlogic/internal/infrastructure/database"
	"github.com/dwneale/slotlogic/internal/infrastructure/influxdb"
	"github.com/dwneale/slotlogic/internal/infrastructure/logging"
	"github.com/dwneale/slotlogic/internal/infrastructure/mqtt"
	"github.com/dwneale/slotlogic/internal/preset"
	"github.com/dwneale/slotlogic/internal/slot"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting slotlogic",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Load preset definitions and build the store
	repo := preset.NewSQLiteRepository(db.DB)
	store, err := loadPresets(ctx, cfg, repo, mqttClient, influxClient, log)
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}
	log.Info("presets loaded", "count", store.Len(), "dir", cfg.Presets.Dir)

	// Accept batch apply commands over MQTT so external controllers can
	// drive presets without going through the REST API
	if mqttClient != nil {
		if subErr := subscribeCommands(ctx, store, mqttClient, byte(cfg.MQTT.QoS), log); subErr != nil {
			return fmt.Errorf("subscribing to command topics: %w", subErr)
		}
		log.Info("command subscription active", "pattern", mqtt.Topics{}.AllCommandApplies())
	}

	// Start API server
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Store:   store,
		Repo:    repo,
		MQTT:    mqttClient,
		Influx:  influxClient,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("slotlogic stopped")
	return nil
}

// loadPresets reads preset definitions from the configured directory,
// reconciles each against the database so identities survive restarts,
// and builds the in-memory store with the full sink chain.
func loadPresets(ctx context.Context, cfg *config.Config, repo preset.Repository, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) (*preset.Store, error) {
	presets, err := preset.LoadDir(cfg.Presets.Dir)
	if err != nil {
		return nil, err
	}

	store := preset.NewStore()
	store.SetLogger(log)

	for _, p := range presets {
		// Reconcile keeps the stored ID and creation time on slug match,
		// so persisted slot values stay attached across restarts.
		if reconcileErr := repo.Reconcile(ctx, p); reconcileErr != nil {
			return nil, fmt.Errorf("reconciling preset %q: %w", p.Slug, reconcileErr)
		}

		if addErr := store.Add(p, func(p *preset.Preset) slot.Sink {
			return buildSink(p, repo, mqttClient, influxClient, cfg, log)
		}); addErr != nil {
			return nil, addErr
		}

		if mqttClient != nil {
			topic := mqtt.Topics{}.PresetLoaded(p.Slug)
			if pubErr := mqttClient.PublishString(topic, p.ID, 1, true); pubErr != nil {
				log.Warn("failed to announce preset", "slug", p.Slug, "error", pubErr)
			}
		}
	}

	return store, nil
}

// subscribeCommands listens for batch apply requests on the command topic
// hierarchy. Each request is applied through the store and the result is
// announced on the preset's batch topic. Handler errors are returned so the
// client logs them; they never crash the service.
func subscribeCommands(ctx context.Context, store *preset.Store, mqttClient *mqtt.Client, qos byte, log *logging.Logger) error {
	pattern := mqtt.Topics{}.AllCommandApplies()

	return mqttClient.Subscribe(pattern, qos, func(topic string, payload []byte) error {
		slug, ok := mqtt.ParseCommandApply(topic)
		if !ok {
			return fmt.Errorf("unexpected command topic %q", topic)
		}

		result, err := store.ApplyCommand(ctx, slug, payload)
		if err != nil {
			return fmt.Errorf("apply command for %q: %w", slug, err)
		}

		batchTopic := mqtt.Topics{}.BatchApplied(slug)
		if pubErr := mqttClient.Publish(batchTopic, result, qos, false); pubErr != nil {
			log.Warn("failed to announce batch result", "topic", batchTopic, "error", pubErr)
		}
		return nil
	})
}

// buildSink assembles the write chain for one preset. The durable SQLite
// sink comes first: if persistence fails, observers never see the value.
func buildSink(p *preset.Preset, repo preset.Repository, mqttClient *mqtt.Client, influxClient *influxdb.Client, cfg *config.Config, log *logging.Logger) slot.Sink {
	sinks := slot.MultiSink{preset.NewStateSink(repo, p.ID)}

	if mqttClient != nil {
		slug := p.Slug
		qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated to 0..2 by config
		sinks = append(sinks, slot.SinkFunc(func(_ context.Context, identifier string, value any) error {
			payload, err := json.Marshal(map[string]any{
				"identifier": identifier,
				"value":      value,
			})
			if err != nil {
				return fmt.Errorf("encoding applied value: %w", err)
			}
			topic := mqtt.Topics{}.Applied(slug, identifier)
			if pubErr := mqttClient.Publish(topic, payload, qos, true); pubErr != nil {
				// Observers must not fail the write; the value is already stored
				log.Warn("MQTT publish failed", "topic", topic, "error", pubErr)
			}
			return nil
		}))
	}

	if influxClient != nil {
		slug := p.Slug
		sinks = append(sinks, slot.SinkFunc(func(_ context.Context, identifier string, value any) error {
			kind, v, ok := telemetryValue(value)
			if ok {
				influxClient.WriteAppliedValue(slug, identifier, kind, v)
			}
			return nil
		}))
	}

	return sinks
}

// telemetryValue flattens an applied value to a single float for telemetry.
// Colours record their mean channel value.
func telemetryValue(value any) (kind string, v float64, ok bool) {
	switch val := value.(type) {
	case float64:
		return "float", val, true
	case int:
		return "int", float64(val), true
	case slot.Color:
		sum := 0.0
		for _, c := range val {
			sum += c
		}
		return "color", sum / float64(len(val)), true
	default:
		return "", 0, false
	}
}

// getConfigPath returns the configuration file path.
// Uses SLOTLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SLOTLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
