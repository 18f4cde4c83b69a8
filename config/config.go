package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del optimizador.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Season  SeasonConfig  `yaml:"season"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SolverConfig controla el modelo y el branch-and-bound.
type SolverConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	BigM              float64 `yaml:"big_m"`               // tope del big-M de Autopilot; debe superar max(pts) - min(pts)
	PenaltyWeight     float64 `yaml:"penalty_weight"`      // puntos por transferencia extra
	PriceChangeWeight float64 `yaml:"price_change_weight"` // peso del cambio de precio en el objetivo; 0 lo ignora
	IntegralityTol    float64 `yaml:"integrality_tol"`
	MaxNodes          int     `yaml:"max_nodes"`
	Workers           int     `yaml:"workers"` // escenarios en paralelo con -compare
}

// SeasonConfig contiene los parámetros de la temporada.
type SeasonConfig struct {
	DefaultBudget float64 `yaml:"default_budget"` // presupuesto de la primera carrera
}

// CatalogConfig indica de dónde salen las proyecciones.
// Si URL está presente tiene prioridad sobre Path.
type CatalogConfig struct {
	Path              string  `yaml:"path"` // .json | .yaml | .csv
	URL               string  `yaml:"url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración sin archivo: solo env y defaults.
func Default() *Config {
	_ = godotenv.Load()
	var cfg Config
	_ = applyEnvOverrides(&cfg) // un override inválido deja el default
	setDefaults(&cfg)
	return &cfg
}

// SolverTimeout devuelve el límite de tiempo del solver como time.Duration.
func (c *Config) SolverTimeout() time.Duration {
	return time.Duration(c.Solver.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("OPTIMISER_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("PROJECTIONS_URL"); v != "" {
		cfg.Catalog.URL = v
	}
	if v := os.Getenv("SOLVER_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOLVER_TIMEOUT_SECONDS=%q: %w", v, err)
		}
		cfg.Solver.TimeoutSeconds = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Solver.TimeoutSeconds <= 0 {
		cfg.Solver.TimeoutSeconds = 30
	}
	if cfg.Solver.BigM <= 0 {
		cfg.Solver.BigM = 1000
	}
	if cfg.Solver.PenaltyWeight <= 0 {
		cfg.Solver.PenaltyWeight = 10
	}
	if cfg.Solver.IntegralityTol <= 0 {
		cfg.Solver.IntegralityTol = 1e-6
	}
	if cfg.Solver.MaxNodes <= 0 {
		cfg.Solver.MaxNodes = 200000
	}
	if cfg.Season.DefaultBudget <= 0 {
		cfg.Season.DefaultBudget = 100
	}
	if cfg.Catalog.Path == "" && cfg.Catalog.URL == "" {
		cfg.Catalog.Path = "data/projections.csv"
	}
	if cfg.Catalog.RequestsPerSecond <= 0 {
		cfg.Catalog.RequestsPerSecond = 2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "f1optimiser.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
