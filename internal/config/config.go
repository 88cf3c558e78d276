// Package config reads the service configuration via Viper from env vars
// and an optional config file (env vars win).
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups every deployment knob of the service.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Engine EngineConfig
	Sheets SheetsConfig
}

// AppConfig is the general application configuration.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig is the HTTP listener configuration.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineConfig carries the engine parameters: the fixed tax factor, the
// Pareto threshold and gap floor, whether negative denied quantities
// (adjustments/returns) count, the reference year for MTD comparisons and
// the header under which the negados export hides its quantity.
type EngineConfig struct {
	TaxFactor              float64
	ParetoThreshold        float64
	ParetoGapFloor         float64
	IncludeNegativeNegados bool
	ReferenceYear          int
	NegadosQuantityColumn  string
}

// SheetRef identifies one Google sheet tab.
type SheetRef struct {
	SheetID string `mapstructure:"sheet_id"`
	Tab     string `mapstructure:"tab"`
}

// SheetsConfig maps the four sources to their sheets. Meses maps an
// uppercase month key (ENERO, FEBRERO, ...) to that month's ventas sheet.
type SheetsConfig struct {
	Clientes        SheetRef
	Negados         SheetRef
	Precios         SheetRef
	Meses           map[string]SheetRef
	CacheTTLSeconds int
}

// CacheTTL returns the fetch-cache time-to-live.
func (c SheetsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads configuration from env vars and optionally config.yaml in the
// working directory. Expected names: HTTP_PORT, TAX_FACTOR, SHEET_CLIENTES_ID, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // el archivo es opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "ventas-service"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8084),
		},
		Engine: EngineConfig{
			TaxFactor:              getFloat(v, "TAX_FACTOR", 1.16),
			ParetoThreshold:        getFloat(v, "PARETO_THRESHOLD", 0.8),
			ParetoGapFloor:         getFloat(v, "PARETO_GAP_FLOOR", 0),
			IncludeNegativeNegados: getBool(v, "INCLUDE_NEGATIVE_NEGADOS", false),
			ReferenceYear:          getInt(v, "MTD_REFERENCE_YEAR", 2025),
			NegadosQuantityColumn:  getString(v, "NEGADOS_QTY_COLUMN", "(expression)"),
		},
		Sheets: SheetsConfig{
			Clientes: SheetRef{
				SheetID: getString(v, "SHEET_CLIENTES_ID", ""),
				Tab:     getString(v, "SHEET_CLIENTES_TAB", "Hoja1"),
			},
			Negados: SheetRef{
				SheetID: getString(v, "SHEET_NEGADOS_ID", ""),
				Tab:     getString(v, "SHEET_NEGADOS_TAB", "Hoja1"),
			},
			Precios: SheetRef{
				SheetID: getString(v, "SHEET_PRECIOS_ID", ""),
				Tab:     getString(v, "SHEET_PRECIOS_TAB", "Hoja1"),
			},
			Meses:           loadMeses(v),
			CacheTTLSeconds: getInt(v, "SHEET_CACHE_TTL_SECONDS", 300),
		},
	}

	return cfg, nil
}

// loadMeses reads the month → ventas-sheet mapping from the config file
// (key "meses"). Month keys are uppercased so request paths match
// regardless of how the file spells them.
func loadMeses(v *viper.Viper) map[string]SheetRef {
	raw := map[string]SheetRef{}
	if err := v.UnmarshalKey("meses", &raw); err != nil {
		return map[string]SheetRef{}
	}
	meses := make(map[string]SheetRef, len(raw))
	for key, ref := range raw {
		meses[strings.ToUpper(strings.TrimSpace(key))] = ref
	}
	return meses
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			f, _ := strconv.ParseFloat(v.GetString(key), 64)
			return f
		default:
			return v.GetFloat64(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
