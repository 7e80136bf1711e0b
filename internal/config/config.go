package config

import (
	"os"

	"github.com/nettalink/insights-backend/internal/platform/envutil"
)

// Config carries every tunable the service reads from the environment.
// Defaults match the billing exports this system was built around.
type Config struct {
	UploadDir     string
	DataFile      string
	SOPRulesFile  string
	HistoryDBFile string

	MaxUploadBytes int64
	MaxDisplayRows int

	FixedCostPerCustomer int
	VariableCostPct      float64

	MinPhoneDigits int
	BaseKTPURL     string
}

func Load() Config {
	cfg := Config{
		UploadDir:            envutil.String("UPLOAD_DIR", "uploads"),
		DataFile:             envutil.String("DATA_FILE", "data-wifi-clean.csv"),
		SOPRulesFile:         envutil.String("SOP_RULES_FILE", "sop_rules.json"),
		HistoryDBFile:        envutil.String("HISTORY_DB_FILE", "history.db"),
		MaxUploadBytes:       int64(envutil.Int("MAX_UPLOAD_BYTES", 16*1024*1024)),
		MaxDisplayRows:       envutil.Int("MAX_DISPLAY_ROWS", 100),
		FixedCostPerCustomer: envutil.Int("FIXED_COST_PER_CUSTOMER", 50000),
		VariableCostPct:      envutil.Float("VARIABLE_COST_PCT", 0.20),
		MinPhoneDigits:       envutil.Int("MIN_PHONE_DIGITS", 8),
		BaseKTPURL:           envutil.String("BASE_KTP_URL", "https://e.ebilling.id:2096/img/ktp/"),
	}
	_ = os.MkdirAll(cfg.UploadDir, 0o755)
	return cfg
}
