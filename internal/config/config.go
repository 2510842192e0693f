package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// TaxRateKey is the fraction of every human sale payout collected as transaction tax
	TaxRateKey = "TAX_RATE"
	// MinTaxKey is the floor any nonzero transaction tax is raised to
	MinTaxKey = "MIN_TAX"
	// FeeAccountKey is the id of the account receiving the protocol share of the tax
	FeeAccountKey = "FEE_ACCOUNT"
	// RequoteDelayKey is the grace window before the market maker side not hit by a fill is re-quoted
	RequoteDelayKey = "REQUOTE_DELAY"
	// QuoteRefreshRateKey caps the periodic quote broadcast, in tickers per second. 0 disables the refresh loop
	QuoteRefreshRateKey = "QUOTE_REFRESH_RATE"
	// WebhookEndpointsKey is the list of URLs notified of every published event
	WebhookEndpointsKey = "WEBHOOK_ENDPOINTS"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"

	DBBadger   = "badger"
	DBInMemory = "inmemory"

	DbLocation       = "db"
	ProfilerLocation = "stats"
)

var vip *viper.Viper

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("STOCKSIM")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 5001)
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(TaxRateKey, 0.01)
	vip.SetDefault(MinTaxKey, 0.01)
	vip.SetDefault(FeeAccountKey, "1")
	vip.SetDefault(RequoteDelayKey, 10*time.Second)
	vip.SetDefault(QuoteRefreshRateKey, 1)
	vip.SetDefault(EnableProfilerKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	switch dbType := GetString(DBTypeKey); dbType {
	case DBBadger, DBInMemory:
	default:
		return fmt.Errorf("%s must be one of %s, %s", DBTypeKey, DBBadger, DBInMemory)
	}

	if taxRate := GetFloat(TaxRateKey); taxRate < 0 || taxRate >= 1 {
		return fmt.Errorf("%s must be in [0, 1)", TaxRateKey)
	}
	if minTax := GetFloat(MinTaxKey); minTax < 0 {
		return fmt.Errorf("%s must be equal or greater than 0", MinTaxKey)
	}
	if GetString(FeeAccountKey) == "" {
		return fmt.Errorf("missing fee account id")
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stocksim-daemon"
	}
	return filepath.Join(home, ".stocksim-daemon")
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
