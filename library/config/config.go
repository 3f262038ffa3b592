package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/session"
	"github.com/Astemirdum/perpustakaan/pkg/circuit_breaker"
	"github.com/Astemirdum/perpustakaan/pkg/kafka"
	"github.com/Astemirdum/perpustakaan/pkg/logger"
	"github.com/Astemirdum/perpustakaan/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
}

type Storage struct {
	Driver     string `envconfig:"STORAGE_DRIVER" default:"memory"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"perpustakaan.db"`
	// Seed loads the starter catalog into an empty memory store.
	Seed bool `envconfig:"STORAGE_SEED" default:"true"`
}

type Ledger struct {
	SweepInterval time.Duration `envconfig:"LEDGER_SWEEP_INTERVAL" default:"1h"`
	// RestoreOnReturn flips a book back to available when it is returned.
	RestoreOnReturn bool `envconfig:"LEDGER_RESTORE_ON_RETURN" default:"false"`
}

// Admin, when Username is set, is created at startup unless it already exists.
type Admin struct {
	Username string `envconfig:"ADMIN_USERNAME"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@perpustakaan.local"`
}

type Config struct {
	Server   HTTPServer `yaml:"server"`
	Storage  Storage
	Database postgres.DB `yaml:"db"`
	Auth     session.Config
	Admin    Admin
	Ledger   Ledger
	Kafka    kafka.Config
	Breaker  circuit_breaker.Config
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options are applied on top and
// win over the environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
		printConfig(*cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	cfg.Database.Password = mask(cfg.Database.Password)
	cfg.Auth.Key = mask(cfg.Auth.Key)
	cfg.Admin.Password = mask(cfg.Admin.Password)
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
