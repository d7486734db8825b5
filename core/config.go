package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		WorkDir      string
		SecretKey    string // signs session cookies
		Password     string // shared access secret; empty means not configured
		RollbarToken string
		Server       ServerConfig
		Extract      ExtractConfig
		Upload       UploadConfig
	}

	ServerConfig struct {
		Address         string
		Host            string
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration
	}

	ExtractConfig struct {
		ClassScanRows     int
		FallbackHeaderRow int
		ConceptSubjects   []string
		Concepts          map[string]float64 // concept code (upper-cased) -> score
	}

	UploadConfig struct {
		MaxFiles    int
		MaxFileSize int64 // bytes
	}
)

// NewConfig loads the configuration from defaults, `config/.env.<env>`, `config/secrets.toml` and the environment.
// Environment variables are prefixed with the upper-cased ENV, eg. `DEV_PASSWORD`, `PROD_SERVER_ADDRESS`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Conselho")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "x7#kq2!mf0=zr&d9vb$+3uo*c8(h!e)pwy4^t6snj1g5@la")
	v.SetDefault("password", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionTTL", 12*time.Hour)
	v.SetDefault("extract.classScanRows", 15)
	v.SetDefault("extract.fallbackHeaderRow", 10)
	v.SetDefault("extract.conceptSubjects", []string{"ESPORTE-MÚSICA-ARTE"})
	v.SetDefault("extract.concepts", map[string]interface{}{"ET": 10, "ES": 5, "EP": 4})
	v.SetDefault("upload.maxFiles", 40)
	v.SetDefault("upload.maxFileSize", 10<<20)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// secrets.toml holds the access password (ignore if it does not exist)
	v.SetConfigName("secrets")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(workDir, "config"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("config.ReadInConfig(): %v", err)
		}
	}
	v.AutomaticEnv()

	concepts, err := parseConcepts(v.GetStringMap("extract.concepts"))
	if err != nil {
		log.Fatalf("config.extract.concepts: %v", err)
	}

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      workDir,
		SecretKey:    v.GetString("secretKey"),
		Password:     v.GetString("password"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionTTL:      v.GetDuration("server.sessionTTL"),
		},
		Extract: ExtractConfig{
			ClassScanRows:     v.GetInt("extract.classScanRows"),
			FallbackHeaderRow: v.GetInt("extract.fallbackHeaderRow"),
			ConceptSubjects:   v.GetStringSlice("extract.conceptSubjects"),
			Concepts:          concepts,
		},
		Upload: UploadConfig{
			MaxFiles:    v.GetInt("upload.maxFiles"),
			MaxFileSize: v.GetInt64("upload.maxFileSize"),
		},
	}
}

// parseConcepts normalizes the concept table. viper lowers map keys, so codes are upper-cased back.
func parseConcepts(raw map[string]interface{}) (map[string]float64, error) {
	concepts := make(map[string]float64, len(raw))
	for code, val := range raw {
		var score float64
		switch v := val.(type) {
		case int:
			score = float64(v)
		case int64:
			score = float64(v)
		case float64:
			score = v
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("concept %q: %v", code, err)
			}
			score = f
		default:
			return nil, fmt.Errorf("concept %q: unsupported value %v", code, val)
		}
		concepts[strings.ToUpper(CleanString(code))] = score
	}
	return concepts, nil
}
