package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SessionCookieName         string
		SecureCookies             bool
		DefaultPageSize           int
		MaxPageSize               int
	}

	ConsoleConfig struct {
		APIBaseURL  string
		SessionFile string
		Timeout     time.Duration
	}

	Config struct {
		Env      string
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName                   string
		SecretKey                 string
		FrontendBaseURL           string
		RollbarToken              string
		SendgridApiKey            string
		DefaultFromEmailName      string
		DefaultFromEmailAddress   string
		CancellationTimeoutDelta  time.Duration
		PasswordResetTimeoutDelta time.Duration
		AppointmentSlots          []string
		AppointmentNotifyAddress  string
		Database                  DatabaseConfig
		Server                    ServerConfig
		Console                   ConsoleConfig
	}
)

// MemoryEngine keeps every record in process memory. Data is lost on restart.
const MemoryEngine = "memory"

func (conf DatabaseConfig) InMemory() bool {
	return conf.Engine == MemoryEngine
}

func (conf DatabaseConfig) Address() string {
	return conf.Host + ":" + conf.Port
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.DefaultFromEmailName, Address: conf.DefaultFromEmailAddress}
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from the environment, optionally pre-populated from config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Safari")
	v.SetDefault("secretKey", "k3s9-dl(1x$+q8=hs&wje0@v^z#g2!6c$rmf_t7yb%a4n")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmailName", "Safari Study Abroad")
	v.SetDefault("defaultFromEmailAddress", "noreply@localhost")
	v.SetDefault("cancellationTimeoutDelta", 14*24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("appointmentSlots", []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"})
	v.SetDefault("appointmentNotifyAddress", "")

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "safari")
	v.SetDefault("dbUser", "safari")
	v.SetDefault("dbPassword", "safari")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("sessionCookieName", "session")
	v.SetDefault("secureCookies", false)
	v.SetDefault("defaultPageSize", 12)
	v.SetDefault("maxPageSize", 100)

	v.SetDefault("consoleAPIBaseURL", "http://localhost:8000/api")
	v.SetDefault("consoleSessionFile", filepath.Join(userHome(), ".safari", "session"))
	v.SetDefault("consoleTimeout", 15*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()
	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                      env,
		Build:                    v.GetString("build"),
		Debug:                    v.GetBool("debug"),
		TestMode:                 v.GetBool("testMode"),
		WorkDir:                  wd,
		AppName:                  v.GetString("appName"),
		SecretKey:                v.GetString("secretKey"),
		FrontendBaseURL:          v.GetString("frontendBaseURL"),
		RollbarToken:             v.GetString("rollbarToken"),
		SendgridApiKey:           v.GetString("sendgridApiKey"),
		DefaultFromEmailName:     v.GetString("defaultFromEmailName"),
		DefaultFromEmailAddress:  v.GetString("defaultFromEmailAddress"),
		CancellationTimeoutDelta: v.GetDuration("cancellationTimeoutDelta"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		AppointmentSlots:         v.GetStringSlice("appointmentSlots"),
		AppointmentNotifyAddress: v.GetString("appointmentNotifyAddress"),
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			SessionCookieName:         v.GetString("sessionCookieName"),
			SecureCookies:             v.GetBool("secureCookies"),
			DefaultPageSize:           v.GetInt("defaultPageSize"),
			MaxPageSize:               v.GetInt("maxPageSize"),
		},
		Console: ConsoleConfig{
			APIBaseURL:  v.GetString("consoleAPIBaseURL"),
			SessionFile: v.GetString("consoleSessionFile"),
			Timeout:     v.GetDuration("consoleTimeout"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no .env lookup, no network services.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		AppName:                   "Safari",
		SecretKey:                 "test-secret",
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmailName:      "Safari Study Abroad",
		DefaultFromEmailAddress:   "noreply@test.local",
		CancellationTimeoutDelta:  14 * 24 * time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		AppointmentSlots:          []string{"09:00", "10:00", "11:00", "14:00"},
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			SessionCookieName:         "session",
			DefaultPageSize:           12,
			MaxPageSize:               100,
		},
	}
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
