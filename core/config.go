package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL    string
		Timeout    time.Duration
		LoginPath  string
		MaxRetries int
		Token      string
	}

	ServerConfig struct {
		Address            string
		Host               string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
	}

	GradebookConfig struct {
		// SequenceGrades discards out-of-order responses for the same grade cell.
		SequenceGrades bool
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		Locale       string
		RollbarToken string

		API       APIConfig
		Server    ServerConfig
		Gradebook GradebookConfig
	}
)

func newViper() (*viper.Viper, string) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("app_name", "Professor AI Helper")
	v.SetDefault("build", "dev")
	v.SetDefault("locale", "ru")
	v.SetDefault("rollbar_token", "")

	v.SetDefault("api.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.login_path", "/login")
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.token", "")

	v.SetDefault("gradebook.sequence_grades", false)

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.secret_key", "k2v#90-pu7)wq$mcx!gd8=ztn3(h@e&ry4^f*lb6")
	v.SetDefault("server.jwt_expiration_delta", 7*24*time.Hour)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.disable_request_logs", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if dotEnvPath, ok := findUp(filepath.Join("config", ".env."+strings.ToLower(env))); ok {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()
	return v, env
}

// NewConfig reads the configuration from the environment.
func NewConfig() *Config {
	v, env := newViper()
	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("test_mode"),
		AppName:      v.GetString("app_name"),
		Build:        v.GetString("build"),
		Locale:       v.GetString("locale"),
		RollbarToken: v.GetString("rollbar_token"),
		API: APIConfig{
			BaseURL:    strings.TrimSuffix(v.GetString("api.base_url"), "/"),
			Timeout:    v.GetDuration("api.timeout"),
			LoginPath:  v.GetString("api.login_path"),
			MaxRetries: v.GetInt("api.max_retries"),
			Token:      v.GetString("api.token"),
		},
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			Host:               v.GetString("server.host"),
			SecretKey:          v.GetString("server.secret_key"),
			JWTExpirationDelta: v.GetDuration("server.jwt_expiration_delta"),
			ShutdownTimeout:    v.GetDuration("server.shutdown_timeout"),
			DisableReqLogs:     v.GetBool("server.disable_request_logs"),
		},
		Gradebook: GradebookConfig{
			SequenceGrades: v.GetBool("gradebook.sequence_grades"),
		},
	}
}
