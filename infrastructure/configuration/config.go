package configuration

import (
	"fmt"
	"os"
	"strconv"

	"alfreds-toolbox/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Security    Security    `json:"security"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	License     License     `json:"license"`
	Spotify     Spotify     `json:"spotify"`
	Analytics   Analytics   `json:"analytics"`
	Newsletter  Newsletter  `json:"newsletter"`
	Preload     Preload     `json:"preload"`
	Pubsub      Pubsub      `json:"pubsub"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	SiteURL     string `json:"siteURL"`
	Timezone    string `json:"timezone"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	// AllowOrigins lists the admin front-ends allowed by CORS.
	AllowOrigins []string `json:"allowOrigins"`
}

// Security holds the host secrets the encrypted option store derives its key from.
type Security struct {
	LoggedInKey  string `json:"loggedInKey"`
	LoggedInSalt string `json:"loggedInSalt"`
	NonceKey     string `json:"nonceKey"`
	NonceSalt    string `json:"nonceSalt"`
}

type Database struct {
	// Driver selects the option store: bolt (default), postgres or mssql.
	Driver   string `json:"driver"`
	BoltPath string `json:"boltPath"`
	Psql     Db     `json:"psql"`
	Mssql    Db     `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host      string `json:"host"`
	Port      string `json:"port"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"keyPrefix"`
}

type License struct {
	APIURL string `json:"apiURL"`
	Key    string `json:"key"`
}

type Spotify struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TokenURL     string `json:"tokenURL"`
	APIBaseURL   string `json:"apiBaseURL"`
	Market       string `json:"market"`
}

type Analytics struct {
	PropertyID         string `json:"propertyId"`
	ServiceAccountFile string `json:"serviceAccountFile"`
	Endpoint           string `json:"endpoint"`
	IconDir            string `json:"iconDir"`
}

type Newsletter struct {
	WebhookURL string `json:"webhookURL"`
	Language   string `json:"language"`
}

// Preload selects how one-shot cache warm-up jobs are dispatched: inline or pubsub.
type Preload struct {
	Backend      string `json:"backend"`
	Topic        string `json:"topic"`
	Subscription string `json:"subscription"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
}

var C Config

func init() {
	Reload()
}

// Reload rebuilds C from the config file and the current environment.
// Call it after LoadEnvFromFile so values from env files apply.
func Reload() {
	C = Config{}
	LoadConfig()
	initApp(&C)
	initSecurity(&C)
	initDatabase(&C)
	initServices(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	C.App.SiteURL = getConfigValue(C.App.SiteURL, "SITE_URL", "http://localhost")
	C.App.Timezone = getConfigValue(C.App.Timezone, "TIMEZONE", "Europe/Berlin")
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if len(C.App.AllowOrigins) == 0 {
		C.App.AllowOrigins = []string{"http://localhost:4200", "http://localhost:8080"}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; nonces and admin tokens cannot be verified. Provide SECRET_KEY via environment.")
	}
}

func initSecurity(C *Config) {
	C.Security.LoggedInKey = getConfigValue(C.Security.LoggedInKey, "LOGGED_IN_KEY", "")
	C.Security.LoggedInSalt = getConfigValue(C.Security.LoggedInSalt, "LOGGED_IN_SALT", "")
	C.Security.NonceKey = getConfigValue(C.Security.NonceKey, "NONCE_KEY", "")
	C.Security.NonceSalt = getConfigValue(C.Security.NonceSalt, "NONCE_SALT", "")
	if C.Security.LoggedInKey == "" || C.Security.LoggedInSalt == "" {
		logger.GetLogger().Warn("LOGGED_IN_KEY/LOGGED_IN_SALT not set; encrypted credential storage is disabled")
	}
}

func initDatabase(C *Config) {
	C.Database.Driver = getConfigValue(C.Database.Driver, "DB_DRIVER", "bolt")
	C.Database.BoltPath = getConfigValue(C.Database.BoltPath, "BOLT_PATH", "alfreds-toolbox.db")

	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")
}

func initServices(C *Config) {
	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
	C.RedisClient.KeyPrefix = getConfigValue(C.RedisClient.KeyPrefix, "REDIS_KEY_PREFIX", "alfreds_toolbox:")

	C.License.APIURL = getConfigValue(C.License.APIURL, "LICENSE_API_URL", "https://api.vierless.de/api/wp-credentials/verify-credentials")
	C.License.Key = getConfigValue(C.License.Key, "LICENSE_KEY", "")

	C.Spotify.ClientID = getConfigValue(C.Spotify.ClientID, "SPOTIFY_CLIENT_ID", "")
	C.Spotify.ClientSecret = getConfigValue(C.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET", "")
	C.Spotify.TokenURL = getConfigValue(C.Spotify.TokenURL, "SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token")
	C.Spotify.APIBaseURL = getConfigValue(C.Spotify.APIBaseURL, "SPOTIFY_API_BASE_URL", "https://api.spotify.com/v1")
	C.Spotify.Market = getConfigValue(C.Spotify.Market, "SPOTIFY_MARKET", "DE")

	C.Analytics.PropertyID = getConfigValue(C.Analytics.PropertyID, "GA_PROPERTY_ID", "")
	C.Analytics.ServiceAccountFile = getConfigValue(C.Analytics.ServiceAccountFile, "GOOGLE_APPLICATION_CREDENTIALS", "")
	C.Analytics.Endpoint = getConfigValue(C.Analytics.Endpoint, "GA_ENDPOINT", "https://analyticsdata.googleapis.com/")
	C.Analytics.IconDir = getConfigValue(C.Analytics.IconDir, "ICON_DIR", "")

	C.Newsletter.WebhookURL = getConfigValue(C.Newsletter.WebhookURL, "NEWSLETTER_WEBHOOK_URL", "")
	C.Newsletter.Language = getConfigValue(C.Newsletter.Language, "NEWSLETTER_LANGUAGE", "de")

	C.Preload.Backend = getConfigValue(C.Preload.Backend, "PRELOAD_BACKEND", "inline")
	C.Preload.Topic = getConfigValue(C.Preload.Topic, "PRELOAD_TOPIC", "load-analytics-range")
	C.Preload.Subscription = getConfigValue(C.Preload.Subscription, "PRELOAD_SUBSCRIPTION", "load-analytics-range-worker")
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
}
