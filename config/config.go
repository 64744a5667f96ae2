package config

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool
	LogFormat   string
	BaseURL     string
	PublicDir   string
	PrivateDir  string
}

// RegisterFlags declares every setting on fs. Values are resolved by Load, with
// flags taking precedence over QFORMS_* environment variables and qforms.yaml.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("host", "0.0.0.0", "listen host name")
	fs.Uint("port", 80, "listen port number")
	fs.String("db-url", "qforms.sqlite", "path to SQLite3 DB file")
	fs.String("token-secret", "", "secret key for token encryption and decryption")
	fs.Uint("token-ttl", 120, "token TTL in seconds")
	fs.Bool("debug", false, "log at DEBUG level")
	fs.String("log-format", "text", "log output format: text or json")
	fs.String("base-url", "", "base URL used in share links (defaults to the listen URL)")
	fs.String("public-dir", "public", "directory of public static files")
	fs.String("private-dir", "private", "directory of admin static files")
}

func Load(fs *pflag.FlagSet) (cfg Config, err error) {
	v := viper.New()
	v.SetConfigName("qforms")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("QFORMS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err = v.BindPFlags(fs); err != nil {
			return cfg, errors.Wrap(err, "config.bind_flags")
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, errors.Wrap(err, "config.read")
		}
		err = nil
	}

	host := v.GetString("host")
	if host == "" {
		host = "0.0.0.0"
	}
	port := v.GetInt("port")
	if port == 0 {
		port = 80
	}
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBUrl = v.GetString("db-url")
	if cfg.DBUrl == "" {
		cfg.DBUrl = "qforms.sqlite"
	}
	cfg.TokenSecret = v.GetString("token-secret")
	cfg.TokenTTL = time.Duration(v.GetUint("token-ttl")) * time.Second
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 120 * time.Second
	}
	cfg.Debug = v.GetBool("debug")
	cfg.LogFormat = v.GetString("log-format")
	cfg.PublicDir = v.GetString("public-dir")
	cfg.PrivateDir = v.GetString("private-dir")

	cfg.BaseURL = strings.TrimRight(v.GetString("base-url"), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = cfg.Url()
	}

	return cfg, nil
}

// Validate checks the settings needed to run the HTTP server.
func (cfg Config) Validate() error {
	if cfg.TokenSecret == "" {
		return errors.New("missing parameter --token-secret")
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
