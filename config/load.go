package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REQMAKER_TOKEN.
const EnvPrefix = "REQMAKER"

// File is the on-disk configuration used by the command line tool.
type File struct {
	Config `mapstructure:",squash"`

	LogLevel  string        `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`
	RPS       int           `mapstructure:"rps" validate:"gte=0"`
	Burst     int           `mapstructure:"burst" validate:"gte=0"`
	CookieDB  string        `mapstructure:"cookie_db"`
	Token     string        `mapstructure:"token"`

	Endpoints map[string]Endpoint `mapstructure:"endpoints" validate:"dive"`
}

// Endpoint is a named path in the configuration file.
type Endpoint struct {
	Path   string `mapstructure:"path" validate:"required"`
	Method string `mapstructure:"method" validate:"omitempty,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Auth   bool   `mapstructure:"auth"`
}

func (e Endpoint) String() string { return e.Path }

// RequiresAuthentication reports whether the endpoint needs credentials.
func (e Endpoint) RequiresAuthentication() bool { return e.Auth }

// HTTPMethod returns the endpoint method, GET when unset.
func (e Endpoint) HTTPMethod() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(e.Method)
}

// ErrUnknownEndpoint is returned by File.Endpoint for undeclared names.
var ErrUnknownEndpoint = errors.New("unknown endpoint")

// Endpoint looks up a declared endpoint by name.
func (f *File) Endpoint(name string) (Endpoint, error) {
	// viper lower-cases map keys.
	e, ok := f.Endpoints[strings.ToLower(name)]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}

	return e, nil
}

// Load reads the configuration file at path (any format viper understands)
// and applies REQMAKER_* environment overrides. A .env file next to the
// configuration is loaded first when present.
func Load(path string) (*File, error) {
	if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("base_url", "")
	v.SetDefault("warning_header", DefaultWarningHeader)
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("user_agent", "reqmaker/1.0")
	v.SetDefault("rps", 0)
	v.SetDefault("burst", 0)
	v.SetDefault("cookie_db", "")
	v.SetDefault("token", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for name, e := range f.Endpoints {
		e.Method = strings.ToUpper(e.Method)
		f.Endpoints[name] = e
	}

	if f.RPS > 0 && f.Burst == 0 {
		f.Burst = f.RPS
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}

	return &f, nil
}
