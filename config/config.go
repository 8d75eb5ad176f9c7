package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultStorageDriver      = StorageDriverPostgres
	defaultCookieName         = "token"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
		CORS CORSConfig `json:"cors" yaml:"cors"`
	} `json:"http" yaml:"http"`

	Storage StorageConfig `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowOrigins []string `json:"allowOrigins" yaml:"allowOrigins"`
	AllowMethods []string `json:"allowMethods" yaml:"allowMethods"`
}

// StorageConfig selects the credential store backend.
type StorageConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `json:"driver" yaml:"driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `json:"sqlitePath" yaml:"sqlitePath"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int          `json:"bcryptCost" yaml:"bcryptCost"`
	Cookie     CookieConfig `json:"cookie" yaml:"cookie"`
}

// CookieConfig controls the token cookie set on login and registration.
type CookieConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Name    string `json:"name" yaml:"name"`
	Secure  bool   `json:"secure" yaml:"secure"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv reads <name>.yaml from the working directory or one of dirs
// (relative to it), then overlays environment variables. ENV keys are split
// on underscores and matched against the YAML keys, so SECRETKEY_ACCESS
// lands on secretKey.access.
func LoadWithEnv[T any](name string, dirs ...string) (*T, error) {
	path, err := locateConfigFile(name, dirs)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", name)
	}

	yamlKeys := k.Raw()
	overlay := env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return canonicalizeEnvKey(key, yamlKeys), value
		},
	})
	if err := k.Load(overlay, nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	out := new(T)
	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{DecoderConfig: decoderConfig(out)}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", name)
	}

	return out, nil
}

func locateConfigFile(name string, dirs []string) (string, error) {
	candidates := []string{defaultPath}
	if len(dirs) > 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "os.Getwd")
		}
		for _, dir := range dirs {
			candidates = append(candidates, filepath.Join(pwd, dir))
		}
	}

	for _, dir := range candidates {
		path := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", errors.Errorf("config file %s.yaml not found in any search path", name)
}

// decoderConfig matches keys case-insensitively because env overrides for
// keys missing from the YAML arrive lower-cased.
func decoderConfig(out any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		MatchName:        strings.EqualFold,
	}
}

// New loads config/config.yaml and fills defaults.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if len(cfg.HTTP.CORS.AllowMethods) == 0 {
		cfg.HTTP.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.Cookie.Name == "" {
		cfg.Auth.Cookie.Name = defaultCookieName
	}

	return cfg.resolveStorage()
}

func (cfg *Config) resolveStorage() error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = defaultStorageDriver
	}
	cfg.Storage.Driver = driver

	switch driver {
	case StorageDriverSQLite:
		if cfg.Storage.SQLitePath == "" {
			return errors.New("storage.sqlitePath is required for the sqlite driver")
		}
	case StorageDriverPostgres:
		if cfg.Postgres == nil {
			return errors.New("postgres configuration is required for the postgres driver")
		}
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	default:
		return errors.Errorf("unknown storage driver: %s", driver)
	}

	return nil
}

// canonicalizeEnvKey maps FOO_BARBAZ to the dotted koanf path, reusing the
// spelling of keys already present in the YAML (foo.barBaz). Segments with
// no YAML counterpart stay lower-case.
func canonicalizeEnvKey(rawKey string, yamlKeys map[string]any) string {
	var path []string
	level := yamlKeys

	for _, segment := range strings.Split(strings.ToLower(rawKey), "_") {
		if segment == "" {
			continue
		}

		key, child := matchYAMLKey(level, segment)
		path = append(path, key)
		level = child
	}

	return strings.Join(path, ".")
}

func matchYAMLKey(level map[string]any, segment string) (string, map[string]any) {
	want := foldKey(segment)
	for key, value := range level {
		if foldKey(key) == want {
			child, _ := value.(map[string]any)

			return key, child
		}
	}

	return segment, nil
}

// foldKey lower-cases and drops anything that is not a letter or digit.
func foldKey(s string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, s)
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{i}_{HOST,PORT,USERNAME,PASSWORD}
// for i = 0, 1, ... and stops at the first index without a host and port.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		lookup := func(field string) string {
			return os.Getenv("POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_" + field)
		}

		host, port := lookup("HOST"), lookup("PORT")
		if host == "" || port == "" {
			return replicas
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: lookup("USERNAME"),
			Password: lookup("PASSWORD"),
		})
	}
}
