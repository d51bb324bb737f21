package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
	defaultConfigFile = "config.yaml"
)

// Cart slot backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendKafka    = "kafka"
)

var backends = []string{
	BackendMemory, BackendFile, BackendSQLite,
	BackendPostgres, BackendRedis, BackendKafka,
}

type retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

type cart struct {
	Backend   string        `mapstructure:"backend"`
	SlotKey   string        `mapstructure:"slot_key"`
	OnCorrupt string        `mapstructure:"on_corrupt"`
	FileDir   string        `mapstructure:"file_dir"`
	IdleTTL   time.Duration `mapstructure:"idle_ttl"`
	Retry     retry         `mapstructure:"retry"`
}

type redis struct {
	URL       string        `mapstructure:"url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type topics struct {
	CartSlots string `mapstructure:"cart_slots"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all three files are set.
func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	TLS                brokerTLS `mapstructure:"tls"`
	User               string    `mapstructure:"user"`
	Pass               string    `mapstructure:"pass"`
}

type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	HTTPServerAddr string `mapstructure:"http_server_addr"`
	CatalogFile    string `mapstructure:"catalog_file"`
	Cart           cart   `mapstructure:"cart"`
	SQLDB          string `mapstructure:"sql_db"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	Redis          redis  `mapstructure:"redis"`
	Broker         broker `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("catalog_file", "")

	v.SetDefault("cart.backend", BackendFile)
	v.SetDefault("cart.slot_key", "cart")
	v.SetDefault("cart.on_corrupt", "reset")
	v.SetDefault("cart.file_dir", "")
	v.SetDefault("cart.idle_ttl", 30*time.Minute)
	v.SetDefault("cart.retry.max_attempts", 3)
	v.SetDefault("cart.retry.delay", 100*time.Millisecond)

	v.SetDefault("sql_db", "")
	v.SetDefault("sqlite_path", "storefront.db")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "storefront:")
	v.SetDefault("redis.ttl", 30*24*time.Hour)

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.cart_slots", "storefront-cart-slots")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
	v.SetDefault("broker.user", "")
	v.SetDefault("broker.pass", "")
}

// Load reads the config file named by STOREFRONT_CONFIG_FILE or --config.
// Any key can be overridden by STOREFRONT_<KEY> with dots as underscores,
// e.g. STOREFRONT_CART_BACKEND. It exits the process on failure.
func Load() Config {
	cfg, err := load(os.Args[0], os.Args[1:], os.LookupEnv)
	if err != nil {
		die(err)
	}
	return cfg
}

func load(
	name string, args []string, lookupEnv func(string) (string, bool),
) (Config, error) {
	path, explicit, err := getConfigFilepath(name, args, lookupEnv)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// getConfigFilepath reports whether the path was chosen explicitly; a
// missing default file falls back to built-in defaults.
func getConfigFilepath(
	name string, args []string, lookupEnv func(string) (string, bool),
) (string, bool, error) {
	cmdLine := pflag.NewFlagSet(name, pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", false, err
	}

	env, ok := lookupEnv(configFileEnvName)
	if ok {
		return env, true, nil
	}
	return *arg, cmdLine.Changed("config"), nil
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

// Level parses LogLevel. Validate guarantees it is well formed.
func (c Config) Level() slog.Level {
	var l slog.Level
	_ = l.UnmarshalText([]byte(c.LogLevel))
	return l
}

func (c Config) Validate() error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if !slices.Contains(backends, c.Cart.Backend) {
		return fmt.Errorf("cart.backend: unknown backend %q, want one of %v",
			c.Cart.Backend, backends)
	}

	switch c.Cart.OnCorrupt {
	case "", "reset", "keep":
	default:
		return fmt.Errorf("cart.on_corrupt: want reset or keep, got %q",
			c.Cart.OnCorrupt)
	}

	if c.Cart.IdleTTL < 0 {
		return fmt.Errorf("cart.idle_ttl: must not be negative, got %s",
			c.Cart.IdleTTL)
	}

	switch c.Cart.Backend {
	case BackendPostgres:
		if c.SQLDB == "" {
			return errors.New("sql_db: required by the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path: required by the sqlite backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url: required by the redis backend")
		}
	case BackendKafka:
		if len(c.Broker.SeedBrokers) == 0 {
			return errors.New("broker.seed_brokers: required by the kafka backend")
		}
		if c.Broker.Topics.CartSlots == "" {
			return errors.New("broker.topics.cart_slots: required by the kafka backend")
		}
	}
	return nil
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	CatalogFile=%q

	Cart:
	Backend=%q
	SlotKey=%q
	OnCorrupt=%q
	FileDir=%q
	IdleTTL=%s
	Retry: MaxAttempts=%d Delay=%s

	Storage:
	SQLDB=%q
	SQLitePath=%q
	RedisURL=%q
	RedisKeyPrefix=%q
	RedisTTL=%s

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	SASL=%t
	Topics:
		CartSlots=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.CatalogFile,
		c.Cart.Backend,
		c.Cart.SlotKey,
		c.Cart.OnCorrupt,
		c.Cart.FileDir,
		c.Cart.IdleTTL,
		c.Cart.Retry.MaxAttempts,
		c.Cart.Retry.Delay,
		maskDSN(c.SQLDB),
		c.SQLitePath,
		maskDSN(c.Redis.URL),
		c.Redis.KeyPrefix,
		c.Redis.TTL,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.User != "",
		c.Broker.Topics.CartSlots,
	)
}

// maskDSN hides the password of a URL style DSN.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || scheme > at {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return dsn[:scheme+3] + user + ":***" + dsn[at:]
}
