package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"epaws/internal/platform/logger"
)

// Config agrupa todo lo que el binario necesita para arrancar.
// Orden de precedencia: defaults < archivo YAML < variables de entorno.
type Config struct {
	Addr    string `yaml:"addr"`
	AppName string `yaml:"app_name"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		// Proveedor externo; solo se usa si no hay jwt_secret.
		IntrospectURL string `yaml:"introspect_url"`
		IntrospectKey string `yaml:"introspect_key"`
	} `yaml:"auth"`

	Notifications struct {
		Locale        string        `yaml:"locale"`
		Retention     time.Duration `yaml:"retention"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"notifications"`

	Events struct {
		Async  bool `yaml:"async"`
		Buffer int  `yaml:"buffer"`
	} `yaml:"events"`
}

func Default() Config {
	var c Config
	c.Addr = ":8080"
	c.AppName = "epaws"
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Kafka.Topic = "epaws.domain-events"
	c.Notifications.Locale = "es"
	c.Notifications.Retention = 30 * 24 * time.Hour
	c.Notifications.SweepInterval = time.Hour
	c.Events.Buffer = 256
	return c
}

// Load lee path (si no está vacío) y aplica el overlay de env.
func Load(path string) (Config, error) {
	c := Default()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.Addr = ":" + strings.TrimPrefix(strings.TrimSpace(v), ":")
	}
	str("APP_NAME", &c.AppName)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("DB_DSN", &c.Storage.DSN)
	str("REDIS_URL", &c.Redis.URL)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("AUTH_INTROSPECT_URL", &c.Auth.IntrospectURL)
	str("AUTH_INTROSPECT_KEY", &c.Auth.IntrospectKey)
	str("NOTIFICATIONS_LOCALE", &c.Notifications.Locale)

	if v, ok := lookup("KAFKA_BROKERS"); ok && strings.TrimSpace(v) != "" {
		c.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Kafka.Brokers = append(c.Kafka.Brokers, b)
			}
		}
	}

	if err := dur("NOTIFICATION_RETENTION", &c.Notifications.Retention); err != nil {
		return err
	}
	if err := dur("SWEEP_INTERVAL", &c.Notifications.SweepInterval); err != nil {
		return err
	}

	if v, ok := lookup("EVENTS_ASYNC"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("EVENTS_ASYNC: %w", err)
		}
		c.Events.Async = b
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Notifications.Retention <= 0 {
		errs = append(errs, errors.New("notifications.retention must be positive"))
	}
	if c.Notifications.SweepInterval <= 0 {
		errs = append(errs, errors.New("notifications.sweep_interval must be positive"))
	}
	if c.Events.Buffer <= 0 {
		errs = append(errs, errors.New("events.buffer must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && strings.TrimSpace(c.Kafka.Topic) == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if (c.Auth.IntrospectURL == "") != (c.Auth.IntrospectKey == "") {
		errs = append(errs, errors.New("auth.introspect_url and auth.introspect_key go together"))
	}
	return errors.Join(errs...)
}

// AsyncEvents: con Kafka configurado el bus siempre es async, para que el
// envío al broker no corra dentro del request que hizo la transición.
func (c Config) AsyncEvents() bool {
	return c.Events.Async || len(c.Kafka.Brokers) > 0
}

// LoggerOptions traduce la sección log a opciones del logger.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  logger.ParseLevel(c.Log.Level),
		Format: logger.ParseFormat(c.Log.Format),
		App:    c.AppName,
	}
}
