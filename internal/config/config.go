package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	SourceDatabase = "database"
	SourceJSON     = "json"
	SourceCSV      = "csv"
)

type Config struct {
	Logger struct {
		Level    string `yaml:"level"`
		Target   string `yaml:"target"`
		Filename string `yaml:"filename"`
	} `yaml:"logger"`
	// Parameters значения для плейсхолдеров %name% в путях
	Parameters  map[string]string `yaml:"parameters"`
	Connections []DatabaseConfig  `yaml:"connections"`
	// Target база, в которую пишутся мигрированные записи
	Target     DatabaseConfig   `yaml:"target"`
	Files      FilesConfig      `yaml:"files"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Tables     Tables           `yaml:"tables"`
}

type DatabaseConfig struct {
	Name     string `yaml:"name"` // Уникальное имя для ссылок из data_source.connection
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"` // для sqlite - путь к файлу
	SSLMode  string `yaml:"sslmode"`
	Timeout  int    `yaml:"timeout"` // in seconds
	// DSN если задан, используется как есть
	DSN string `yaml:"dsn"`
}

type DataSourceConfig struct {
	Type       string `yaml:"type"`
	Connection string `yaml:"connection"`
	// Только для csv
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

type FilesConfig struct {
	Type     string `yaml:"type"` // local или s3
	LocalDir string `yaml:"local_dir"`
	// VarDir корень старого проекта, относительно него лежат пути к файлам
	VarDir string `yaml:"var_dir"`
	S3     struct {
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
	} `yaml:"s3"`
}

type Procedure struct {
	ProcedureName string        `yaml:"procedure_name"`
	Params        []interface{} `yaml:"procedure_params"`
}

// ConfigError ошибка конфигурации, обнаруженная до начала миграции
type ConfigError struct {
	Scope string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Scope == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Scope, e.Msg)
}

func newConfigError(scope, format string, args ...interface{}) error {
	return &ConfigError{Scope: scope, Msg: fmt.Sprintf(format, args...)}
}

var knownDrivers = map[string]bool{
	"mariadb":  true,
	"mysql":    true,
	"oracle":   true,
	"postgres": true,
	"sqlite":   true,
}

// Validate проверяет весь конфиг сразу, чтобы ошибки по всем таблицам
// были видны до того, как будет прочитана хоть одна строка.
func (c *Config) Validate() error {
	var errs []error

	switch c.DataSource.Type {
	case "":
		errs = append(errs, newConfigError("data_source", "missing type"))
	case SourceDatabase:
		if c.DataSource.Connection == "" {
			errs = append(errs, newConfigError("data_source", "missing connection for database data source"))
		} else if _, err := c.FindConnection(c.DataSource.Connection); err != nil {
			errs = append(errs, err)
		}
	case SourceJSON, SourceCSV:
	default:
		errs = append(errs, newConfigError("data_source", "unknown type %q", c.DataSource.Type))
	}

	for i, conn := range c.Connections {
		if conn.Name == "" {
			errs = append(errs, newConfigError("connections", "connection #%d has no name", i+1))
			continue
		}
		if err := conn.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("connection #%d: %w", i+1, err))
		}
	}

	if len(c.Tables) == 0 {
		errs = append(errs, newConfigError("tables", "no tables configured for data migration"))
	}
	for _, table := range c.Tables {
		if err := table.Validate(c.DataSource.Type); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Files.Type {
	case "", "local", "s3":
	default:
		errs = append(errs, newConfigError("files", "unknown storage type %q", c.Files.Type))
	}

	return errors.Join(errs...)
}

// ValidateTarget проверяет целевую базу. Не нужна при --dry-run.
func (c *Config) ValidateTarget() error {
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.Driver == "" {
		return newConfigError(d.Name, "missing driver")
	}
	if !knownDrivers[d.Driver] {
		return newConfigError(d.Name, "unknown driver %q", d.Driver)
	}
	if d.DSN == "" && d.DBName == "" {
		return newConfigError(d.Name, "either dsn or dbname is required")
	}
	return nil
}

// Load читает и валидирует конфиг из файла.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode разбирает YAML, подставляет переменные окружения и плейсхолдеры,
// затем валидирует результат.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding YAML: %w", err)
	}

	cfg.expandEnv()
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindConnection ищет подключение по имени
func (c *Config) FindConnection(name string) (*DatabaseConfig, error) {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i], nil
		}
	}
	return nil, newConfigError("data_source", "connection %q not found in config", name)
}

// Table возвращает конфиг таблицы по виду сущности
func (c *Config) Table(entity string) (*TableConfig, bool) {
	for i := range c.Tables {
		if c.Tables[i].Entity == entity {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

func (c *Config) expandEnv() {
	expand := func(d *DatabaseConfig) {
		d.Host = os.ExpandEnv(d.Host)
		d.User = os.ExpandEnv(d.User)
		d.Password = os.ExpandEnv(d.Password)
		d.DBName = os.ExpandEnv(d.DBName)
		d.DSN = os.ExpandEnv(d.DSN)
	}
	for i := range c.Connections {
		expand(&c.Connections[i])
	}
	expand(&c.Target)
	c.Files.S3.AccessKeyID = os.ExpandEnv(c.Files.S3.AccessKeyID)
	c.Files.S3.SecretAccessKey = os.ExpandEnv(c.Files.S3.SecretAccessKey)
}

var placeholderRe = regexp.MustCompile(`%([^%]+)%`)

// ResolvePath подставляет %name% из parameters, затем из окружения.
func (c *Config) ResolvePath(path string) (string, error) {
	var missing []string
	resolved := placeholderRe.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := c.Parameters[name]; ok {
			return v
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		missing = append(missing, name)
		return m
	})
	if len(missing) > 0 {
		return "", newConfigError("parameters", "unknown placeholder %q in %q", missing[0], path)
	}
	return resolved, nil
}

func (c *Config) resolvePaths() error {
	var err error
	for i := range c.Tables {
		if c.Tables[i].SourcePath == "" {
			continue
		}
		if c.Tables[i].SourcePath, err = c.ResolvePath(c.Tables[i].SourcePath); err != nil {
			return err
		}
	}
	if c.Files.VarDir, err = c.ResolvePath(c.Files.VarDir); err != nil {
		return err
	}
	if c.Files.LocalDir, err = c.ResolvePath(c.Files.LocalDir); err != nil {
		return err
	}
	if c.Target.Driver == "sqlite" {
		if c.Target.DBName, err = c.ResolvePath(c.Target.DBName); err != nil {
			return err
		}
	}
	return nil
}
