package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	MinServerPort   = 1024
	MaxServerPort   = 65535
	MinSecretLength = 32

	envPrefix = "GUILDHALL_"
)

type Config struct {
	FolderPath        string `json:"folder-path"`
	EnableLogging     bool   `json:"enable-logging"`
	DBName            string `json:"db-name"`
	HTTPServerPort    uint16 `json:"http-server-port"`
	TemplateDirectory string `json:"template-directory"`
	ReadTimeout       int64  `json:"read-timeout"`
	WriteTimeout      int64  `json:"write-timeout"`
	SecretKey         string `json:"secret-key"`
	SocketURL         string `json:"socket-url"`
}

func DefaultConfig() *Config {
	return &Config{
		FolderPath:        ".",
		EnableLogging:     true,
		DBName:            "guildhall.db",
		HTTPServerPort:    8080,
		TemplateDirectory: "web/templates",
		ReadTimeout:       10,
		WriteTimeout:      10,
		SocketURL:         "/api/socket/messages",
	}
}

// LoadConfig reads <folder>/.cfg, then applies <folder>/.env and GUILDHALL_*
// environment variables on top of it. A missing .cfg is not an error as long
// as the environment completes the configuration.
func LoadConfig(folderPath string) (*Config, error) {
	config := DefaultConfig()
	config.FolderPath = folderPath

	file, err := os.OpenFile(filepath.Join(folderPath, ".cfg"), os.O_RDONLY, 0755)
	switch {
	case err == nil:
		defer file.Close()
		payload, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(payload, config); err != nil {
			return nil, fmt.Errorf("malformed .cfg: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	envFile := filepath.Join(folderPath, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("FOLDER_PATH"); ok {
		c.FolderPath = v
	}
	if v, ok := lookup("DB_NAME"); ok {
		c.DBName = v
	}
	if v, ok := lookup("TEMPLATE_DIRECTORY"); ok {
		c.TemplateDirectory = v
	}
	if v, ok := lookup("SECRET_KEY"); ok {
		c.SecretKey = v
	}
	if v, ok := lookup("SOCKET_URL"); ok {
		c.SocketURL = v
	}
	if v, ok := lookup("ENABLE_LOGGING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sENABLE_LOGGING: %w", envPrefix, err)
		}
		c.EnableLogging = b
	}
	if v, ok := lookup("HTTP_SERVER_PORT"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%sHTTP_SERVER_PORT: %w", envPrefix, err)
		}
		c.HTTPServerPort = uint16(port)
	}
	if v, ok := lookup("READ_TIMEOUT"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sREAD_TIMEOUT: %w", envPrefix, err)
		}
		c.ReadTimeout = n
	}
	if v, ok := lookup("WRITE_TIMEOUT"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sWRITE_TIMEOUT: %w", envPrefix, err)
		}
		c.WriteTimeout = n
	}
	return nil
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

func (c *Config) Validate() error {
	if c.HTTPServerPort < MinServerPort {
		return fmt.Errorf("The port %d is outside valid range: [%d, %d]", c.HTTPServerPort, MinServerPort, MaxServerPort)
	}
	if c.DBName == "" {
		return fmt.Errorf("The database name cannot be empty")
	}
	if len(c.SecretKey) < MinSecretLength {
		return fmt.Errorf("The secret key must be at least %d bytes long", MinSecretLength)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("Timeouts must be positive")
	}
	return nil
}

func RetrieveWebTemplates(templateDir string) (map[string][]string, error) {

	mapping := make(map[string][]string)

	layoutPath := filepath.Join(templateDir, "layouts")
	layoutFiles, err := filepath.Glob(filepath.Join(layoutPath, "*.html"))
	if err != nil {
		return nil, err
	}

	pageFiles, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	for _, page := range pageFiles {
		files := append([]string{}, layoutFiles...)
		files = append(files, page)
		mapping[filepath.Base(page)] = files
	}

	return mapping, nil
}
