package config

// Config holds packetcheck configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
	Redis      RedisCfg      `mapstructure:"redis" yaml:"redis"`
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	OCR        OCRCfg        `mapstructure:"ocr" yaml:"ocr"`
	Queue      QueueCfg      `mapstructure:"queue" yaml:"queue"`
	// SchemaFile points at a custom field schema; empty means the
	// built-in default.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
	// MaxUploadMB caps PDF uploads.
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// RedisCfg configures the shared store. With Enabled false, progress
// stays in the file and memory tiers and jobs run in-process.
type RedisCfg struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"` // supports ${ENV_VAR} syntax
	DB       int    `mapstructure:"db" yaml:"db"`
	// Manage runs Redis as a local Docker container.
	Manage bool `mapstructure:"manage" yaml:"manage"`
	// ContainerName is the Docker container name (default: packetcheck-redis)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: redis:7-alpine)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 6379)
	Port string `mapstructure:"port" yaml:"port"`
}

// ExtractionCfg tunes the page pipeline.
type ExtractionCfg struct {
	// SegmentSize is how many pages are pulled per pdftotext batch.
	SegmentSize int `mapstructure:"segment_size" yaml:"segment_size"`
	// ProgressCadence is how many pages run between progress writes.
	ProgressCadence int `mapstructure:"progress_cadence" yaml:"progress_cadence"`
}

// OCRCfg configures the rasterize-and-recognize fallback.
type OCRCfg struct {
	Pdftotext      string `mapstructure:"pdftotext" yaml:"pdftotext"`
	Pdftoppm       string `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	Tesseract      string `mapstructure:"tesseract" yaml:"tesseract"`
	DPI            int    `mapstructure:"dpi" yaml:"dpi"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// QueueCfg configures asynchronous job dispatch. Async mode needs Redis
// enabled; without it Submit runs jobs inline.
type QueueCfg struct {
	Async bool   `mapstructure:"async" yaml:"async"`
	Key   string `mapstructure:"key" yaml:"key"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host:        "127.0.0.1",
			Port:        "8080",
			MaxUploadMB: 64,
		},
		Redis: RedisCfg{
			Enabled:       false,
			Addr:          "127.0.0.1:6379",
			Password:      "${PACKETCHECK_REDIS_PASSWORD}",
			Manage:        false,
			ContainerName: "packetcheck-redis",
			Image:         "redis:7-alpine",
			Port:          "6379",
		},
		Extraction: ExtractionCfg{
			SegmentSize:     4,
			ProgressCadence: 10,
		},
		OCR: OCRCfg{
			Pdftotext:      "pdftotext",
			Pdftoppm:       "pdftoppm",
			Tesseract:      "tesseract",
			DPI:            150,
			TimeoutSeconds: 60,
		},
		Queue: QueueCfg{
			Async: false,
			Key:   "packetcheck:jobs",
		},
	}
}
