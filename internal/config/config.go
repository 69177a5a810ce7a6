// Package config loads settings from an optional YAML file and the
// environment. Environment variables always win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Version is the semlabel release version.
const Version = "0.3.0"

// Config holds all semlabel configuration.
type Config struct {
	Encoder  EncoderConfig `yaml:"encoder"`
	Index    IndexConfig   `yaml:"index"`
	Recall   RecallConfig  `yaml:"recall"`
	Vote     VoteConfig    `yaml:"vote"`
	Train    TrainConfig   `yaml:"train"`
	Output   OutputConfig  `yaml:"output"`
	LogLevel string        `yaml:"log_level"`
}

// EncoderConfig selects and configures the text encoder backend.
type EncoderConfig struct {
	Backend       string `yaml:"backend"` // "hash", "linear", "onnx"
	Dim           int    `yaml:"dim"`
	Seed          int64  `yaml:"seed"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	MaxSeqLen     int    `yaml:"max_seq_len"`
}

// IndexConfig holds graph-construction settings.
type IndexConfig struct {
	M              int    `yaml:"m"`
	EfConstruction int    `yaml:"ef_construction"`
	Metric         string `yaml:"metric"` // "cosine", "l2", "dot"
	Seed           int64  `yaml:"seed"`
}

// RecallConfig holds query-path settings.
type RecallConfig struct {
	K        int           `yaml:"k"`
	EfSearch int           `yaml:"ef_search"`
	Timeout  time.Duration `yaml:"timeout"`
}

// VoteConfig holds classification settings.
type VoteConfig struct {
	Strategy      string  `yaml:"strategy"` // "best", "count", "weighted"
	Depth         int     `yaml:"depth"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// TrainConfig holds contrastive-training settings.
type TrainConfig struct {
	BatchSize int     `yaml:"batch_size"`
	Epochs    int     `yaml:"epochs"`
	Margin    float64 `yaml:"margin"`
	Scale     float64 `yaml:"scale"`
	LearnRate float64 `yaml:"learn_rate"`
	Symmetric bool    `yaml:"symmetric"`
}

// OutputConfig holds result destination settings.
type OutputConfig struct {
	Format     string `yaml:"format"` // "json", "tsv"
	Pretty     bool   `yaml:"pretty"`
	File       string `yaml:"file"`
	WebhookURL string `yaml:"webhook_url"`
}

// Load builds a Config from defaults, then the YAML file named by
// SEMLABEL_CONFIG (if set), then individual environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("SEMLABEL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Encoder: EncoderConfig{
			Backend:   "hash",
			Dim:       256,
			MaxSeqLen: 128,
		},
		Index: IndexConfig{
			M:              16,
			EfConstruction: 200,
			Metric:         "cosine",
			Seed:           1,
		},
		Recall: RecallConfig{
			K:        10,
			EfSearch: 64,
			Timeout:  2 * time.Second,
		},
		Vote: VoteConfig{
			Strategy:      "weighted",
			MinConfidence: 0,
		},
		Train: TrainConfig{
			BatchSize: 32,
			Epochs:    1,
			Margin:    0.3,
			Scale:     30,
			LearnRate: 0.05,
		},
		Output: OutputConfig{
			Format: "json",
		},
		LogLevel: "info",
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Encoder.Backend, "SEMLABEL_ENCODER")
	setInt(&cfg.Encoder.Dim, "SEMLABEL_ENCODER_DIM")
	setInt64(&cfg.Encoder.Seed, "SEMLABEL_ENCODER_SEED")
	setString(&cfg.Encoder.ModelPath, "SEMLABEL_MODEL_PATH")
	setString(&cfg.Encoder.TokenizerPath, "SEMLABEL_TOKENIZER_PATH")
	setInt(&cfg.Encoder.MaxSeqLen, "SEMLABEL_MAX_SEQ_LEN")

	setInt(&cfg.Index.M, "SEMLABEL_INDEX_M")
	setInt(&cfg.Index.EfConstruction, "SEMLABEL_INDEX_EF_CONSTRUCTION")
	setString(&cfg.Index.Metric, "SEMLABEL_INDEX_METRIC")
	setInt64(&cfg.Index.Seed, "SEMLABEL_INDEX_SEED")

	setInt(&cfg.Recall.K, "SEMLABEL_RECALL_K")
	setInt(&cfg.Recall.EfSearch, "SEMLABEL_RECALL_EF_SEARCH")
	setDuration(&cfg.Recall.Timeout, "SEMLABEL_RECALL_TIMEOUT")

	setString(&cfg.Vote.Strategy, "SEMLABEL_VOTE_STRATEGY")
	setInt(&cfg.Vote.Depth, "SEMLABEL_VOTE_DEPTH")
	setFloat(&cfg.Vote.MinConfidence, "SEMLABEL_MIN_CONFIDENCE")

	setInt(&cfg.Train.BatchSize, "SEMLABEL_TRAIN_BATCH_SIZE")
	setInt(&cfg.Train.Epochs, "SEMLABEL_TRAIN_EPOCHS")
	setFloat(&cfg.Train.Margin, "SEMLABEL_TRAIN_MARGIN")
	setFloat(&cfg.Train.Scale, "SEMLABEL_TRAIN_SCALE")
	setFloat(&cfg.Train.LearnRate, "SEMLABEL_TRAIN_LEARN_RATE")
	setBool(&cfg.Train.Symmetric, "SEMLABEL_TRAIN_SYMMETRIC")

	setString(&cfg.Output.Format, "SEMLABEL_OUTPUT_FORMAT")
	setBool(&cfg.Output.Pretty, "SEMLABEL_OUTPUT_PRETTY")
	setString(&cfg.Output.File, "SEMLABEL_OUTPUT_FILE")
	setString(&cfg.Output.WebhookURL, "SEMLABEL_WEBHOOK_URL")

	setString(&cfg.LogLevel, "SEMLABEL_LOG_LEVEL")
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Encoder.Backend {
	case "hash", "linear", "onnx":
	default:
		errs = append(errs, fmt.Errorf("unknown encoder backend %q", c.Encoder.Backend))
	}
	if c.Encoder.Dim <= 0 {
		errs = append(errs, fmt.Errorf("encoder dim must be positive, got %d", c.Encoder.Dim))
	}
	if c.Encoder.Backend == "onnx" {
		if c.Encoder.ModelPath == "" {
			errs = append(errs, errors.New("onnx backend requires SEMLABEL_MODEL_PATH"))
		} else if _, err := os.Stat(c.Encoder.ModelPath); err != nil {
			errs = append(errs, fmt.Errorf("model file: %w", err))
		}
		if c.Encoder.TokenizerPath == "" {
			errs = append(errs, errors.New("onnx backend requires SEMLABEL_TOKENIZER_PATH"))
		} else if _, err := os.Stat(c.Encoder.TokenizerPath); err != nil {
			errs = append(errs, fmt.Errorf("tokenizer file: %w", err))
		}
	}

	if c.Index.M < 2 {
		errs = append(errs, fmt.Errorf("index m must be at least 2, got %d", c.Index.M))
	}
	if c.Index.EfConstruction < c.Index.M {
		errs = append(errs, fmt.Errorf("index ef_construction %d below m %d", c.Index.EfConstruction, c.Index.M))
	}
	switch c.Index.Metric {
	case "cosine", "l2", "dot":
	default:
		errs = append(errs, fmt.Errorf("unknown index metric %q", c.Index.Metric))
	}

	if c.Recall.K <= 0 {
		errs = append(errs, fmt.Errorf("recall k must be positive, got %d", c.Recall.K))
	}
	if c.Recall.Timeout < 0 {
		errs = append(errs, fmt.Errorf("recall timeout must not be negative, got %v", c.Recall.Timeout))
	}

	switch c.Vote.Strategy {
	case "best", "count", "weighted":
	default:
		errs = append(errs, fmt.Errorf("unknown vote strategy %q", c.Vote.Strategy))
	}
	if c.Vote.MinConfidence < 0 || c.Vote.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min_confidence must be in [0, 1], got %g", c.Vote.MinConfidence))
	}

	if c.Train.BatchSize < 2 {
		errs = append(errs, fmt.Errorf("train batch_size must be at least 2, got %d", c.Train.BatchSize))
	}
	if c.Train.Margin < 0 {
		errs = append(errs, fmt.Errorf("train margin must not be negative, got %g", c.Train.Margin))
	}
	if c.Train.Scale <= 0 {
		errs = append(errs, fmt.Errorf("train scale must be positive, got %g", c.Train.Scale))
	}
	if c.Train.LearnRate <= 0 {
		errs = append(errs, fmt.Errorf("train learn_rate must be positive, got %g", c.Train.LearnRate))
	}

	switch c.Output.Format {
	case "json", "tsv":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
