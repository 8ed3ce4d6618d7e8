package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// HFAnswererConfig holds configuration for the hosted question-answering
// model client.
type HFAnswererConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AnswererConfig selects and configures the question-answering implementation.
type AnswererConfig struct {
	Type         string            `yaml:"type"`
	MaxSentences int               `yaml:"max_sentences"`
	HF           *HFAnswererConfig `yaml:"hf,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLiteConfig contains the database path for the SQLite vector store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// TutorConfig holds the retrieval and scheduling parameters.
type TutorConfig struct {
	ChunkWords          int     `yaml:"chunk_words"`
	OverlapWords        int     `yaml:"overlap_words"`
	TopK                int     `yaml:"top_k"`
	RepetitionIntervals []int   `yaml:"repetition_intervals"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // reserved for future filtering
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Answerer    AnswererConfig    `yaml:"answerer"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Tutor       TutorConfig       `yaml:"tutor"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/stemtutor/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stemtutor", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{Type: "tfidf"},
		Answerer: AnswererConfig{Type: "extractive", MaxSentences: 2},
		VectorStore: VectorStoreConfig{
			Type: "memory",
		},
		Tutor: TutorConfig{
			ChunkWords:          768,
			OverlapWords:        100,
			TopK:                5,
			RepetitionIntervals: []int{1, 3, 7, 14, 30},
			SimilarityThreshold: 0.85,
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Tutor.ChunkWords == 0 {
		cfg.Tutor.ChunkWords = 768
	}
	if cfg.Tutor.OverlapWords == 0 {
		cfg.Tutor.OverlapWords = 100
	}
	if cfg.Tutor.TopK == 0 {
		cfg.Tutor.TopK = 5
	}
	if len(cfg.Tutor.RepetitionIntervals) == 0 {
		cfg.Tutor.RepetitionIntervals = []int{1, 3, 7, 14, 30}
	}
	if cfg.Tutor.SimilarityThreshold == 0 {
		cfg.Tutor.SimilarityThreshold = 0.85
	}
	if cfg.Answerer.MaxSentences == 0 {
		cfg.Answerer.MaxSentences = 2
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Answerer.Type == "hf" && cfg.Answerer.HF != nil {
		if cfg.Answerer.HF.BaseURL == "" {
			cfg.Answerer.HF.BaseURL = "https://api-inference.huggingface.co/models"
		}
		if cfg.Answerer.HF.APIKeyEnv == "" {
			cfg.Answerer.HF.APIKeyEnv = "HF_API_TOKEN"
		}
		if cfg.Answerer.HF.Model == "" {
			cfg.Answerer.HF.Model = "deepset/roberta-base-squad2"
		}
		if cfg.Answerer.HF.TimeoutSecs == 0 {
			cfg.Answerer.HF.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "stem-tutor-index"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.VectorStore.Type == "sqlite" && cfg.VectorStore.SQLite != nil {
		if cfg.VectorStore.SQLite.Path == "" {
			cfg.VectorStore.SQLite.Path = "stemtutor.db"
		}
	}
}
