// Package config loads the pipeline and runtime tuning parameters that are
// not collaborator-specific: chunk budgets, router thresholds, prompt
// budgets, and the bilingual category taxonomy. It mirrors the
// load-or-default-and-persist shape of kxddry-rag-text-search's
// internal/config package, backed by YAML instead of that repo's
// type-specific sub-configs since this core has a single consumer shape.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/uni-regulations/rag-core/internal/domain"
)

// ChunkerConfig mirrors spec.md §4.3's three tunables.
type ChunkerConfig struct {
	TargetTokens    int `yaml:"target_tokens"`
	OverlapTokens   int `yaml:"overlap_tokens"`
	MinChunkTokens  int `yaml:"min_chunk_tokens"`
}

// RouterConfig mirrors spec.md §4.6's two thresholds.
type RouterConfig struct {
	HighThreshold float64 `yaml:"high_threshold"`
	LowThreshold  float64 `yaml:"low_threshold"`
}

// PromptConfig mirrors spec.md §4.7's chat prompt budget.
type PromptConfig struct {
	ContextMaxTokens int `yaml:"context_max_tokens"`
	ReserveTokens    int `yaml:"reserve_tokens"`
}

// PipelineConfig mirrors the offline Fetcher/Embedder-driver tunables.
type PipelineConfig struct {
	RequestDelayMS  int `yaml:"request_delay_ms"`
	EmbedBatchSize  int `yaml:"embed_batch_size"`
	EmbedYieldMS    int `yaml:"embed_yield_ms"`
	EmbeddingDim    int `yaml:"embedding_dim"`
	DefaultTopK     int `yaml:"default_top_k"`
}

// CategoryMeta is the static bilingual entry the Catalog builder emits one
// of per fixed category id.
type CategoryMeta struct {
	ID            string `yaml:"id"`
	NameUK        string `yaml:"name_uk"`
	NameEN        string `yaml:"name_en"`
	Icon          string `yaml:"icon"`
	DescriptionUK string `yaml:"description_uk"`
	DescriptionEN string `yaml:"description_en"`
}

// AppConfig is the root configuration structure for both the offline
// pipeline CLI and the demo runtime server.
type AppConfig struct {
	Chunker    ChunkerConfig  `yaml:"chunker"`
	Router     RouterConfig   `yaml:"router"`
	Prompt     PromptConfig   `yaml:"prompt"`
	Pipeline   PipelineConfig `yaml:"pipeline"`
	Categories []CategoryMeta `yaml:"categories"`
}

// Load reads a config from path. If the file does not exist, defaults are
// returned instead of an error, matching kxddry-rag-text-search's Load.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
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

// Default returns the spec's literal defaults: target_tokens=250,
// overlap_tokens=50, min_chunk_tokens=100, high=0.6, low=0.4,
// context_max=512, reserve=100, plus the twelve-category taxonomy.
func Default() *AppConfig {
	cfg := &AppConfig{
		Chunker: ChunkerConfig{
			TargetTokens:   250,
			OverlapTokens:  50,
			MinChunkTokens: 100,
		},
		Router: RouterConfig{
			HighThreshold: 0.6,
			LowThreshold:  0.4,
		},
		Prompt: PromptConfig{
			ContextMaxTokens: 512,
			ReserveTokens:    100,
		},
		Pipeline: PipelineConfig{
			RequestDelayMS: 1000,
			EmbedBatchSize: 10,
			EmbedYieldMS:   1000,
			EmbeddingDim:   768,
			DefaultTopK:    5,
		},
		Categories: DefaultCategories(),
	}
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Chunker.TargetTokens == 0 {
		cfg.Chunker.TargetTokens = def.Chunker.TargetTokens
	}
	if cfg.Chunker.OverlapTokens == 0 {
		cfg.Chunker.OverlapTokens = def.Chunker.OverlapTokens
	}
	if cfg.Chunker.MinChunkTokens == 0 {
		cfg.Chunker.MinChunkTokens = def.Chunker.MinChunkTokens
	}
	if cfg.Router.HighThreshold == 0 {
		cfg.Router.HighThreshold = def.Router.HighThreshold
	}
	if cfg.Router.LowThreshold == 0 {
		cfg.Router.LowThreshold = def.Router.LowThreshold
	}
	if cfg.Prompt.ContextMaxTokens == 0 {
		cfg.Prompt.ContextMaxTokens = def.Prompt.ContextMaxTokens
	}
	if cfg.Pipeline.EmbedBatchSize == 0 {
		cfg.Pipeline.EmbedBatchSize = def.Pipeline.EmbedBatchSize
	}
	if cfg.Pipeline.EmbeddingDim == 0 {
		cfg.Pipeline.EmbeddingDim = def.Pipeline.EmbeddingDim
	}
	if cfg.Pipeline.DefaultTopK == 0 {
		cfg.Pipeline.DefaultTopK = def.Pipeline.DefaultTopK
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
}

// DefaultCategories returns the twelve fixed categories in Glossary order.
// Icons are plain, UI-agnostic names since this core does not own rendering.
func DefaultCategories() []CategoryMeta {
	return []CategoryMeta{
		{ID: "general_operations", NameUK: "Загальна діяльність", NameEN: "General Operations", Icon: "building", DescriptionUK: "Документи із загального управління університетом.", DescriptionEN: "Documents on general university administration."},
		{ID: "anti_corruption", NameUK: "Антикорупційна діяльність", NameEN: "Anti-Corruption", Icon: "shield", DescriptionUK: "Політики та процедури запобігання корупції.", DescriptionEN: "Anti-corruption policies and procedures."},
		{ID: "academic_council", NameUK: "Вчена рада", NameEN: "Academic Council", Icon: "gavel", DescriptionUK: "Рішення та регламенти вченої ради.", DescriptionEN: "Academic council decisions and regulations."},
		{ID: "structural_divisions", NameUK: "Структурні підрозділи", NameEN: "Structural Divisions", Icon: "sitemap", DescriptionUK: "Положення про структурні підрозділи.", DescriptionEN: "Regulations on structural divisions."},
		{ID: "educational_process", NameUK: "Освітній процес", NameEN: "Educational Process", Icon: "book", DescriptionUK: "Порядок організації освітнього процесу.", DescriptionEN: "Educational process organization rules."},
		{ID: "scientific_work", NameUK: "Наукова робота", NameEN: "Scientific Work", Icon: "flask", DescriptionUK: "Документи з наукової та дослідницької діяльності.", DescriptionEN: "Documents on scientific and research activity."},
		{ID: "financial_activities", NameUK: "Фінансова діяльність", NameEN: "Financial Activities", Icon: "coins", DescriptionUK: "Фінансові положення та порядки.", DescriptionEN: "Financial regulations and procedures."},
		{ID: "information_activities", NameUK: "Інформаційна діяльність", NameEN: "Information Activities", Icon: "broadcast", DescriptionUK: "Порядки інформаційного забезпечення.", DescriptionEN: "Information-provision procedures."},
		{ID: "social_civic", NameUK: "Соціально-громадська діяльність", NameEN: "Social & Civic", Icon: "people", DescriptionUK: "Соціальна підтримка та громадська активність.", DescriptionEN: "Social support and civic activity."},
		{ID: "dormitories", NameUK: "Гуртожитки", NameEN: "Dormitories", Icon: "home", DescriptionUK: "Правила проживання в гуртожитках.", DescriptionEN: "Dormitory residence rules."},
		{ID: "hr_management", NameUK: "Кадрова робота", NameEN: "HR Management", Icon: "badge", DescriptionUK: "Положення з кадрової роботи.", DescriptionEN: "HR management regulations."},
		{ID: "safety", NameUK: "Безпека життєдіяльності", NameEN: "Safety", Icon: "hard-hat", DescriptionUK: "Охорона праці та безпека життєдіяльності.", DescriptionEN: "Occupational health and safety."},
	}
}

// Validate checks the category list against the closed taxonomy (plus the
// uncategorized fallback) per §9's "validate that recognized headings match
// the expected twelve, else flag" design note.
func (c *AppConfig) Validate() error {
	want := make(map[string]bool, len(domain.CategoryIDs))
	for _, id := range domain.CategoryIDs {
		want[id] = true
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == domain.UncategorizedID {
			continue
		}
		if !want[cat.ID] {
			return errors.New("config: unknown category id " + cat.ID)
		}
		seen[cat.ID] = true
	}
	if len(seen) != len(domain.CategoryIDs) {
		return errors.New("config: category taxonomy incomplete, expected twelve recognized categories")
	}
	return nil
}
