// Package config loads dialect settings from a YAML file and environment
// variables.
package config

// Config is the root application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
	Output   OutputConfig   `yaml:"output"`
}

// DataConfig locates the corpora and selects the class to learn.
type DataConfig struct {
	MADARDir string `yaml:"madar_dir" env:"DIALECT_MADAR_DIR"`
	QADIDir  string `yaml:"qadi_dir"  env:"DIALECT_QADI_DIR"`
	Target   string `yaml:"target"    env:"DIALECT_TARGET"    env-default:"city"`
}

// PipelineConfig holds preprocessing, balancing and grid-search settings.
type PipelineConfig struct {
	Seed       uint64    `yaml:"seed"        env:"DIALECT_SEED"        env-default:"42"`
	KNeighbors int       `yaml:"k_neighbors" env:"DIALECT_K_NEIGHBORS" env-default:"5"`
	Folds      int       `yaml:"folds"       env:"DIALECT_FOLDS"       env-default:"5"`
	Workers    int       `yaml:"workers"     env:"DIALECT_WORKERS"     env-default:"0"`
	Alphas     []float64 `yaml:"alphas"      env:"DIALECT_ALPHAS"      env-default:"0.5,0.8,1.0"`
	NgramMax   []int     `yaml:"ngram_max"   env:"DIALECT_NGRAM_MAX"   env-default:"1,2"`
	NoReshape  bool      `yaml:"no_reshape"  env:"DIALECT_NO_RESHAPE"`
	Stopwords  []string  `yaml:"stopwords"   env:"DIALECT_STOPWORDS"` // empty keeps the built-in list
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"DIALECT_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"DIALECT_LOG_FORMAT" env-default:"text"`
}

// OutputConfig selects how the run report is rendered.
type OutputConfig struct {
	Format   string `yaml:"format"    env:"DIALECT_OUTPUT_FORMAT" env-default:"markdown"`
	Count    string `yaml:"count"     env:"DIALECT_COUNT"         env-default:"words"`
	TopTerms int    `yaml:"top_terms" env:"DIALECT_TOP_TERMS"     env-default:"10"`
}
