package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 配置文件结构体
type Config struct {
	Version string `yaml:"version"`

	Sqlite struct {
		Dsn    string `yaml:"dsn"`
		Prefix string `yaml:"prefix"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`

	Chrome struct {
		Path          string   `yaml:"path"`
		DebuggingPort int      `yaml:"debugging_port"`
		Headless      bool     `yaml:"headless"`
		ExtraArgs     []string `yaml:"extra_args"`
	} `yaml:"chrome"`

	Paths struct {
		DownloadDir  string `yaml:"download_dir"`
		ExtensionDir string `yaml:"extension_dir"`
		ExtensionCrx string `yaml:"extension_crx"`
	} `yaml:"paths"`

	Download struct {
		TickIntervalSec int `yaml:"tick_interval_sec"`
		TimeoutSec      int `yaml:"timeout_sec"`
	} `yaml:"download"`

	// Match 匹配策略参数。MinimumScore 为综合分的最低接受阈值，低于该值的
	// 候选一律拒绝；ContentWeight/FilenameWeight 为内容证据与文件名证据的
	// 相对权重，两者之和必须为 1。
	Match struct {
		MinimumScore   int     `yaml:"minimum_score"`
		ContentWeight  float64 `yaml:"content_weight"`
		FilenameWeight float64 `yaml:"filename_weight"`
	} `yaml:"match"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	c := &Config{Version: "1.0.0"}
	c.Sqlite.Prefix = "urlsnap_"
	c.Log.Level = "info"
	c.Log.Writer = []string{"console"}
	c.Log.File = "tmp/urlsnap.log"
	c.Chrome.DebuggingPort = 9222
	c.Chrome.Headless = true
	c.Paths.DownloadDir = "snapshots"
	c.Paths.ExtensionDir = "unpacked_extension"
	c.Paths.ExtensionCrx = "mpiodijhokgodhhofbcjdecpffjipkle.crx"
	c.Download.TickIntervalSec = 1
	c.Download.TimeoutSec = 300
	c.Match.MinimumScore = 60
	c.Match.ContentWeight = 0.7
	c.Match.FilenameWeight = 0.3
	return c
}

// Load 读取 YAML 配置文件并叠加到默认值上；path 为空时仅返回默认配置。
// DOWNLOAD_DIR 与 EXTENSION_DIR 环境变量优先于文件内容。
func Load(path string) (*Config, error) {
	c := NewConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if dir := os.Getenv("DOWNLOAD_DIR"); dir != "" {
		c.Paths.DownloadDir = dir
	}
	if dir := os.Getenv("EXTENSION_DIR"); dir != "" {
		c.Paths.ExtensionDir = dir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 校验匹配参数的取值范围
func (c *Config) Validate() error {
	if c.Match.MinimumScore < 0 || c.Match.MinimumScore > 100 {
		return fmt.Errorf("minimum_score must be in [0,100], got %d", c.Match.MinimumScore)
	}
	if sum := c.Match.ContentWeight + c.Match.FilenameWeight; math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("content_weight and filename_weight must sum to 1, got %.3f", sum)
	}
	if c.Download.TickIntervalSec <= 0 {
		return fmt.Errorf("tick_interval_sec must be positive, got %d", c.Download.TickIntervalSec)
	}
	if c.Download.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive, got %d", c.Download.TimeoutSec)
	}
	return nil
}
