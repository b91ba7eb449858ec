package veriwave

import (
	"time"

	"github.com/veriwave/veriwave/pkg/veriwave/audio"
	"github.com/veriwave/veriwave/pkg/veriwave/industry"
	"github.com/veriwave/veriwave/pkg/veriwave/segment"
)

type Config struct {
	DBPath          string
	TempDir         string
	SampleRate      int
	SegmentDuration float64
	Workers         int
	IndustryTimeout time.Duration
	Industry        industry.Fingerprinter
	Logger          Logger
	Storage         Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithSegmentDuration sets the fixed segment length in seconds.
func WithSegmentDuration(seconds float64) Option {
	return func(c *Config) {
		c.SegmentDuration = seconds
	}
}

// WithWorkers bounds the per-segment worker pools.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithIndustryTimeout bounds each industry-adapter call.
func WithIndustryTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.IndustryTimeout = d
	}
}

// WithIndustryFingerprinter replaces the default Chromaprint adapter.
func WithIndustryFingerprinter(f industry.Fingerprinter) Option {
	return func(c *Config) {
		c.Industry = f
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:          "veriwave.sqlite3",
		TempDir:         "/tmp",
		SampleRate:      audio.DefaultSampleRate,
		SegmentDuration: segment.DefaultSegmentDuration,
		IndustryTimeout: industry.DefaultTimeout,
	}
}
