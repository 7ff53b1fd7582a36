// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/runner"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// MaxScannerThreads caps the scan worker pool
const MaxScannerThreads = 64

// DefaultFileNames are searched, in order, in the working directory when no file is given
var DefaultFileNames = []string{".smartcopy.yaml", ".smartcopy.yml", ".smartcopy.json", ".smartcopy.hcl"}

// 🔌 Parser is the interface for settings parsers
type Parser interface {
	// 📝 Parse decodes data on top of the given defaults
	Parse(ctx context.Context, data []byte, defaults Settings) (*Settings, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Settings tune scanning and copying
type Settings struct {
	ScannerThreads    int    `json:"scanner_threads" yaml:"scanner_threads" hcl:"scanner_threads,optional"`
	ParallelThreshold int    `json:"parallel_threshold" yaml:"parallel_threshold" hcl:"parallel_threshold,optional"`
	MaxSessions       int    `json:"max_sessions" yaml:"max_sessions" hcl:"max_sessions,optional"`
	Tool              string `json:"tool" yaml:"tool" hcl:"tool,optional"`
	ToolPath          string `json:"tool_path" yaml:"tool_path" hcl:"tool_path,optional"`
	CopyThreads       int    `json:"copy_threads" yaml:"copy_threads" hcl:"copy_threads,optional"`
	Retries           int    `json:"retries" yaml:"retries" hcl:"retries,optional"`
	WaitSeconds       int    `json:"wait_seconds" yaml:"wait_seconds" hcl:"wait_seconds,optional"`
	RootOnly          bool   `json:"root_only" yaml:"root_only" hcl:"root_only,optional"`
	LockDir           string `json:"lock_dir" yaml:"lock_dir" hcl:"lock_dir,optional"`
}

// Default returns the settings used when no file is present
func Default() Settings {
	return Settings{
		ScannerThreads:    min(runtime.NumCPU(), MaxScannerThreads),
		ParallelThreshold: 2,
		MaxSessions:       16,
		Tool:              runner.DefaultToolName(),
		CopyThreads:       8,
		Retries:           3,
		WaitSeconds:       2,
	}
}

// 🎯 Load loads settings from a file, filling anything it leaves out with defaults
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading settings")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading settings file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data, Default())
	if err != nil {
		return nil, errors.Errorf("parsing settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating settings: %w", err)
	}

	return cfg, nil
}

// 🔎 Resolve loads the given file, or the first default file found in dir, or the defaults
func Resolve(ctx context.Context, path string, dir string) (*Settings, error) {
	if path != "" {
		return Load(ctx, path)
	}

	for _, name := range DefaultFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return Load(ctx, candidate)
		}
	}

	cfg := Default()
	return &cfg, nil
}

// 🔍 Validate normalizes the settings and rejects values out of range
func (cfg *Settings) Validate() error {
	if cfg.ScannerThreads <= 0 {
		cfg.ScannerThreads = runtime.NumCPU()
	}
	if cfg.ScannerThreads > MaxScannerThreads {
		cfg.ScannerThreads = MaxScannerThreads
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = 2
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 16
	}
	if cfg.CopyThreads <= 0 {
		cfg.CopyThreads = 8
	}
	if cfg.CopyThreads > 128 {
		return errors.Errorf("copy_threads must be at most 128, got %d", cfg.CopyThreads)
	}
	if cfg.Retries < 0 {
		return errors.Errorf("retries must not be negative, got %d", cfg.Retries)
	}
	if cfg.WaitSeconds < 0 {
		return errors.Errorf("wait_seconds must not be negative, got %d", cfg.WaitSeconds)
	}

	cfg.Tool = strings.ToLower(strings.TrimSpace(cfg.Tool))
	switch cfg.Tool {
	case "":
		cfg.Tool = runner.DefaultToolName()
	case runner.ToolRobocopy, runner.ToolRsync:
	default:
		return errors.Errorf("tool must be %q or %q, got %q", runner.ToolRobocopy, runner.ToolRsync, cfg.Tool)
	}

	return nil
}

// RunnerOptions returns the copy tool options
func (cfg *Settings) RunnerOptions() runner.Options {
	return runner.Options{
		Path:        cfg.ToolPath,
		Threads:     cfg.CopyThreads,
		Retries:     cfg.Retries,
		WaitSeconds: cfg.WaitSeconds,
	}
}

// 📝 String returns a string representation of the settings
func (cfg *Settings) String() string {
	return fmt.Sprintf("%s (threads=%d retries=%d wait=%ds) scanner_threads=%d", cfg.Tool, cfg.CopyThreads, cfg.Retries, cfg.WaitSeconds, cfg.ScannerThreads)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte, defaults Settings) (*Settings, error) {
	cfg := defaults
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
