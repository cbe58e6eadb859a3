// Package config defines the single Config struct (spec.md §6.5) threaded
// through the Lexer, the loader, and the CLI, built through the same
// apply-pattern Option type gothird uses to build a *VM from VMOptions.
package config

import "github.com/akshatnamdeo/osfl/internal/lexer"

// Config holds every knob named in spec.md §6.5. The CLI and any embedding
// host construct one through Options rather than touching fields directly,
// so new knobs can be added without breaking existing call sites.
type Config struct {
	TabWidth        int
	IncludeComments bool
	InputFile       string
	OutputFile      string
	DebugMode       bool
	Optimize        bool
}

// Default returns the Config a bare pipeline run is built with absent
// overrides: tab width 4, optimization on, everything else off.
func Default() Config {
	return Config{TabWidth: 4, Optimize: true}
}

// Option mutates a Config being built up by Options/New.
type Option interface{ apply(cfg *Config) }

// New returns the Config produced by applying opts over Default in order.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

type tabWidthOption int

func (o tabWidthOption) apply(cfg *Config) { cfg.TabWidth = int(o) }

// WithTabWidth overrides the default tab width used for column tracking.
func WithTabWidth(n int) Option { return tabWidthOption(n) }

type includeCommentsOption bool

func (o includeCommentsOption) apply(cfg *Config) { cfg.IncludeComments = bool(o) }

// WithIncludeComments toggles whether the Lexer emits Comment tokens rather
// than silently skipping them.
func WithIncludeComments(b bool) Option { return includeCommentsOption(b) }

type inputFileOption string

func (o inputFileOption) apply(cfg *Config) { cfg.InputFile = string(o) }

// WithInputFile sets the source path the CLI read its bytes from, used only
// for diagnostic locations and the loader's relative-import resolution.
func WithInputFile(path string) Option { return inputFileOption(path) }

type outputFileOption string

func (o outputFileOption) apply(cfg *Config) { cfg.OutputFile = string(o) }

// WithOutputFile sets the reserved `-o` output path (spec §6.1: "reserved;
// unused by the core").
func WithOutputFile(path string) Option { return outputFileOption(path) }

type debugModeOption bool

func (o debugModeOption) apply(cfg *Config) { cfg.DebugMode = bool(o) }

// WithDebugMode enables instruction-by-instruction VM tracing to stderr.
func WithDebugMode(b bool) Option { return debugModeOption(b) }

type optimizeOption bool

func (o optimizeOption) apply(cfg *Config) { cfg.Optimize = bool(o) }

// WithOptimize toggles the reserved `--no-optimize` flag (spec §6.1:
// "disable optimizations (reserved)"); the core compiler performs none
// either way.
func WithOptimize(b bool) Option { return optimizeOption(b) }

// LexerConfig projects cfg onto a lexer.Config for fileName. Kept as a
// method rather than a duplicated field set so Config stays the single
// source of truth the CLI and loader both build from.
func (cfg Config) LexerConfig(fileName string) lexer.Config {
	return lexer.Config{
		FileName:         fileName,
		TabWidth:         cfg.TabWidth,
		SkipWhitespace:   true,
		IncludeComments:  cfg.IncludeComments,
		TrackLineEndings: false,
	}
}
