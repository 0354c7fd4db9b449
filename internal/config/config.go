// Package config loads board layout and storage settings.
//
// A config file is either CUE (.cue) or YAML (.yaml, .yml). Both are
// unified with the embedded schema, which supplies defaults and rejects
// unknown fields:
//
//	columns:
//	  - {id: todo, title: To Do}
//	  - {id: done, title: Done}
//	maxContentLength: 280
//	storage:
//	  driver: sqlite
//	  dsn: ./kanban.db
//	  key: kanban-board
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kanban/internal/board"
)

//go:embed schema.cue
var schemaCUE string

// MaxColumns bounds the number of columns a layout may define.
const MaxColumns = 16

// Config is a validated configuration.
type Config struct {
	Columns          []board.ColumnSpec `json:"columns"`
	MaxContentLength int                `json:"maxContentLength"`
	Storage          Storage            `json:"storage"`
}

// Storage selects the store backend and the key the board is kept under.
type Storage struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	Key    string `json:"key"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := build(func(ctx *cue.Context) (cue.Value, error) {
		return ctx.CompileString("{}"), nil
	})
	if err != nil {
		// The embedded schema's defaults are always valid.
		panic(fmt.Sprintf("config: default config: %v", err))
	}
	return cfg
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		return ParseCUE(path, data)
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q (want .cue, .yaml or .yml)", path, ext)
	}
}

// ParseCUE validates CUE source. filename is used in error positions.
func ParseCUE(filename string, data []byte) (*Config, error) {
	return build(func(ctx *cue.Context) (cue.Value, error) {
		v := ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return v, fmt.Errorf("config %s: %s", filename, details(err))
		}
		return v, nil
	})
}

// ParseYAML validates YAML source. filename is used in error messages.
func ParseYAML(filename string, data []byte) (*Config, error) {
	var doc map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return build(func(ctx *cue.Context) (cue.Value, error) {
		v := ctx.Encode(doc)
		if err := v.Err(); err != nil {
			return v, fmt.Errorf("config %s: %s", filename, details(err))
		}
		return v, nil
	})
}

func build(input func(*cue.Context) (cue.Value, error)) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %s", details(err))
	}

	v, err := input(ctx)
	if err != nil {
		return nil, err
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %s", details(err))
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the constraints the schema cannot express.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("invalid config: columns must define at least one column")
	}
	if len(c.Columns) > MaxColumns {
		return fmt.Errorf("invalid config: %d columns, at most %d allowed", len(c.Columns), MaxColumns)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Layout returns the configured columns as a board layout.
func (c *Config) Layout() board.Layout {
	return board.Layout(append([]board.ColumnSpec(nil), c.Columns...))
}

// Rules returns board rules honoring the configured content limit.
func (c *Config) Rules() board.Rules {
	r := board.DefaultRules()
	r.MaxContentLength = c.MaxContentLength
	return r
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}
