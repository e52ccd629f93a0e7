// Package config loads extension options from the environment and an optional
// yaml or toml file, and keeps the runtime settings changed from SQL.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"bigtable2/internal/schema"
)

// Environment variables read at load time.
const (
	EnvSchema    = "BIGTABLE2_SCHEMA"
	EnvDebug     = "BIGTABLE2_DEBUG"
	EnvChunkSize = "BIGTABLE2_CHUNK_SIZE"
	EnvFile      = "BIGTABLE2_CONFIG"
)

// Options are the load-time settings of the extension.
type Options struct {
	Schema    string `long:"schema" env:"BIGTABLE2_SCHEMA" default:"product" description:"default schema revision"`
	ChunkSize int    `long:"chunk-size" env:"BIGTABLE2_CHUNK_SIZE" default:"2048" description:"max rows per output chunk"`
	Debug     bool   `long:"dbg" env:"BIGTABLE2_DEBUG" description:"debug logging"`
	File      string `long:"config" env:"BIGTABLE2_CONFIG" description:"config file, yaml or toml"`
}

// fileOptions mirrors Options for config files, nil fields are not set in the file.
type fileOptions struct {
	Schema    *string `yaml:"schema" toml:"schema"`
	ChunkSize *int    `yaml:"chunk_size" toml:"chunk_size"`
	Debug     *bool   `yaml:"debug" toml:"debug"`
}

// Load parses options from args and the environment, then applies the config file
// if one is set. Precedence is args and env, then file, then defaults.
func Load(args []string) (*Options, error) {
	opts := &Options{}
	p := flags.NewParser(opts, flags.IgnoreUnknown)
	if _, err := p.ParseArgs(args); err != nil {
		return nil, fmt.Errorf("can't parse options: %w", err)
	}

	if opts.File != "" {
		if err := opts.applyFile(opts.File, args); err != nil {
			return nil, err
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Revision returns the parsed default schema revision.
func (o *Options) Revision() schema.Revision {
	r, err := schema.ParseRevision(o.Schema)
	if err != nil {
		return schema.Default
	}
	return r
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	errs := new(multierror.Error)
	if _, err := schema.ParseRevision(o.Schema); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("schema: %w", err))
	}
	if o.ChunkSize < 1 || o.ChunkSize > 2048 {
		errs = multierror.Append(errs, fmt.Errorf("chunk size %d out of range 1..2048", o.ChunkSize))
	}
	return errs.ErrorOrNil()
}

func (o *Options) applyFile(fname string, args []string) error {
	data, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("can't read config %s: %w", fname, err)
	}

	var fo fileOptions
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".yml", ".yaml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // strict mode, fail on unknown fields
		if err := dec.Decode(&fo); err != nil {
			return fmt.Errorf("can't unmarshal yaml config %s: %w", fname, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &fo); err != nil {
			return fmt.Errorf("can't unmarshal toml config %s: %w", fname, err)
		}
	default:
		return fmt.Errorf("unknown config format %s", fname)
	}

	if fo.Schema != nil && !explicit(EnvSchema, "--schema", args) {
		o.Schema = *fo.Schema
	}
	if fo.ChunkSize != nil && !explicit(EnvChunkSize, "--chunk-size", args) {
		o.ChunkSize = *fo.ChunkSize
	}
	if fo.Debug != nil && !explicit(EnvDebug, "--dbg", args) {
		o.Debug = *fo.Debug
	}
	return nil
}

// explicit reports whether an option was set by env or args rather than a default.
func explicit(env, flag string, args []string) bool {
	if _, ok := os.LookupEnv(env); ok {
		return true
	}
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}
