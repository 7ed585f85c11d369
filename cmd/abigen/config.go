// Copyright 2024 The starkbind Authors
// This file is part of starkbind.
//
// starkbind is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// starkbind is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with starkbind. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/starkbind/starkbind/accounts/abi/abigen"
	"github.com/starkbind/starkbind/log"
)

// fileConfig is the layout of the --config file.
type fileConfig struct {
	Contract    string            `toml:"contract" yaml:"contract"`
	Package     string            `toml:"package" yaml:"package"`
	ABI         string            `toml:"abi" yaml:"abi"`
	Output      string            `toml:"output" yaml:"output"`
	ExecVersion string            `toml:"exec_version" yaml:"exec_version"`
	Aliases     map[string]string `toml:"aliases" yaml:"aliases"`
}

// options is the fully resolved input of a binding run.
type options struct {
	abigen.Config
	ABI    string
	Output string
}

// loadConfig reads a TOML or YAML config file, chosen by extension. Unknown
// keys are rejected so that typos do not go unnoticed.
func loadConfig(file string) (*fileConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	cfg := new(fileConfig)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", file, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown field %q", file, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %v", file, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format, use .toml or .yaml", file)
	}
	return cfg, nil
}

// resolvePaths anchors the relative input and output paths of a config file
// at the directory holding it.
func (cfg *fileConfig) resolvePaths(file string) {
	dir := filepath.Dir(file)
	if cfg.ABI != "" && cfg.ABI != "-" && !filepath.IsAbs(cfg.ABI) {
		cfg.ABI = filepath.Join(dir, cfg.ABI)
	}
	if cfg.Output != "" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(dir, cfg.Output)
	}
}

// flagConfig collects the binding options given on the command line. Flags
// that were not set stay empty.
func flagConfig(c *cli.Context) (*fileConfig, error) {
	cfg := &fileConfig{
		Contract:    setString(c, typeFlag.Name),
		Package:     setString(c, pkgFlag.Name),
		ABI:         setString(c, abiFlag.Name),
		Output:      setString(c, outFlag.Name),
		ExecVersion: setString(c, execVersionFlag.Name),
	}
	aliases, err := parseAliases(setString(c, aliasFlag.Name))
	if err != nil {
		return nil, err
	}
	cfg.Aliases = aliases
	return cfg, nil
}

// setString returns the value of a flag given on the command line, or the
// empty string if the user did not set it.
func setString(c *cli.Context, name string) string {
	if !c.IsSet(name) {
		return ""
	}
	return c.String(name)
}

// mergeConfigs layers the given configs on top of each other. Non-empty
// values of later layers override earlier ones, aliases are merged per key.
func mergeConfigs(layers ...*fileConfig) (*fileConfig, error) {
	merged := &fileConfig{Aliases: make(map[string]string)}
	for _, layer := range layers {
		if err := mergo.Merge(merged, layer, mergo.WithOverride); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// loadOptions merges the config file, if any, with the command line flags.
// Flags take precedence over file values.
func loadOptions(c *cli.Context) (*options, error) {
	var layers []*fileConfig
	if c.IsSet(configFlag.Name) {
		file := c.String(configFlag.Name)
		cfg, err := loadConfig(file)
		if err != nil {
			return nil, err
		}
		cfg.resolvePaths(file)
		if cfg.ExecVersion != "" {
			if _, err := abigen.ParseExecutionVersion(cfg.ExecVersion); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		log.Debug("Loaded binding config", "file", file, "aliases", len(cfg.Aliases))
		layers = append(layers, cfg)
	}
	cfg, err := flagConfig(c)
	if err != nil {
		return nil, err
	}
	merged, err := mergeConfigs(append(layers, cfg)...)
	if err != nil {
		return nil, err
	}
	// Ensure all needed inputs are specified
	if merged.ABI == "" {
		return nil, errors.New("no contract ABI specified (--abi)")
	}
	if merged.Package == "" {
		return nil, errors.New("no destination package specified (--pkg)")
	}
	opts := &options{
		Config: abigen.Config{
			Package:  merged.Package,
			Contract: merged.Contract,
			Source:   merged.ABI,
			Aliases:  merged.Aliases,
		},
		ABI:    merged.ABI,
		Output: merged.Output,
	}
	if merged.ExecVersion != "" {
		if opts.ExecutionVersion, err = abigen.ParseExecutionVersion(merged.ExecVersion); err != nil {
			return nil, err
		}
	}
	if opts.Contract == "" {
		opts.Contract = opts.Package
	}
	if opts.ABI == "-" {
		opts.Source = "<stdin>"
	}
	return opts, nil
}
