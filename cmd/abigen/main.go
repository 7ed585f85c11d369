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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starkbind/starkbind/accounts/abi/abigen"
	"github.com/starkbind/starkbind/internal/flags"
	"github.com/starkbind/starkbind/log"
)

var (
	// Flags needed by abigen
	abiFlag = &flags.PathFlag{
		Name:     "abi",
		Usage:    "Path to the Cairo contract ABI or compiled contract class to bind, - for STDIN",
		Category: flags.BindingCategory,
	}
	typeFlag = &cli.StringFlag{
		Name:     "type",
		Usage:    "Go struct name for the binding (default = package name)",
		Category: flags.BindingCategory,
	}
	pkgFlag = &cli.StringFlag{
		Name:     "pkg",
		Usage:    "Package name to generate the binding into",
		Category: flags.BindingCategory,
	}
	outFlag = &flags.PathFlag{
		Name:     "out",
		Usage:    "Output file for the generated binding (default = stdout)",
		Category: flags.BindingCategory,
	}
	aliasFlag = &cli.StringFlag{
		Name:     "alias",
		Usage:    "Comma separated aliases for type renaming, e.g. 'pkg::Point=Coordinate'",
		Category: flags.BindingCategory,
	}
	configFlag = &flags.PathFlag{
		Name:     "config",
		Usage:    "TOML or YAML file holding the binding options, flags take precedence",
		Category: flags.BindingCategory,
	}
	execVersionFlag = &flags.TextMarshalerFlag{
		Name:     "exec-version",
		Usage:    "Invoke transaction version built by external methods (v1 or v3)",
		Value:    new(abigen.ExecutionVersion),
		Category: flags.BindingCategory,
	}
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logFileFlag = &flags.PathFlag{
		Name:     "log.file",
		Usage:    "Also write logs in logfmt to the given file, rotated at 16MB",
		Category: flags.LoggingCategory,
	}
)

var bindFlags = []cli.Flag{
	abiFlag,
	typeFlag,
	pkgFlag,
	outFlag,
	aliasFlag,
	configFlag,
	execVersionFlag,
}

func newApp() *cli.App {
	app := flags.NewApp("Starknet Cairo ABI binding generator")
	app.Name = "abigen"
	app.Flags = flags.Merge(bindFlags, []cli.Flag{verbosityFlag, logFileFlag})
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx.App.ErrWriter, ctx.Int(verbosityFlag.Name), setString(ctx, logFileFlag.Name))
		return nil
	}
	app.Action = abigenAction
	app.Commands = []*cli.Command{inspectCommand}
	return app
}

// setupLogging routes the log output to w, coloured if w is a terminal. If
// file is set, records are additionally appended to a rotating log file.
func setupLogging(w io.Writer, verbosity int, file string) {
	usecolor := false
	if f, ok := w.(*os.File); ok {
		usecolor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor {
			w = colorable.NewColorable(f)
		}
	}
	handler := log.StreamHandler(w, log.TerminalFormat(usecolor))
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    16, // megabytes
			MaxBackups: 3,
		}
		handler = log.MultiHandler(handler, log.StreamHandler(rotating, log.LogfmtFormat()))
	}
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(verbosity), handler))
}

func abigenAction(c *cli.Context) error {
	opts, err := loadOptions(c)
	if err != nil {
		return err
	}
	data, err := readSource(c.App.Reader, opts.ABI)
	if err != nil {
		return fmt.Errorf("failed to read input ABI: %v", err)
	}
	code, err := abigen.Bind(string(data), opts.Config)
	if err != nil {
		return fmt.Errorf("failed to generate ABI binding: %w", err)
	}
	// Either flush it out to a file or display on the standard output
	if opts.Output == "" {
		fmt.Fprintf(c.App.Writer, "%s\n", code)
		return nil
	}
	if err := os.WriteFile(opts.Output, []byte(code), 0600); err != nil {
		return fmt.Errorf("failed to write ABI binding: %v", err)
	}
	log.Info("Wrote contract binding", "type", opts.Config.Contract, "file", opts.Output)
	return nil
}

// readSource loads an ABI from a file, or from r if path is "-".
func readSource(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		if r == nil {
			r = os.Stdin
		}
		return io.ReadAll(r)
	}
	return os.ReadFile(path)
}

// parseAliases splits a comma separated list of path=Name pairs. Commas
// within generic argument lists belong to the path.
func parseAliases(s string) (map[string]string, error) {
	aliases := make(map[string]string)
	var (
		depth int
		start int
		items []string
	)
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, s[start:i])
				start = i + 1
			}
		}
	}
	items = append(items, s[start:])
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		idx := strings.LastIndexByte(item, '=')
		if idx <= 0 || idx == len(item)-1 {
			return nil, fmt.Errorf("invalid alias %q, expected path=Name", item)
		}
		aliases[strings.TrimSpace(item[:idx])] = strings.TrimSpace(item[idx+1:])
	}
	return aliases, nil
}

// fatalf prints the error in red and exits with status 1.
func fatalf(format string, args ...interface{}) {
	w := colorable.NewColorableStderr()
	red := color.New(color.FgRed)
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		red.DisableColor()
	}
	red.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatalf("%v", err)
	}
}
