//
// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package main is an interactive shell for Cloud Spanner client-side statements.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"slices"
	"strings"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/term"
	"spheric.cloud/xiter"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
	"github.com/apstndb/spanner-clientstmt/internal/session"
)

type globalOptions struct {
	ClientStmt clientStmtOptions `group:"spanner-clientstmt"`
}

// No `default` tags: config files and flags are parsed by separate parsers into the same struct.
type clientStmtOptions struct {
	Dialect        string            `long:"dialect" env:"SPANNER_CLIENTSTMT_DIALECT" choice:"GOOGLE_STANDARD_SQL" choice:"POSTGRESQL" description:"Dialect of the statements." default-mask:"GOOGLE_STANDARD_SQL"`
	Execute        *string           `long:"execute" short:"e" description:"Execute statements and quit."`
	File           *string           `long:"file" short:"f" description:"Execute statements from file and quit. - reads stdin."`
	Format         string            `long:"format" choice:"TABLE" choice:"VERTICAL" choice:"TAB" choice:"JSON" description:"Output format of SHOW statements." default-mask:"TABLE in interactive mode, TAB in batch mode"`
	Set            map[string]string `long:"set" key-value-delimiter:"=" description:"Set connection variables before the first statement e.g. --set=autocommit=false"`
	ListStatements bool              `long:"list-statements" description:"Print the statements of the dialect as YAML and quit."`
	Prompt         *string           `long:"prompt" description:"Set the prompt to the specified format" default-mask:"clientstmt%t%b> "`
	Prompt2        *string           `long:"prompt2" description:"Set the prompt2 to the specified format" default-mask:"%P%R> "`
	HistoryFile    *string           `long:"history" description:"Set the history file to the specified path" default-mask:"/tmp/spanner_clientstmt_readline.tmp"`
	NoHighlight    bool              `long:"no-highlight" description:"Disable syntax highlighting of the input."`
	Verbose        bool              `long:"verbose" short:"v" description:"Display the result line in batch mode."`
	Help           bool              `long:"help" short:"h" hidden:"true"`
	Debug          bool              `long:"debug" hidden:"true"`
}

const (
	defaultPrompt      = "clientstmt%t%b> "
	defaultPrompt2     = "%P%R> "
	defaultHistoryFile = "/tmp/spanner_clientstmt_readline.tmp"
)

var longDescription = heredoc.Doc(`
	spanner-clientstmt parses and executes the client-side statements of Cloud Spanner
	drivers, such as SHOW VARIABLE, SET and BEGIN, against an in-memory connection.
	Options can also be written in .spanner_clientstmt.cnf in the home or current directory.
`)

func newParser(opts *globalOptions, parserOptions flags.Options) *flags.Parser {
	parser := flags.NewParser(opts, parserOptions)
	parser.LongDescription = longDescription
	return parser
}

func main() {
	err := run(context.Background(), afero.NewOsFs(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(GetExitCode(err))
}

func run(ctx context.Context, fs afero.Fs, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	var gopts globalOptions

	// process config files at first
	if err := readConfigFile(fs, newParser(&gopts, flags.Default), configFilePaths()); err != nil {
		fmt.Fprintf(stderr, "Invalid config file format: %v\n", err)
		return NewExitCodeError(exitCodeUsage)
	}

	// environment variables and command line options take precedence over config files
	flagParser := newParser(&gopts, flags.PassDoubleDash)

	// a separate parser keeps config values out of the help text
	parserForHelp := newParser(&globalOptions{}, flags.Default)

	if _, err := flagParser.ParseArgs(args); err != nil {
		if !flags.WroteHelp(err) {
			fmt.Fprintln(stderr, err)
		}
		parserForHelp.WriteHelp(stderr)
		return err
	} else if gopts.ClientStmt.Help {
		parserForHelp.WriteHelp(stderr)
		return nil
	}

	opts := gopts.ClientStmt
	setupLogger(stderr, opts.Debug)

	if xiter.Count(xiter.Of(opts.File, opts.Execute), func(s *string) bool { return s != nil }) > 1 {
		fmt.Fprintln(stderr, "Invalid combination: -e and -f are exclusive")
		return NewExitCodeError(exitCodeUsage)
	}

	dialect := databasepb.DatabaseDialect(databasepb.DatabaseDialect_value[cmp.Or(opts.Dialect, "GOOGLE_STANDARD_SQL")])
	p, err := clientstmt.ForDialect(dialect)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return NewExitCodeError(exitCodeUsage)
	}

	if opts.ListStatements {
		if err := writeStatementList(stdout, p); err != nil {
			printError(stderr, err)
			return NewExitCodeError(exitCodeError)
		}
		return nil
	}

	input, err := readInput(fs, opts, stdin)
	if err != nil {
		printError(stderr, err)
		return NewExitCodeError(exitCodeError)
	}
	interactive := isInteractive(opts, input, term.IsTerminal(int(stdin.Fd())))

	config, err := newCliConfig(opts, interactive)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return NewExitCodeError(exitCodeUsage)
	}

	sess := session.New(session.WithLogger(newSessionLogger(opts.Debug)))
	cli, err := NewCli(sess, p, stdin, stdout, stderr, config, fs)
	if err != nil {
		printError(stderr, err)
		return NewExitCodeError(exitCodeError)
	}

	if err := cli.applySets(ctx, opts.Set); err != nil {
		fmt.Fprintf(stderr, "failed to set connection variables: %v\n", err)
		return NewExitCodeError(exitCodeError)
	}

	if interactive {
		return cli.RunInteractive(ctx)
	}
	return cli.RunBatch(ctx, input)
}

func newCliConfig(opts clientStmtOptions, interactive bool) (*cliConfig, error) {
	format := lo.Ternary(interactive, enums.DisplayModeTable, enums.DisplayModeTab)
	if opts.Format != "" {
		var err error
		if format, err = enums.DisplayModeString(opts.Format); err != nil {
			return nil, err
		}
	}

	return &cliConfig{
		Format:          format,
		Prompt:          lo.FromPtrOr(opts.Prompt, defaultPrompt),
		Prompt2:         lo.FromPtrOr(opts.Prompt2, defaultPrompt2),
		HistoryFile:     lo.FromPtrOr(opts.HistoryFile, defaultHistoryFile),
		EnableHighlight: !opts.NoHighlight,
		Verbose:         opts.Verbose,
		Debug:           opts.Debug,
	}, nil
}

// applySets executes SET name = value for each --set in name order.
func (c *Cli) applySets(ctx context.Context, sets map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(sets)) {
		stmt := fmt.Sprintf("SET %s = %s", name, sets[name])
		parsed, err := c.Parser.Parse(stmt)
		if err != nil {
			return fmt.Errorf("--set=%v=%v: %w", name, sets[name], err)
		}
		if _, err := parsed.Execute(ctx, c.Session); err != nil {
			return fmt.Errorf("--set=%v=%v: %w", name, sets[name], err)
		}
	}
	return nil
}

func setupLogger(w io.Writer, debug bool) {
	level := lo.Ternary(debug, slog.LevelDebug, slog.LevelWarn)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newSessionLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		slog.Warn("failed to build session logger", "err", err)
		return zap.NewNop()
	}
	return logger
}

func readInput(fs afero.Fs, opts clientStmtOptions, stdin *os.File) (string, error) {
	switch {
	case opts.Execute != nil:
		return *opts.Execute, nil
	case opts.File != nil && *opts.File == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read from stdin failed: %w", err)
		}
		return string(b), nil
	case opts.File != nil:
		b, err := afero.ReadFile(fs, *opts.File)
		if err != nil {
			return "", fmt.Errorf("read from file %v failed: %w", *opts.File, err)
		}
		return string(b), nil
	default:
		return readStdin(stdin)
	}
}

// isInteractive is true only without -e and -f, when nothing was piped to a terminal stdin.
func isInteractive(opts clientStmtOptions, input string, stdinIsTerminal bool) bool {
	return opts.Execute == nil && opts.File == nil && input == "" && stdinIsTerminal
}

// readStdin reads stdin only if it is not a terminal.
func readStdin(stdin *os.File) (string, error) {
	stat, err := stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

const cnfFileName = ".spanner_clientstmt.cnf"

func configFilePaths() []string {
	var paths []string
	if currentUser, err := user.Current(); err == nil {
		paths = append(paths, filepath.Join(currentUser.HomeDir, cnfFileName))
	}

	cwd, _ := os.Getwd() // ignore err
	return append(paths, filepath.Join(cwd, cnfFileName))
}

// readConfigFile parses the existing files of paths in order, so later files take precedence.
func readConfigFile(fs afero.Fs, parser *flags.Parser, paths []string) error {
	iniParser := flags.NewIniParser(parser)
	for _, path := range paths {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			// skip if missing
			continue
		}
		if err := iniParser.Parse(strings.NewReader(string(b))); err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
	}
	return nil
}
