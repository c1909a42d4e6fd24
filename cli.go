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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"google.golang.org/grpc/codes"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
	"github.com/apstndb/spanner-clientstmt/internal/session"
)

var helpFooter = heredoc.Doc(`
	Statements which are not client-side statements are only accepted inside
	START BATCH DDL or START BATCH DML, where they are buffered until RUN BATCH.
	Type EXIT or QUIT to leave, HELP to show this message.
`)

// cliConfig holds the settings of the command line which are not connection variables.
type cliConfig struct {
	Format          enums.DisplayMode
	Prompt          string
	Prompt2         string
	HistoryFile     string
	EnableHighlight bool
	Verbose         bool
	Debug           bool
}

type Cli struct {
	Session   *session.Session
	Parser    *clientstmt.Parser
	InStream  io.Reader
	OutStream io.Writer
	ErrStream io.Writer
	Config    *cliConfig

	fs            afero.Fs
	format        FormatFunc
	waitingStatus string
}

func NewCli(sess *session.Session, p *clientstmt.Parser, inStream io.Reader, outStream, errStream io.Writer, config *cliConfig, fs afero.Fs) (*Cli, error) {
	format, err := NewFormatter(config.Format)
	if err != nil {
		return nil, err
	}

	return &Cli{
		Session:   sess,
		Parser:    p,
		InStream:  inStream,
		OutStream: outStream,
		ErrStream: errStream,
		Config:    config,
		fs:        fs,
		format:    format,
	}, nil
}

func (c *Cli) RunInteractive(ctx context.Context) error {
	ed, history, err := initializeMultilineEditor(c)
	if err != nil {
		printError(c.ErrStream, err)
		return NewExitCodeError(exitCodeError)
	}

	fmt.Fprintf(c.OutStream, "Client-side statements for %v. Type HELP for the list.\n", dialectName(c.Parser.Dialect()))

	c.waitingStatus = ""
	for {
		setLineEditor(ed, c.Parser, c.Config.EnableHighlight)

		input, err := readInteractiveInput(ctx, ed)
		ed.SetDefault(nil)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(c.OutStream, "Bye")
			return nil
		case isInterrupted(err):
			continue
		case err != nil:
			printError(c.OutStream, err)
			continue
		}

		history.Add(input)

		switch strings.ToUpper(trimCommand(input)) {
		case "EXIT", "QUIT":
			fmt.Fprintln(c.OutStream, "Bye")
			return nil
		case "HELP":
			if err := writeHelp(c.OutStream, c.Parser); err != nil {
				printError(c.OutStream, err)
			}
			continue
		}

		if err := c.executeStatement(ctx, input, true); err != nil {
			printError(c.OutStream, err)
		}
	}
}

// RunBatch executes every statement of input and stops at the first error.
func (c *Cli) RunBatch(ctx context.Context, input string) error {
	stmts, err := internal.SeparateInput("", input)
	if err != nil {
		printError(c.ErrStream, err)
		return NewExitCodeError(exitCodeError)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go handleInterrupt(ctx, cancel)

	for _, stmt := range stmts {
		if _, err := internal.NormalizeStatement("", stmt.Statement); internal.IsEmptyStatement(err) {
			continue
		}

		switch strings.ToUpper(trimCommand(stmt.Statement)) {
		case "EXIT", "QUIT":
			return nil
		}

		if err := c.executeStatement(ctx, stmt.Statement, false); err != nil {
			printError(c.ErrStream, err)
			return NewExitCodeError(exitCodeError)
		}
	}

	return nil
}

// executeStatement executes text as a client-side statement.
// Other statements are buffered while a batch is active.
func (c *Cli) executeStatement(ctx context.Context, text string, interactive bool) error {
	stmt, err := c.Parser.Parse(text)
	if unrecognized, ok := lo.ErrorsAs[*clientstmt.UnrecognizedStatementError](err); ok {
		if mode := c.Session.BatchMode(); mode != enums.BatchModeNone {
			return c.bufferStatement(mode, strings.TrimSpace(text))
		}
		return unrecognized
	}
	if err != nil {
		return err
	}

	if c.Config.Debug {
		printer := pp.New()
		printer.SetColoringEnabled(false)
		printer.SetOutput(c.ErrStream)
		printer.Println(stmt)
	}

	if c.Session.HasStatementTimeout() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.Session.StatementTimeout(time.Nanosecond)))
		defer cancel()
	}

	t0 := time.Now()
	result, err := stmt.Execute(ctx, c.Session)
	if err != nil {
		return err
	}

	return c.displayResult(result, interactive, time.Since(t0))
}

func (c *Cli) bufferStatement(mode enums.BatchMode, text string) error {
	if err := c.Session.AddBatchStatement(text); err != nil {
		return err
	}
	fmt.Fprintf(c.OutStream, "Statement buffered in %v batch (%d statements)\n", mode, len(c.Session.BatchStatements()))
	return nil
}

func (c *Cli) displayResult(result *clientstmt.Result, interactive bool, elapsed time.Duration) error {
	if result.HasResultSet() {
		if err := c.format(c.OutStream, result); err != nil {
			return err
		}
	}

	if interactive || c.Config.Verbose {
		fmt.Fprintf(c.OutStream, "%v OK (%0.2f sec)\n\n", result.Type, elapsed.Seconds())
	}
	return nil
}

func dialectName(dialect databasepb.DatabaseDialect) string {
	return lo.Ternary(dialect == databasepb.DatabaseDialect_POSTGRESQL, "PostgreSQL", "GoogleSQL")
}

var commandRe = regexp.MustCompile(`(?i)^\s*(exit|quit|help)\s*;?\s*$`)

// isCommand reports whether s is a command of this tool rather than a statement.
func isCommand(s string) bool {
	return commandRe.MatchString(s)
}

func trimCommand(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
}

var promptRe = regexp.MustCompile(`%.`)

// getInterpolatedPrompt expands the escape sequences of prompt.
func (c *Cli) getInterpolatedPrompt(prompt string) string {
	return promptRe.ReplaceAllStringFunc(prompt, func(s string) string {
		switch s {
		case "%%":
			return "%"
		case "%n":
			return "\n"
		case "%D":
			return dialectName(c.Parser.Dialect())
		case "%t":
			mode, ok := c.Session.TransactionMode()
			switch {
			case !ok:
				return ""
			case mode == enums.TransactionModeReadOnly:
				return "(ro txn)"
			default:
				return "(rw txn)"
			}
		case "%b":
			mode := c.Session.BatchMode()
			return lo.Ternary(mode == enums.BatchModeNone, "", fmt.Sprintf("(%v batch)", strings.ToLower(mode.String())))
		case "%R":
			return runewidth.FillLeft(
				lo.CoalesceOrEmpty(strings.ReplaceAll(c.waitingStatus, "*/", "/*"), "-"), 3)
		default:
			return s
		}
	})
}

func printError(w io.Writer, err error) {
	code := spanner.ErrCode(err)
	before, _, found := strings.Cut(err.Error(), "spanner:")
	if code == codes.Unknown || !found {
		fmt.Fprintf(w, "ERROR: %s\n", err)
		return
	}

	desc := spanner.ErrDesc(err)

	unescaped := strings.NewReplacer(`\"`, `"`,
		`\'`, `'`,
		`\\`, `\`,
		`\n`, "\n").Replace(desc)

	fmt.Fprintf(w, "ERROR: %vspanner: code=%q, desc: %v\n", before, code, unescaped)
}

func handleInterrupt(ctx context.Context, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	select {
	case <-c:
		cancel()
	case <-ctx.Done():
	}
}
