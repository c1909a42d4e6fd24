package main

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/goccy/go-yaml"
	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
)

// runForTest runs the command in batch mode. Config files are read from fs.
func runForTest(t *testing.T, fs afero.Fs, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	var out, errOut strings.Builder
	err := run(context.Background(), fs, args, nil, &out, &errOut)
	return out.String(), errOut.String(), GetExitCode(err)
}

func TestRun(t *testing.T) {
	tests := []struct {
		desc         string
		args         []string
		files        map[string]string
		env          map[string]string
		want         string
		wantExitCode int
		wantStderr   string
	}{
		{
			desc: "execute",
			args: []string{"-e", "SHOW VARIABLE AUTOCOMMIT"},
			want: "AUTOCOMMIT\nTRUE\n",
		},
		{
			desc: "format",
			args: []string{"--format=VERTICAL", "-e", "SHOW VARIABLE READONLY"},
			want: "*************************** 1. row ***************************\nREADONLY: FALSE\n",
		},
		{
			desc: "set",
			args: []string{"--set", "autocommit=false", "--set=rpc_priority='LOW'", "-e", "SHOW VARIABLE AUTOCOMMIT; SHOW VARIABLE RPC_PRIORITY"},
			want: "AUTOCOMMIT\nFALSE\nRPC_PRIORITY\nLOW\n",
		},
		{
			desc:  "file",
			args:  []string{"-f", "/work/statements.sql"},
			files: map[string]string{"/work/statements.sql": "SET READONLY = TRUE;\nSHOW VARIABLE READONLY;\n"},
			want:  "READONLY\nTRUE\n",
		},
		{
			desc: "dialect",
			args: []string{"--dialect", "POSTGRESQL", "-e", "show spanner.autocommit_dml_mode"},
			want: "AUTOCOMMIT_DML_MODE\nTRANSACTIONAL\n",
		},
		{
			desc: "dialect from environment",
			args: []string{"-e", "set autocommit to off; show autocommit"},
			env:  map[string]string{"SPANNER_CLIENTSTMT_DIALECT": "POSTGRESQL"},
			want: "AUTOCOMMIT\nFALSE\n",
		},
		{
			desc: "empty execute",
			args: []string{"-e", ""},
		},
		{
			desc:  "empty file",
			args:  []string{"-f", "/work/empty.sql"},
			files: map[string]string{"/work/empty.sql": ""},
		},
		{
			desc:         "missing file",
			args:         []string{"-f", "/work/missing.sql"},
			wantExitCode: exitCodeError,
			wantStderr:   "read from file /work/missing.sql failed",
		},
		{
			desc:         "execute and file are exclusive",
			args:         []string{"-e", "BEGIN", "-f", "/work/statements.sql"},
			wantExitCode: exitCodeUsage,
			wantStderr:   "Invalid combination: -e and -f are exclusive",
		},
		{
			desc:         "invalid dialect",
			args:         []string{"--dialect", "MYSQL", "-e", "BEGIN"},
			wantExitCode: exitCodeUsage,
			wantStderr:   "Invalid value `MYSQL'",
		},
		{
			desc:         "unknown flag",
			args:         []string{"--unknown"},
			wantExitCode: exitCodeUsage,
			wantStderr:   "unknown flag `unknown'",
		},
		{
			desc:         "invalid set",
			args:         []string{"--set", "autocommit=maybe", "-e", "BEGIN"},
			wantExitCode: exitCodeError,
			wantStderr:   "failed to set connection variables: --set=autocommit=maybe",
		},
		{
			desc:         "statement error",
			args:         []string{"-e", "COMMIT; SELECT 1"},
			wantExitCode: exitCodeError,
			wantStderr:   `ERROR: unrecognized client-side statement: "SELECT 1"`,
		},
		{
			desc:       "help",
			args:       []string{"--help"},
			wantStderr: "--list-statements",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := afero.NewMemMapFs()
			for name, content := range tt.files {
				require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
			}

			stdout, stderr, exitCode := runForTest(t, fs, tt.args...)
			assert.Equal(t, tt.wantExitCode, exitCode, stderr)
			assert.Equal(t, tt.want, stdout)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	paths := configFilePaths()
	require.NotEmpty(t, paths)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, lo.LastOrEmpty(paths), []byte("[spanner-clientstmt]\nformat = VERTICAL\ndialect = POSTGRESQL\n"), 0o644))

	t.Run("config values are used", func(t *testing.T) {
		stdout, stderr, exitCode := runForTest(t, fs, "-e", "show readonly")
		require.Equal(t, exitCodeSuccess, exitCode, stderr)
		assert.Equal(t, "*************************** 1. row ***************************\nREADONLY: FALSE\n", stdout)
	})

	t.Run("flags take precedence", func(t *testing.T) {
		stdout, stderr, exitCode := runForTest(t, fs, "--format=TAB", "-e", "show readonly")
		require.Equal(t, exitCodeSuccess, exitCode, stderr)
		assert.Equal(t, "READONLY\nFALSE\n", stdout)
	})
}

func TestReadConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/user/.spanner_clientstmt.cnf", []byte("[spanner-clientstmt]\nformat = JSON\nprompt = home> \n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.spanner_clientstmt.cnf", []byte("[spanner-clientstmt]\nprompt = work> \n"), 0o644))

	var gopts globalOptions
	parser := newParser(&gopts, flags.None)

	err := readConfigFile(fs, parser, []string{"/home/user/.spanner_clientstmt.cnf", "/missing/.spanner_clientstmt.cnf", "/work/.spanner_clientstmt.cnf"})
	require.NoError(t, err)
	assert.Equal(t, "JSON", gopts.ClientStmt.Format)
	assert.Equal(t, "work>", strings.TrimSpace(lo.FromPtr(gopts.ClientStmt.Prompt)))

	require.NoError(t, afero.WriteFile(fs, "/broken/.spanner_clientstmt.cnf", []byte("[spanner-clientstmt]\nunknown_option = 1\n"), 0o644))
	err = readConfigFile(fs, newParser(&globalOptions{}, flags.None), []string{"/broken/.spanner_clientstmt.cnf"})
	assert.ErrorContains(t, err, "/broken/.spanner_clientstmt.cnf")
}

func TestNewCliConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := newCliConfig(clientStmtOptions{}, false)
		require.NoError(t, err)
		assert.Equal(t, &cliConfig{
			Format:          enums.DisplayModeTab,
			Prompt:          defaultPrompt,
			Prompt2:         defaultPrompt2,
			HistoryFile:     defaultHistoryFile,
			EnableHighlight: true,
		}, config)

		config, err = newCliConfig(clientStmtOptions{}, true)
		require.NoError(t, err)
		assert.Equal(t, enums.DisplayModeTable, config.Format)
	})

	t.Run("options", func(t *testing.T) {
		config, err := newCliConfig(clientStmtOptions{
			Format:      "json",
			Prompt:      lo.ToPtr("%D> "),
			HistoryFile: lo.ToPtr("/tmp/history"),
			NoHighlight: true,
			Verbose:     true,
		}, true)
		require.NoError(t, err)
		assert.Equal(t, enums.DisplayModeJSON, config.Format)
		assert.Equal(t, "%D> ", config.Prompt)
		assert.Equal(t, "/tmp/history", config.HistoryFile)
		assert.False(t, config.EnableHighlight)
		assert.True(t, config.Verbose)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := newCliConfig(clientStmtOptions{Format: "CSV"}, false)
		assert.Error(t, err)
	})
}

func TestIsInteractive(t *testing.T) {
	tests := []struct {
		desc       string
		opts       clientStmtOptions
		input      string
		isTerminal bool
		want       bool
	}{
		{desc: "terminal without input", isTerminal: true, want: true},
		{desc: "empty execute on terminal", opts: clientStmtOptions{Execute: lo.ToPtr("")}, isTerminal: true},
		{desc: "empty file on terminal", opts: clientStmtOptions{File: lo.ToPtr("/work/empty.sql")}, isTerminal: true},
		{desc: "piped input", input: "BEGIN", isTerminal: true},
		{desc: "not a terminal", isTerminal: false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, isInteractive(tt.opts, tt.input, tt.isTerminal))
		})
	}
}

func TestRun_ListStatements(t *testing.T) {
	for _, dialect := range []databasepb.DatabaseDialect{
		databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL,
		databasepb.DatabaseDialect_POSTGRESQL,
	} {
		t.Run(dialect.String(), func(t *testing.T) {
			stdout, stderr, exitCode := runForTest(t, afero.NewMemMapFs(), "--list-statements", "--dialect", dialect.String())
			require.Equal(t, exitCodeSuccess, exitCode, stderr)

			var doc struct {
				Dialect    string             `yaml:"dialect"`
				Statements []statementListing `yaml:"statements"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))

			p := clientstmt.MustForDialect(dialect)
			assert.Equal(t, dialect.String(), doc.Dialect)
			require.Len(t, doc.Statements, len(p.Statements()))
			for i, stmt := range p.Statements() {
				assert.Equal(t, stmt.Name, doc.Statements[i].Name)
				assert.Equal(t, stmt.Examples, doc.Statements[i].Examples)
			}
		})
	}
}
