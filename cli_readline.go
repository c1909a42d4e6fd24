package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/apstndb/lox"
	"github.com/cloudspannerecosystem/memefish"
	"github.com/cloudspannerecosystem/memefish/token"
	"github.com/fatih/color"
	"github.com/hymkor/go-multiline-ny"
	"github.com/mattn/go-runewidth"
	"github.com/ngicks/go-iterator-helper/hiter"
	"github.com/nyaosorg/go-readline-ny"
	"github.com/nyaosorg/go-readline-ny/keys"
	"github.com/nyaosorg/go-readline-ny/simplehistory"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/apstndb/spanner-clientstmt/internal"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
)

type History interface {
	readline.IHistory
	Add(string)
}

// persistentHistory appends every entry to a file as a Go quoted string per line.
type persistentHistory struct {
	filename string
	history  *simplehistory.Container
	fs       afero.Fs
}

func (p *persistentHistory) Len() int {
	return p.history.Len()
}

func (p *persistentHistory) At(i int) string {
	return p.history.At(i)
}

func (p *persistentHistory) Add(s string) {
	p.history.Add(s)
	file, err := p.fs.OpenFile(p.filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		slog.Error("failed to open history file", "file", p.filename, "err", err)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close history file", "file", p.filename, "err", err)
		}
	}()

	if _, err := fmt.Fprintf(file, "%q\n", s); err != nil {
		slog.Error("failed to write to history file", "file", p.filename, "err", err)
	}
}

// loadHistory reads filename into h. A missing file is an empty history.
func loadHistory(fs afero.Fs, filename string, h *simplehistory.Container) (History, error) {
	b, err := afero.ReadFile(fs, filename)
	if errors.Is(err, os.ErrNotExist) {
		return &persistentHistory{filename: filename, history: h, fs: fs}, nil
	}
	if err != nil {
		return nil, err
	}

	for i, line := range strings.Split(string(b), "\n") {
		if line == "" {
			continue
		}
		unquoted, err := strconv.Unquote(line)
		if err != nil {
			return nil, fmt.Errorf("history file %v is broken at line %d, remove it: %w", filename, i+1, err)
		}
		h.Add(unquoted)
	}
	return &persistentHistory{filename: filename, history: h, fs: fs}, nil
}

// shouldSubmitStatement reports whether the editor should submit the input on Enter.
// While the input is inside a comment or a triple-quoted literal, it returns the token which closes it.
func shouldSubmitStatement(statements []internal.RawStatement, err error) (shouldSubmit bool, waitingStatus string) {
	if e, ok := lo.ErrorsAs[*internal.ErrLexerStatus](err); ok {
		return false, e.WaitingString
	}

	shouldSubmit = err != nil || len(statements) > 1 || (len(statements) == 1 && statements[0].Terminator != "")
	return shouldSubmit, ""
}

// generatePS2Prompt pads the continuation prompt to the width of the last line of PS1 if the template starts with %P.
func generatePS2Prompt(ps1 string, ps2Template string, ps2Interpolated string) string {
	lastLineOfPrompt := lo.LastOrEmpty(strings.Split(ps1, "\n"))
	_, needPadding := strings.CutPrefix(ps2Template, "%P")
	return lo.Ternary(needPadding, runewidth.FillLeft(ps2Interpolated, runewidth.StringWidth(lastLineOfPrompt)), ps2Interpolated)
}

func PS1PS2FuncToPromptFunc(ps1F func() string, ps2F func(ps1 string) string) func(w io.Writer, lnum int) (int, error) {
	return func(w io.Writer, lnum int) (int, error) {
		if lnum == 0 {
			return io.WriteString(w, ps1F())
		}
		return io.WriteString(w, ps2F(ps1F()))
	}
}

// submitOnEnter submits a client-side statement or a command without a terminating semicolon.
func (c *Cli) submitOnEnter(lines []string) bool {
	text := strings.Join(lines, "\n")

	if isCommand(text) || c.Parser.IsClientSideStatement(text) {
		c.waitingStatus = ""
		return true
	}

	statements, err := internal.SeparateInput("", text)
	shouldSubmit, waitingStatus := shouldSubmitStatement(statements, err)
	c.waitingStatus = waitingStatus
	return shouldSubmit
}

func initializeMultilineEditor(c *Cli) (*multiline.Editor, History, error) {
	ed := &multiline.Editor{}
	ed.LineEditor.Writer = c.OutStream

	if err := ed.BindKey(keys.CtrlJ, readline.AnonymousCommand(ed.NewLine)); err != nil {
		return nil, nil, err
	}

	history, err := loadHistory(c.fs, c.Config.HistoryFile, simplehistory.New())
	if err != nil {
		return nil, nil, err
	}
	ed.SetHistory(history)
	ed.SetHistoryCycling(true)

	ed.SubmitOnEnterWhen(func(lines []string, _ int) bool {
		return c.submitOnEnter(lines)
	})

	ed.SetPrompt(PS1PS2FuncToPromptFunc(
		func() string {
			return c.getInterpolatedPrompt(c.Config.Prompt)
		},
		func(ps1 string) string {
			prompt2, _ := strings.CutPrefix(c.Config.Prompt2, "%P")
			return generatePS2Prompt(ps1, c.Config.Prompt2, c.getInterpolatedPrompt(prompt2))
		}))

	return ed, history, nil
}

type highlighterFunc func(string, int) [][]int

func (f highlighterFunc) FindAllStringIndex(s string, i int) [][]int {
	return f(s, i)
}

func lexerHighlighterWithError(f func(tok token.Token) [][]int, errf func(me *memefish.Error) bool) highlighterFunc {
	return func(s string, _ int) [][]int {
		var results [][]int
		for tok, err := range internal.NewLexerSeq("", s) {
			if err != nil {
				if me, ok := lo.ErrorsAs[*memefish.Error](err); ok && errf != nil && errf(me) {
					results = append(results, []int{int(me.Position.Pos), int(me.Position.End)})
				}
				break
			}

			if f != nil {
				results = append(results, f(tok)...)
			}
		}
		return results
	}
}

func tokenHighlighter(pred func(tok token.Token) bool) highlighterFunc {
	return lexerHighlighterWithError(func(tok token.Token) [][]int {
		return lox.IfOrEmpty(pred(tok), [][]int{{int(tok.Pos), int(tok.End)}})
	}, nil)
}

func kindHighlighter(kinds ...token.TokenKind) highlighterFunc {
	return tokenHighlighter(func(tok token.Token) bool {
		return slices.Contains(kinds, tok.Kind)
	})
}

const (
	errMessageUnclosedStringLiteral             = `unclosed string literal`
	errMessageUnclosedTripleQuotedStringLiteral = `unclosed triple-quoted string literal`
	errMessageUnclosedComment                   = `unclosed comment`
)

func commentHighlighter() highlighterFunc {
	return lexerHighlighterWithError(func(tok token.Token) [][]int {
		return slices.Collect(hiter.Map(func(comment token.TokenComment) []int {
			return []int{int(comment.Pos), int(comment.End)}
		}, slices.Values(tok.Comments)))
	}, func(me *memefish.Error) bool {
		return me.Message == errMessageUnclosedComment
	})
}

func colorToSequence(attr ...color.Attribute) string {
	var sb strings.Builder
	color.New(attr...).SetWriter(&sb)
	return sb.String()
}

var keywordRe = regexp.MustCompile("^[a-zA-Z0-9]+$")

// clientStatementHighlighter marks the leading keyword of input which p recognizes as a client-side statement.
func clientStatementHighlighter(p *clientstmt.Parser) highlighterFunc {
	return func(s string, _ int) [][]int {
		if !p.IsClientSideStatement(s) {
			return nil
		}
		tok, err := internal.FirstNonHintToken("", s)
		if err != nil {
			return nil
		}
		return [][]int{{int(tok.Pos), int(tok.End)}}
	}
}

func highlightsFor(p *clientstmt.Parser) []readline.Highlight {
	return []readline.Highlight{
		{Pattern: commentHighlighter(), Sequence: colorToSequence(color.FgWhite, color.Faint)},
		{Pattern: kindHighlighter(token.TokenString, token.TokenBytes), Sequence: colorToSequence(color.FgGreen, color.Bold)},
		{Pattern: lexerHighlighterWithError(nil, func(me *memefish.Error) bool {
			return me.Message == errMessageUnclosedStringLiteral || me.Message == errMessageUnclosedTripleQuotedStringLiteral
		}), Sequence: colorToSequence(color.FgHiGreen, color.Bold)},
		{Pattern: kindHighlighter(token.TokenFloat, token.TokenInt), Sequence: colorToSequence(color.FgHiBlue, color.Bold)},
		{Pattern: tokenHighlighter(func(tok token.Token) bool {
			return keywordRe.MatchString(string(tok.Kind))
		}), Sequence: colorToSequence(color.FgHiYellow, color.Bold)},
		{Pattern: kindHighlighter(token.TokenIdent), Sequence: colorToSequence(color.FgHiWhite)},
		{Pattern: clientStatementHighlighter(p), Sequence: colorToSequence(color.FgHiMagenta, color.Bold)},
	}
}

func setLineEditor(ed *multiline.Editor, p *clientstmt.Parser, enableHighlight bool) {
	if color.NoColor || !enableHighlight {
		ed.Highlight = nil
		ed.DefaultColor = ""
		ed.ResetColor = ""
		return
	}

	ed.Highlight = highlightsFor(p)
	ed.ResetColor = colorToSequence(color.Reset)
	ed.DefaultColor = colorToSequence(color.Reset)
}

// readInteractiveInput reads one statement. The terminating semicolon is optional.
func readInteractiveInput(ctx context.Context, ed *multiline.Editor) (string, error) {
	lines, err := ed.Read(ctx)
	if err != nil {
		return "", err
	}

	input := strings.Join(lines, "\n")
	if isCommand(input) {
		return strings.TrimSpace(input), nil
	}

	statements, err := internal.SeparateInput("", input)
	if err != nil {
		return "", err
	}

	switch len(statements) {
	case 0:
		return "", errors.New("no input")
	case 1:
		return statements[0].Statement, nil
	default:
		return "", errors.New("statements are limited to one per input in interactive mode")
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, readline.CtrlC)
}
