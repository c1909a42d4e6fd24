package clientstmt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"

	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

// Result is the outcome of a client-side statement.
// SHOW statements return one row with one column, other statements return no columns.
type Result struct {
	Type    StatementType
	Columns []string
	Rows    [][]any
}

// HasResultSet reports whether r carries rows.
func (r *Result) HasResultSet() bool {
	return len(r.Columns) > 0
}

// handler calls one Connection method with the decoded parameter of a statement.
type handler func(ctx context.Context, conn Connection, value any) (*Result, error)

func singleValue(column string, value any) *Result {
	return &Result{Columns: []string{column}, Rows: [][]any{{value}}}
}

func show[T any](column string, get func(Connection) T) handler {
	return func(ctx context.Context, conn Connection, value any) (*Result, error) {
		return singleValue(column, get(conn)), nil
	}
}

func set[T any](setter func(Connection, T) error) handler {
	return func(ctx context.Context, conn Connection, value any) (*Result, error) {
		v, ok := value.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected parameter type %T, want %T", value, v)
		}
		if err := setter(conn, v); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}
}

func call(f func(Connection, context.Context) error) handler {
	return func(ctx context.Context, conn Connection, value any) (*Result, error) {
		if err := f(conn, ctx); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}
}

func callNoContext(f func(Connection) error) handler {
	return func(ctx context.Context, conn Connection, value any) (*Result, error) {
		if err := f(conn); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}
}

func nullTime(t time.Time, ok bool) spanner.NullTime {
	return spanner.NullTime{Time: t, Valid: ok}
}

func showStatementTimeout(ctx context.Context, conn Connection, value any) (*Result, error) {
	if !conn.HasStatementTimeout() {
		return singleValue("STATEMENT_TIMEOUT", spanner.NullString{}), nil
	}
	ns := conn.StatementTimeout(time.Nanosecond)
	return singleValue("STATEMENT_TIMEOUT", spanner.NullString{StringVal: parser.FormatDuration(time.Duration(ns)), Valid: true}), nil
}

func setStatementTimeout(ctx context.Context, conn Connection, value any) (*Result, error) {
	timeout, ok := value.(*parser.StatementTimeout)
	if !ok {
		return nil, fmt.Errorf("unexpected parameter type %T, want %T", value, timeout)
	}

	var err error
	if timeout == nil {
		err = conn.ClearStatementTimeout()
	} else {
		err = conn.SetStatementTimeout(timeout.Value, timeout.Unit)
	}
	if err != nil {
		return nil, err
	}
	return &Result{}, nil
}

// formatRPCPriority returns HIGH, MEDIUM or LOW, or NULL for PRIORITY_UNSPECIFIED.
func formatRPCPriority(priority sppb.RequestOptions_Priority) spanner.NullString {
	if priority == sppb.RequestOptions_PRIORITY_UNSPECIFIED {
		return spanner.NullString{}
	}
	return spanner.NullString{StringVal: strings.TrimPrefix(priority.String(), "PRIORITY_"), Valid: true}
}

var handlers = map[StatementType]handler{
	StatementShowAutocommit:                 show("AUTOCOMMIT", Connection.IsAutocommit),
	StatementShowReadOnly:                   show("READONLY", Connection.IsReadOnly),
	StatementShowAutocommitDMLMode:          show("AUTOCOMMIT_DML_MODE", func(conn Connection) string { return conn.AutocommitDMLMode().String() }),
	StatementShowStatementTimeout:           showStatementTimeout,
	StatementShowReadTimestamp:              show("READ_TIMESTAMP", func(conn Connection) spanner.NullTime { return nullTime(conn.ReadTimestamp()) }),
	StatementShowCommitTimestamp:            show("COMMIT_TIMESTAMP", func(conn Connection) spanner.NullTime { return nullTime(conn.CommitTimestamp()) }),
	StatementShowReadOnlyStaleness:          show("READ_ONLY_STALENESS", func(conn Connection) string { return parser.FormatTimestampBound(conn.ReadOnlyStaleness()) }),
	StatementShowOptimizerVersion:           show("OPTIMIZER_VERSION", Connection.OptimizerVersion),
	StatementShowOptimizerStatisticsPackage: show("OPTIMIZER_STATISTICS_PACKAGE", Connection.OptimizerStatisticsPackage),
	StatementShowRetryAbortsInternally:      show("RETRY_ABORTS_INTERNALLY", Connection.RetryAbortsInternally),
	StatementShowReturnCommitStats:          show("RETURN_COMMIT_STATS", Connection.ReturnCommitStats),
	StatementShowRPCPriority:                show("RPC_PRIORITY", func(conn Connection) spanner.NullString { return formatRPCPriority(conn.RPCPriority()) }),
	StatementShowStatementTag:               show("STATEMENT_TAG", Connection.StatementTag),
	StatementShowTransactionTag:             show("TRANSACTION_TAG", Connection.TransactionTag),

	StatementSetAutocommit:                 set(Connection.SetAutocommit),
	StatementSetReadOnly:                   set(Connection.SetReadOnly),
	StatementSetAutocommitDMLMode:          set(Connection.SetAutocommitDMLMode),
	StatementSetStatementTimeout:           setStatementTimeout,
	StatementSetReadOnlyStaleness:          set(Connection.SetReadOnlyStaleness),
	StatementSetOptimizerVersion:           set(Connection.SetOptimizerVersion),
	StatementSetOptimizerStatisticsPackage: set(Connection.SetOptimizerStatisticsPackage),
	StatementSetRetryAbortsInternally:      set(Connection.SetRetryAbortsInternally),
	StatementSetReturnCommitStats:          set(Connection.SetReturnCommitStats),
	StatementSetRPCPriority:                set(Connection.SetRPCPriority),
	StatementSetStatementTag:               set(Connection.SetStatementTag),
	StatementSetTransactionTag:             set(Connection.SetTransactionTag),
	StatementSetTransactionMode:            set(Connection.SetTransactionMode),

	StatementBegin:    call(Connection.BeginTransaction),
	StatementCommit:   call(Connection.Commit),
	StatementRollback: call(Connection.Rollback),

	StatementStartBatchDDL: callNoContext(Connection.StartBatchDDL),
	StatementStartBatchDML: callNoContext(Connection.StartBatchDML),
	StatementRunBatch:      call(Connection.RunBatch),
	StatementAbortBatch:    callNoContext(Connection.AbortBatch),
}

// Executor parses and executes statements of one dialect. It holds no state of its own.
type Executor struct {
	parser *Parser
}

func NewExecutor(p *Parser) *Executor {
	return &Executor{parser: p}
}

// Execute parses text and executes it on conn.
func (e *Executor) Execute(ctx context.Context, conn Connection, text string) (*Result, error) {
	stmt, err := e.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return stmt.Execute(ctx, conn)
}

// Execute executes s on conn. A parameter which failed to decode is returned as
// the error and conn is not called.
func (s *ParsedStatement) Execute(ctx context.Context, conn Connection) (*Result, error) {
	if s.err != nil {
		return nil, s.err
	}

	slog.Debug("execute client-side statement", "type", s.Statement.Type, "literal", s.Literal)
	return s.Statement.execute(ctx, conn, s.value)
}
