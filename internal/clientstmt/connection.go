package clientstmt

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"

	"github.com/apstndb/spanner-clientstmt/enums"
)

// Connection is the state holder that client-side statements read and modify.
// Synchronization is the responsibility of the implementation.
type Connection interface {
	VariableAccessor
	TransactionController
	BatchController
}

// VariableAccessor reads and writes connection variables.
type VariableAccessor interface {
	IsAutocommit() bool
	SetAutocommit(autocommit bool) error

	IsReadOnly() bool
	SetReadOnly(readOnly bool) error

	AutocommitDMLMode() enums.AutocommitDMLMode
	SetAutocommitDMLMode(mode enums.AutocommitDMLMode) error

	// HasStatementTimeout reports whether a statement timeout is set.
	HasStatementTimeout() bool
	// StatementTimeout returns the statement timeout converted to unit, truncated.
	StatementTimeout(unit time.Duration) int64
	SetStatementTimeout(value int64, unit time.Duration) error
	ClearStatementTimeout() error

	// ReadTimestamp returns the read timestamp of the last read-only transaction or query, if any.
	ReadTimestamp() (time.Time, bool)
	// CommitTimestamp returns the commit timestamp of the last read/write transaction, if any.
	CommitTimestamp() (time.Time, bool)

	ReadOnlyStaleness() spanner.TimestampBound
	SetReadOnlyStaleness(staleness spanner.TimestampBound) error

	OptimizerVersion() string
	SetOptimizerVersion(version string) error

	OptimizerStatisticsPackage() string
	SetOptimizerStatisticsPackage(pkg string) error

	RetryAbortsInternally() bool
	SetRetryAbortsInternally(retry bool) error

	ReturnCommitStats() bool
	SetReturnCommitStats(returnCommitStats bool) error

	RPCPriority() sppb.RequestOptions_Priority
	SetRPCPriority(priority sppb.RequestOptions_Priority) error

	StatementTag() string
	SetStatementTag(tag string) error

	TransactionTag() string
	SetTransactionTag(tag string) error
}

// TransactionController manages the transaction of a connection.
type TransactionController interface {
	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	SetTransactionMode(mode enums.TransactionMode) error
}

// BatchController manages DDL and DML batches.
type BatchController interface {
	StartBatchDDL() error
	StartBatchDML() error
	RunBatch(ctx context.Context) error
	AbortBatch() error
}
