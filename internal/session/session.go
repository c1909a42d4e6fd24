// Package session holds connection variables and the transaction and batch state of one client connection.
// It issues no RPCs: transactions and batches only move through their states.
package session

import (
	"math"
	"sync"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

var _ clientstmt.Connection = (*Session)(nil)

type transaction struct {
	mode    enums.TransactionMode
	beganAt time.Time
	// began by BEGIN rather than implicitly by SET TRANSACTION with autocommit off
	explicit bool
}

type batch struct {
	mode       enums.BatchMode
	statements []string
}

// Session is an in-memory clientstmt.Connection. It is safe for concurrent use.
type Session struct {
	logger *zap.Logger
	now    func() time.Time

	// mu protects all fields below.
	mu sync.Mutex

	autocommit                 bool
	readOnly                   bool
	autocommitDMLMode          enums.AutocommitDMLMode
	statementTimeout           *time.Duration
	readTimestamp              *time.Time
	commitTimestamp            *time.Time
	readOnlyStaleness          spanner.TimestampBound
	optimizerVersion           string
	optimizerStatisticsPackage string
	retryAbortsInternally      bool
	returnCommitStats          bool
	rpcPriority                sppb.RequestOptions_Priority
	statementTag               string
	transactionTag             string

	tx    *transaction
	batch *batch
}

type Option func(*Session)

// WithLogger sets the logger of state transitions. The default discards logs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the clock used for read and commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session in autocommit mode with strong reads.
func New(opts ...Option) *Session {
	s := &Session{
		logger:                zap.NewNop(),
		now:                   time.Now,
		autocommit:            true,
		readOnlyStaleness:     spanner.StrongRead(),
		retryAbortsInternally: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func failedPrecondition(format string, args ...any) error {
	return spanner.ToSpannerError(status.Errorf(codes.FailedPrecondition, format, args...))
}

func invalidArgument(format string, args ...any) error {
	return spanner.ToSpannerError(status.Errorf(codes.InvalidArgument, format, args...))
}

func (s *Session) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func locked[T any](s *Session, fn func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) requireNoTransaction(variable string) error {
	if s.tx != nil {
		return failedPrecondition("cannot set %s while a transaction is active", variable)
	}
	return nil
}

func (s *Session) IsAutocommit() bool {
	return locked(s, func() bool { return s.autocommit })
}

func (s *Session) SetAutocommit(autocommit bool) error {
	return s.withLock(func() error {
		if err := s.requireNoTransaction("AUTOCOMMIT"); err != nil {
			return err
		}
		if s.batch != nil {
			return failedPrecondition("cannot set AUTOCOMMIT while a %v batch is active", s.batch.mode)
		}
		s.autocommit = autocommit
		s.logger.Debug("set autocommit", zap.Bool("autocommit", autocommit))
		return nil
	})
}

func (s *Session) IsReadOnly() bool {
	return locked(s, func() bool { return s.readOnly })
}

func (s *Session) SetReadOnly(readOnly bool) error {
	return s.withLock(func() error {
		if err := s.requireNoTransaction("READONLY"); err != nil {
			return err
		}
		if readOnly && s.batch != nil && s.batch.mode == enums.BatchModeDML {
			return failedPrecondition("cannot set READONLY while a DML batch is active")
		}
		s.readOnly = readOnly
		s.logger.Debug("set readonly", zap.Bool("readonly", readOnly))
		return nil
	})
}

func (s *Session) AutocommitDMLMode() enums.AutocommitDMLMode {
	return locked(s, func() enums.AutocommitDMLMode { return s.autocommitDMLMode })
}

func (s *Session) SetAutocommitDMLMode(mode enums.AutocommitDMLMode) error {
	return s.withLock(func() error {
		if err := s.requireNoTransaction("AUTOCOMMIT_DML_MODE"); err != nil {
			return err
		}
		if !s.autocommit {
			return failedPrecondition("AUTOCOMMIT_DML_MODE can only be set in autocommit mode")
		}
		if s.readOnly && mode == enums.AutocommitDMLModePartitionedNonAtomic {
			return failedPrecondition("cannot set AUTOCOMMIT_DML_MODE to %v on a read-only connection", mode)
		}
		s.autocommitDMLMode = mode
		s.logger.Debug("set autocommit_dml_mode", zap.Stringer("mode", mode))
		return nil
	})
}

func (s *Session) HasStatementTimeout() bool {
	return locked(s, func() bool { return s.statementTimeout != nil })
}

// StatementTimeout returns the timeout in unit, truncated, or 0 if no timeout is set.
func (s *Session) StatementTimeout(unit time.Duration) int64 {
	return locked(s, func() int64 {
		if s.statementTimeout == nil || unit <= 0 {
			return 0
		}
		return int64(*s.statementTimeout / unit)
	})
}

func (s *Session) SetStatementTimeout(value int64, unit time.Duration) error {
	if value <= 0 {
		return invalidArgument("statement timeout must be positive: %d", value)
	}
	if parser.UnitAbbreviation(unit) == "" {
		return invalidArgument("unsupported time unit: %v", unit)
	}
	if value > math.MaxInt64/int64(unit) {
		return invalidArgument("statement timeout is out of range: %d%s", value, parser.UnitAbbreviation(unit))
	}

	return s.withLock(func() error {
		d := time.Duration(value) * unit
		s.statementTimeout = &d
		s.logger.Debug("set statement_timeout", zap.Duration("timeout", d))
		return nil
	})
}

func (s *Session) ClearStatementTimeout() error {
	return s.withLock(func() error {
		s.statementTimeout = nil
		s.logger.Debug("clear statement_timeout")
		return nil
	})
}

func optionalTime(t *time.Time) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

func (s *Session) ReadTimestamp() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return optionalTime(s.readTimestamp)
}

func (s *Session) CommitTimestamp() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return optionalTime(s.commitTimestamp)
}

func (s *Session) ReadOnlyStaleness() spanner.TimestampBound {
	return locked(s, func() spanner.TimestampBound { return s.readOnlyStaleness })
}

func (s *Session) SetReadOnlyStaleness(staleness spanner.TimestampBound) error {
	decomposed, err := parser.DecomposeTimestampBound(staleness)
	if err != nil {
		return invalidArgument("%v", err)
	}

	return s.withLock(func() error {
		if err := s.requireNoTransaction("READ_ONLY_STALENESS"); err != nil {
			return err
		}
		switch decomposed.Mode {
		case parser.TimestampBoundMinReadTimestamp, parser.TimestampBoundMaxStaleness:
			if !s.autocommit {
				return failedPrecondition("%s is only allowed in autocommit mode", decomposed.Mode)
			}
		}
		s.readOnlyStaleness = staleness
		s.logger.Debug("set read_only_staleness", zap.String("staleness", parser.FormatTimestampBound(staleness)))
		return nil
	})
}

func (s *Session) OptimizerVersion() string {
	return locked(s, func() string { return s.optimizerVersion })
}

func (s *Session) SetOptimizerVersion(version string) error {
	return s.withLock(func() error {
		s.optimizerVersion = version
		return nil
	})
}

func (s *Session) OptimizerStatisticsPackage() string {
	return locked(s, func() string { return s.optimizerStatisticsPackage })
}

func (s *Session) SetOptimizerStatisticsPackage(pkg string) error {
	return s.withLock(func() error {
		s.optimizerStatisticsPackage = pkg
		return nil
	})
}

func (s *Session) RetryAbortsInternally() bool {
	return locked(s, func() bool { return s.retryAbortsInternally })
}

func (s *Session) SetRetryAbortsInternally(retry bool) error {
	return s.withLock(func() error {
		if err := s.requireNoTransaction("RETRY_ABORTS_INTERNALLY"); err != nil {
			return err
		}
		s.retryAbortsInternally = retry
		return nil
	})
}

func (s *Session) ReturnCommitStats() bool {
	return locked(s, func() bool { return s.returnCommitStats })
}

func (s *Session) SetReturnCommitStats(returnCommitStats bool) error {
	return s.withLock(func() error {
		s.returnCommitStats = returnCommitStats
		return nil
	})
}

func (s *Session) RPCPriority() sppb.RequestOptions_Priority {
	return locked(s, func() sppb.RequestOptions_Priority { return s.rpcPriority })
}

func (s *Session) SetRPCPriority(priority sppb.RequestOptions_Priority) error {
	return s.withLock(func() error {
		s.rpcPriority = priority
		s.logger.Debug("set rpc_priority", zap.Stringer("priority", priority))
		return nil
	})
}

func (s *Session) StatementTag() string {
	return locked(s, func() string { return s.statementTag })
}

func (s *Session) SetStatementTag(tag string) error {
	return s.withLock(func() error {
		if s.batch != nil {
			return failedPrecondition("cannot set STATEMENT_TAG while a %v batch is active", s.batch.mode)
		}
		s.statementTag = tag
		return nil
	})
}

func (s *Session) TransactionTag() string {
	return locked(s, func() string { return s.transactionTag })
}

func (s *Session) SetTransactionTag(tag string) error {
	return s.withLock(func() error {
		if s.tx != nil && s.tx.mode == enums.TransactionModeReadOnly {
			return failedPrecondition("cannot set TRANSACTION_TAG in a read-only transaction")
		}
		s.transactionTag = tag
		return nil
	})
}

// InTransaction reports whether a transaction is active.
func (s *Session) InTransaction() bool {
	return locked(s, func() bool { return s.tx != nil })
}

// TransactionMode returns the mode of the active transaction.
func (s *Session) TransactionMode() (enums.TransactionMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return 0, false
	}
	return s.tx.mode, true
}

// BatchMode returns the kind of the active batch, or enums.BatchModeNone.
func (s *Session) BatchMode() enums.BatchMode {
	return locked(s, func() enums.BatchMode {
		if s.batch == nil {
			return enums.BatchModeNone
		}
		return s.batch.mode
	})
}
