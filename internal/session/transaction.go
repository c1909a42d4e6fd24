package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

// readTimestampOf resolves the read timestamp of a read-only transaction beginning at now.
func readTimestampOf(d parser.DecomposedTimestampBound, now time.Time) time.Time {
	switch d.Mode {
	case parser.TimestampBoundReadTimestamp:
		return d.Timestamp
	case parser.TimestampBoundMinReadTimestamp:
		if d.Timestamp.After(now) {
			return d.Timestamp
		}
		return now
	case parser.TimestampBoundExactStaleness, parser.TimestampBoundMaxStaleness:
		return now.Add(-d.Staleness)
	default:
		return now
	}
}

func (s *Session) defaultTransactionMode() enums.TransactionMode {
	if s.readOnly {
		return enums.TransactionModeReadOnly
	}
	return enums.TransactionModeReadWrite
}

// BeginTransaction starts a transaction in the mode of the connection.
// A read-only transaction gets its read timestamp from READ_ONLY_STALENESS.
func (s *Session) BeginTransaction(ctx context.Context) error {
	return s.withLock(func() error {
		if s.tx != nil {
			return failedPrecondition("a transaction is already active")
		}
		if s.batch != nil {
			return failedPrecondition("cannot begin a transaction while a %v batch is active", s.batch.mode)
		}

		s.beginLocked(s.defaultTransactionMode(), true)
		return nil
	})
}

func (s *Session) beginLocked(mode enums.TransactionMode, explicit bool) {
	now := s.now()
	s.tx = &transaction{mode: mode, beganAt: now, explicit: explicit}
	if mode == enums.TransactionModeReadOnly {
		s.applyReadTimestampLocked(now)
	}
	s.logger.Debug("begin transaction", zap.Stringer("mode", mode), zap.Bool("explicit", explicit))
}

func (s *Session) applyReadTimestampLocked(now time.Time) {
	d, err := parser.DecomposeTimestampBound(s.readOnlyStaleness)
	if err != nil {
		s.logger.Warn("unknown read-only staleness", zap.Error(err))
		d = parser.DecomposedTimestampBound{Mode: parser.TimestampBoundStrong}
	}
	ts := readTimestampOf(d, now).UTC()
	s.readTimestamp = &ts
}

// SetTransactionMode changes the mode of the active transaction.
// With autocommit off and no transaction, it starts one in that mode.
func (s *Session) SetTransactionMode(mode enums.TransactionMode) error {
	return s.withLock(func() error {
		if s.readOnly && mode == enums.TransactionModeReadWrite {
			return failedPrecondition("cannot set a read/write transaction on a read-only connection")
		}

		switch {
		case s.tx != nil:
			if s.tx.mode == mode {
				return nil
			}
			s.tx.mode = mode
			if mode == enums.TransactionModeReadOnly {
				s.applyReadTimestampLocked(s.tx.beganAt)
			}
			s.logger.Debug("set transaction mode", zap.Stringer("mode", mode))
			return nil
		case !s.autocommit:
			s.beginLocked(mode, false)
			return nil
		default:
			return failedPrecondition("SET TRANSACTION requires an active transaction or autocommit off")
		}
	})
}

// Commit ends the active transaction. A read/write transaction records the commit timestamp.
// Without a transaction it does nothing.
func (s *Session) Commit(ctx context.Context) error {
	return s.withLock(func() error {
		if s.tx == nil {
			s.logger.Debug("commit without transaction")
			return nil
		}
		if s.batch != nil && s.batch.mode == enums.BatchModeDML {
			return failedPrecondition("cannot commit while a DML batch is active")
		}

		if s.tx.mode == enums.TransactionModeReadWrite {
			ts := s.now().UTC()
			s.commitTimestamp = &ts
		}
		s.logger.Debug("commit", zap.Stringer("mode", s.tx.mode), zap.String("transaction_tag", s.transactionTag))
		s.endTransactionLocked()
		return nil
	})
}

// Rollback discards the active transaction. Without a transaction it does nothing.
func (s *Session) Rollback(ctx context.Context) error {
	return s.withLock(func() error {
		if s.tx == nil {
			s.logger.Debug("rollback without transaction")
			return nil
		}

		s.logger.Debug("rollback", zap.Stringer("mode", s.tx.mode))
		if s.batch != nil && s.batch.mode == enums.BatchModeDML {
			s.logger.Debug("abort batch on rollback", zap.Int("statements", len(s.batch.statements)))
			s.batch = nil
		}
		s.endTransactionLocked()
		return nil
	})
}

func (s *Session) endTransactionLocked() {
	s.tx = nil
	s.transactionTag = ""
}
