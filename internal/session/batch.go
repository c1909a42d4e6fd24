package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/stmtkind"
)

// StartBatchDDL starts buffering DDL statements. DDL batches are not allowed in a transaction.
func (s *Session) StartBatchDDL() error {
	return s.withLock(func() error {
		if s.batch != nil {
			return failedPrecondition("a %v batch is already active", s.batch.mode)
		}
		if s.tx != nil {
			return failedPrecondition("cannot start a DDL batch while a transaction is active")
		}
		s.startBatchLocked(enums.BatchModeDDL)
		return nil
	})
}

// StartBatchDML starts buffering DML statements.
func (s *Session) StartBatchDML() error {
	return s.withLock(func() error {
		if s.batch != nil {
			return failedPrecondition("a %v batch is already active", s.batch.mode)
		}
		if s.readOnly || (s.tx != nil && s.tx.mode == enums.TransactionModeReadOnly) {
			return failedPrecondition("cannot start a DML batch in read-only mode")
		}
		s.startBatchLocked(enums.BatchModeDML)
		return nil
	})
}

func (s *Session) startBatchLocked(mode enums.BatchMode) {
	s.batch = &batch{mode: mode}
	s.logger.Debug("start batch", zap.Stringer("mode", mode))
}

// AddBatchStatement buffers sql in the active batch.
func (s *Session) AddBatchStatement(sql string) error {
	return s.withLock(func() error {
		if s.batch == nil {
			return failedPrecondition("no batch is active")
		}
		switch kind, err := stmtkind.DetectLexical(sql); {
		case err != nil:
			return failedPrecondition("cannot buffer the statement in a %v batch: %v", s.batch.mode, err)
		case s.batch.mode == enums.BatchModeDDL && !kind.IsDDL():
			return failedPrecondition("only DDL statements are allowed in a DDL batch")
		case s.batch.mode == enums.BatchModeDML && !kind.IsDML():
			return failedPrecondition("only DML statements are allowed in a DML batch")
		}
		s.batch.statements = append(s.batch.statements, sql)
		return nil
	})
}

// BatchStatements returns a copy of the statements buffered in the active batch.
func (s *Session) BatchStatements() []string {
	return locked(s, func() []string {
		if s.batch == nil {
			return nil
		}
		return append([]string(nil), s.batch.statements...)
	})
}

// RunBatch ends the active batch. The buffered statements are dropped as this session has no database.
func (s *Session) RunBatch(ctx context.Context) error {
	return s.withLock(func() error {
		if s.batch == nil {
			return failedPrecondition("no batch is active")
		}
		s.logger.Info("run batch", zap.Stringer("mode", s.batch.mode), zap.Strings("statements", s.batch.statements))
		s.batch = nil
		return nil
	})
}

// AbortBatch discards the active batch.
func (s *Session) AbortBatch() error {
	return s.withLock(func() error {
		if s.batch == nil {
			return failedPrecondition("no batch is active")
		}
		s.logger.Debug("abort batch", zap.Stringer("mode", s.batch.mode), zap.Int("statements", len(s.batch.statements)))
		s.batch = nil
		return nil
	})
}
