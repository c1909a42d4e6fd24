package clientstmt

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"github.com/stretchr/testify/mock"

	"github.com/apstndb/spanner-clientstmt/enums"
)

// mockConnection records every Connection call. Unexpected calls fail the test.
type mockConnection struct {
	mock.Mock
}

var _ Connection = (*mockConnection)(nil)

func (m *mockConnection) IsAutocommit() bool {
	return m.Called().Bool(0)
}

func (m *mockConnection) SetAutocommit(autocommit bool) error {
	return m.Called(autocommit).Error(0)
}

func (m *mockConnection) IsReadOnly() bool {
	return m.Called().Bool(0)
}

func (m *mockConnection) SetReadOnly(readOnly bool) error {
	return m.Called(readOnly).Error(0)
}

func (m *mockConnection) AutocommitDMLMode() enums.AutocommitDMLMode {
	return m.Called().Get(0).(enums.AutocommitDMLMode)
}

func (m *mockConnection) SetAutocommitDMLMode(mode enums.AutocommitDMLMode) error {
	return m.Called(mode).Error(0)
}

func (m *mockConnection) HasStatementTimeout() bool {
	return m.Called().Bool(0)
}

func (m *mockConnection) StatementTimeout(unit time.Duration) int64 {
	return m.Called(unit).Get(0).(int64)
}

func (m *mockConnection) SetStatementTimeout(value int64, unit time.Duration) error {
	return m.Called(value, unit).Error(0)
}

func (m *mockConnection) ClearStatementTimeout() error {
	return m.Called().Error(0)
}

func (m *mockConnection) ReadTimestamp() (time.Time, bool) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Bool(1)
}

func (m *mockConnection) CommitTimestamp() (time.Time, bool) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Bool(1)
}

func (m *mockConnection) ReadOnlyStaleness() spanner.TimestampBound {
	return m.Called().Get(0).(spanner.TimestampBound)
}

func (m *mockConnection) SetReadOnlyStaleness(staleness spanner.TimestampBound) error {
	return m.Called(staleness).Error(0)
}

func (m *mockConnection) OptimizerVersion() string {
	return m.Called().String(0)
}

func (m *mockConnection) SetOptimizerVersion(version string) error {
	return m.Called(version).Error(0)
}

func (m *mockConnection) OptimizerStatisticsPackage() string {
	return m.Called().String(0)
}

func (m *mockConnection) SetOptimizerStatisticsPackage(pkg string) error {
	return m.Called(pkg).Error(0)
}

func (m *mockConnection) RetryAbortsInternally() bool {
	return m.Called().Bool(0)
}

func (m *mockConnection) SetRetryAbortsInternally(retry bool) error {
	return m.Called(retry).Error(0)
}

func (m *mockConnection) ReturnCommitStats() bool {
	return m.Called().Bool(0)
}

func (m *mockConnection) SetReturnCommitStats(returnCommitStats bool) error {
	return m.Called(returnCommitStats).Error(0)
}

func (m *mockConnection) RPCPriority() sppb.RequestOptions_Priority {
	return m.Called().Get(0).(sppb.RequestOptions_Priority)
}

func (m *mockConnection) SetRPCPriority(priority sppb.RequestOptions_Priority) error {
	return m.Called(priority).Error(0)
}

func (m *mockConnection) StatementTag() string {
	return m.Called().String(0)
}

func (m *mockConnection) SetStatementTag(tag string) error {
	return m.Called(tag).Error(0)
}

func (m *mockConnection) TransactionTag() string {
	return m.Called().String(0)
}

func (m *mockConnection) SetTransactionTag(tag string) error {
	return m.Called(tag).Error(0)
}

func (m *mockConnection) BeginTransaction(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockConnection) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockConnection) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockConnection) SetTransactionMode(mode enums.TransactionMode) error {
	return m.Called(mode).Error(0)
}

func (m *mockConnection) StartBatchDDL() error {
	return m.Called().Error(0)
}

func (m *mockConnection) StartBatchDML() error {
	return m.Called().Error(0)
}

func (m *mockConnection) RunBatch(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockConnection) AbortBatch() error {
	return m.Called().Error(0)
}
