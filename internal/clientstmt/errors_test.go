package clientstmt

import (
	"fmt"
	"testing"

	"cloud.google.com/go/spanner"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrors_GRPCStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&UnrecognizedStatementError{Text: "select 1"}, codes.InvalidArgument},
		{&MalformedParameterError{Statement: "SET_AUTOCOMMIT", Literal: "1", Err: fmt.Errorf("expected boolean literal")}, codes.InvalidArgument},
		{&InvalidEnumValueError{Enum: "RPCPriority", Literal: "'URGENT'", Valid: []string{"HIGH", "LOW"}}, codes.InvalidArgument},
		{&CatalogError{Dialect: databasepb.DatabaseDialect_POSTGRESQL, Statement: "COMMIT", Reason: "no examples"}, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(tt.err), tt.err.Error())
		assert.Equal(t, tt.want, spanner.ErrCode(tt.err), tt.err.Error())

		wrapped := fmt.Errorf("execute: %w", tt.err)
		assert.Equal(t, tt.want, status.Code(wrapped))
	}
}

func TestErrors_Message(t *testing.T) {
	t.Parallel()
	assert.EqualError(t,
		&InvalidEnumValueError{Enum: "AutocommitDMLMode", Literal: "'FOO'", Valid: []string{"TRANSACTIONAL", "PARTITIONED_NON_ATOMIC"}},
		"invalid AutocommitDMLMode value 'FOO', must be one of: TRANSACTIONAL, PARTITIONED_NON_ATOMIC")
	assert.EqualError(t, &UnrecognizedStatementError{Text: "select 1"}, `unrecognized client-side statement: "select 1"`)
	assert.EqualError(t,
		&CatalogError{Dialect: databasepb.DatabaseDialect_POSTGRESQL, Statement: "COMMIT", Reason: "no examples"},
		"invalid POSTGRESQL catalog: COMMIT: no examples")
}
