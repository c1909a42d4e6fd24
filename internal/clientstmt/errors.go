package clientstmt

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnrecognizedStatementError is returned when no statement of the catalog matches the text.
type UnrecognizedStatementError struct {
	Text string
}

func (e *UnrecognizedStatementError) Error() string {
	return fmt.Sprintf("unrecognized client-side statement: %q", e.Text)
}

func (e *UnrecognizedStatementError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// MalformedParameterError is returned when a statement matched but its parameter literal is invalid.
type MalformedParameterError struct {
	Statement string
	Literal   string
	Err       error
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s for %s: %v", e.Literal, e.Statement, e.Err)
}

func (e *MalformedParameterError) Unwrap() error {
	return e.Err
}

func (e *MalformedParameterError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// InvalidEnumValueError is returned when a literal is not a member of the enum the statement expects.
type InvalidEnumValueError struct {
	Enum    string
	Literal string
	Valid   []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("invalid %s value %s, must be one of: %s", e.Enum, e.Literal, strings.Join(e.Valid, ", "))
}

func (e *InvalidEnumValueError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// CatalogError reports a broken statement catalog.
// It is a programming error and is raised as a panic when the parser of the dialect is first used.
type CatalogError struct {
	Dialect   databasepb.DatabaseDialect
	Statement string
	Reason    string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("invalid %v catalog: %s: %s", e.Dialect, e.Statement, e.Reason)
}

func (e *CatalogError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Error())
}
