package clientstmt

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

// StatementType identifies what a client-side statement does.
// Every dialect maps its surface syntax of the same statement to the same type.
type StatementType int

const (
	StatementShowAutocommit StatementType = iota
	StatementShowReadOnly
	StatementShowAutocommitDMLMode
	StatementShowStatementTimeout
	StatementShowReadTimestamp
	StatementShowCommitTimestamp
	StatementShowReadOnlyStaleness
	StatementShowOptimizerVersion
	StatementShowOptimizerStatisticsPackage
	StatementShowRetryAbortsInternally
	StatementShowReturnCommitStats
	StatementShowRPCPriority
	StatementShowStatementTag
	StatementShowTransactionTag
	StatementSetAutocommit
	StatementSetReadOnly
	StatementSetAutocommitDMLMode
	StatementSetStatementTimeout
	StatementSetReadOnlyStaleness
	StatementSetOptimizerVersion
	StatementSetOptimizerStatisticsPackage
	StatementSetRetryAbortsInternally
	StatementSetReturnCommitStats
	StatementSetRPCPriority
	StatementSetStatementTag
	StatementSetTransactionTag
	StatementSetTransactionMode
	StatementBegin
	StatementCommit
	StatementRollback
	StatementStartBatchDDL
	StatementStartBatchDML
	StatementRunBatch
	StatementAbortBatch
)

var statementTypeNames = []string{
	StatementShowAutocommit:                 "SHOW_AUTOCOMMIT",
	StatementShowReadOnly:                   "SHOW_READONLY",
	StatementShowAutocommitDMLMode:          "SHOW_AUTOCOMMIT_DML_MODE",
	StatementShowStatementTimeout:           "SHOW_STATEMENT_TIMEOUT",
	StatementShowReadTimestamp:              "SHOW_READ_TIMESTAMP",
	StatementShowCommitTimestamp:            "SHOW_COMMIT_TIMESTAMP",
	StatementShowReadOnlyStaleness:          "SHOW_READ_ONLY_STALENESS",
	StatementShowOptimizerVersion:           "SHOW_OPTIMIZER_VERSION",
	StatementShowOptimizerStatisticsPackage: "SHOW_OPTIMIZER_STATISTICS_PACKAGE",
	StatementShowRetryAbortsInternally:      "SHOW_RETRY_ABORTS_INTERNALLY",
	StatementShowReturnCommitStats:          "SHOW_RETURN_COMMIT_STATS",
	StatementShowRPCPriority:                "SHOW_RPC_PRIORITY",
	StatementShowStatementTag:               "SHOW_STATEMENT_TAG",
	StatementShowTransactionTag:             "SHOW_TRANSACTION_TAG",
	StatementSetAutocommit:                  "SET_AUTOCOMMIT",
	StatementSetReadOnly:                    "SET_READONLY",
	StatementSetAutocommitDMLMode:           "SET_AUTOCOMMIT_DML_MODE",
	StatementSetStatementTimeout:            "SET_STATEMENT_TIMEOUT",
	StatementSetReadOnlyStaleness:           "SET_READ_ONLY_STALENESS",
	StatementSetOptimizerVersion:            "SET_OPTIMIZER_VERSION",
	StatementSetOptimizerStatisticsPackage:  "SET_OPTIMIZER_STATISTICS_PACKAGE",
	StatementSetRetryAbortsInternally:       "SET_RETRY_ABORTS_INTERNALLY",
	StatementSetReturnCommitStats:           "SET_RETURN_COMMIT_STATS",
	StatementSetRPCPriority:                 "SET_RPC_PRIORITY",
	StatementSetStatementTag:                "SET_STATEMENT_TAG",
	StatementSetTransactionTag:              "SET_TRANSACTION_TAG",
	StatementSetTransactionMode:             "SET_TRANSACTION_MODE",
	StatementBegin:                          "BEGIN",
	StatementCommit:                         "COMMIT",
	StatementRollback:                       "ROLLBACK",
	StatementStartBatchDDL:                  "START_BATCH_DDL",
	StatementStartBatchDML:                  "START_BATCH_DML",
	StatementRunBatch:                       "RUN_BATCH",
	StatementAbortBatch:                     "ABORT_BATCH",
}

func (t StatementType) String() string {
	if t < 0 || int(t) >= len(statementTypeNames) {
		return fmt.Sprintf("StatementType(%d)", int(t))
	}
	return statementTypeNames[t]
}

// ParamKind is the grammar of the parameter of a statement.
type ParamKind int

const (
	ParamBool ParamKind = iota + 1
	ParamEnum
	ParamString
	ParamDuration
	ParamTimestampBound
)

func (k ParamKind) String() string {
	switch k {
	case ParamBool:
		return "BOOL"
	case ParamEnum:
		return "ENUM"
	case ParamString:
		return "STRING"
	case ParamDuration:
		return "DURATION"
	case ParamTimestampBound:
		return "TIMESTAMP_BOUND"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Param describes the parameter of a statement.
type Param struct {
	Kind ParamKind
	// Enum is the name of the enum type for ParamEnum.
	Enum string

	decode func(literal string) (any, error)
}

// the pattern group which captures the parameter literal
const paramGroup = "value"

// ClientSideStatement is one statement of a catalog. It is immutable and shared by all parses.
type ClientSideStatement struct {
	Name     string
	Type     StatementType
	Usage    string
	Syntax   string
	Examples []string
	Pattern  *regexp.Regexp
	// Param is nil for statements without parameter.
	Param *Param

	handler handler
}

// match matches normalized text and returns the parameter literal.
func (s *ClientSideStatement) match(normalized string) (literal string, ok bool) {
	matches := s.Pattern.FindStringSubmatch(normalized)
	if matches == nil {
		return "", false
	}
	if s.Param == nil {
		return "", true
	}
	return matches[s.Pattern.SubexpIndex(paramGroup)], true
}

func (s *ClientSideStatement) decodeParam(literal string) (any, error) {
	if s.Param == nil {
		return nil, nil
	}

	value, err := s.Param.decode(literal)
	if err == nil {
		return value, nil
	}

	var enumErr *parser.EnumValueError
	if s.Param.Kind == ParamEnum && errors.As(err, &enumErr) {
		return nil, &InvalidEnumValueError{Enum: s.Param.Enum, Literal: literal, Valid: enumErr.Valid}
	}
	return nil, &MalformedParameterError{Statement: s.Name, Literal: literal, Err: err}
}

// Execute extracts the parameter from text and executes the statement on conn.
// text must match the pattern of s.
func (s *ClientSideStatement) Execute(ctx context.Context, conn Connection, text string) (*Result, error) {
	literal, ok := s.match(normalizeStatement(text))
	if !ok {
		return nil, &UnrecognizedStatementError{Text: text}
	}

	value, err := s.decodeParam(literal)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, conn, value)
}

func (s *ClientSideStatement) execute(ctx context.Context, conn Connection, value any) (*Result, error) {
	result, err := s.handler(ctx, conn, value)
	if err != nil {
		return nil, err
	}
	result.Type = s.Type
	return result, nil
}
