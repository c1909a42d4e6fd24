// Package stmtkind classifies the statements which are not client-side statements.
package stmtkind

import "fmt"

type StatementKind int

const (
	StatementKindInvalid StatementKind = iota
	StatementKindQuery
	StatementKindDDL
	StatementKindDML
)

func (k StatementKind) String() string {
	switch k {
	case StatementKindQuery:
		return "Query"
	case StatementKindDDL:
		return "DDL"
	case StatementKindDML:
		return "DML"
	case StatementKindInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("UNKNOWN(%v)", int(k))
	}
}

func (k StatementKind) IsDDL() bool {
	return k == StatementKindDDL
}

func (k StatementKind) IsDML() bool {
	return k == StatementKindDML
}
