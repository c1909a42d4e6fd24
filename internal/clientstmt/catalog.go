package clientstmt

import (
	"fmt"
	"regexp"
	"strings"

	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/samber/lo"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

type statementDef struct {
	typ      StatementType
	usage    string
	syntax   string
	pattern  string
	examples []string
	param    *paramDef
}

type paramDef struct {
	kind ParamKind
	enum string

	googleSQLSyntax string
	// empty means the same as googleSQLSyntax
	postgreSQLSyntax string

	decoder func(dialect databasepb.DatabaseDialect) func(literal string) (any, error)
}

func (p *paramDef) syntax(dialect databasepb.DatabaseDialect) string {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL && p.postgreSQLSyntax != "" {
		return p.postgreSQLSyntax
	}
	return p.googleSQLSyntax
}

func decodeWith[T any](p *parser.DialectParser[T]) func(databasepb.DatabaseDialect) func(string) (any, error) {
	return func(dialect databasepb.DatabaseDialect) func(string) (any, error) {
		dp := p.For(dialect)
		return func(literal string) (any, error) {
			v, err := dp.ParseAndValidate(literal)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
}

var transactionModeParser = &parser.BaseParser[enums.TransactionMode]{
	ParseFunc: func(s string) (enums.TransactionMode, error) {
		mode, err := enums.TransactionModeString(s)
		if err != nil {
			valid := lo.Map(enums.TransactionModeValues(), func(m enums.TransactionMode, _ int) string { return m.StatementString() })
			return 0, &parser.EnumValueError{Value: s, Valid: valid}
		}
		return mode, nil
	},
}

var rpcPriorities = parser.NewEnumParser(map[string]sppb.RequestOptions_Priority{
	"HIGH":   sppb.RequestOptions_PRIORITY_HIGH,
	"MEDIUM": sppb.RequestOptions_PRIORITY_MEDIUM,
	"LOW":    sppb.RequestOptions_PRIORITY_LOW,
	"NULL":   sppb.RequestOptions_PRIORITY_UNSPECIFIED,
})

var (
	boolParam = &paramDef{
		kind:             ParamBool,
		googleSQLSyntax:  "{TRUE|FALSE}",
		postgreSQLSyntax: "{TRUE|FALSE|ON|OFF|YES|NO|T|F|1|0}",
		decoder:          decodeWith(parser.BoolParser),
	}
	stringParam = &paramDef{
		kind:            ParamString,
		googleSQLSyntax: "'<string>'",
		decoder:         decodeWith(parser.StringParser),
	}
	statementTimeoutParam = &paramDef{
		kind:             ParamDuration,
		googleSQLSyntax:  "{'<int64>{s|ms|us|ns}'|NULL}",
		postgreSQLSyntax: "{'<int64>{s|ms|us|ns}'|<milliseconds>|NULL|DEFAULT}",
		decoder:          decodeWith(parser.StatementTimeoutParser),
	}
	readOnlyStalenessParam = &paramDef{
		kind:            ParamTimestampBound,
		googleSQLSyntax: "'{STRONG|READ_TIMESTAMP <timestamp>|MIN_READ_TIMESTAMP <timestamp>|EXACT_STALENESS <duration>|MAX_STALENESS <duration>}'",
		decoder:         decodeWith(parser.TimestampBoundParser),
	}
	autocommitDMLModeParam = &paramDef{
		kind:            ParamEnum,
		enum:            "AutocommitDMLMode",
		googleSQLSyntax: "'{TRANSACTIONAL|PARTITIONED_NON_ATOMIC}'",
		decoder:         decodeWith(parser.NewDialectEnumParser(parser.NewEnumParserFromValues(enums.AutocommitDMLModeValues()))),
	}
	rpcPriorityParam = &paramDef{
		kind:            ParamEnum,
		enum:            "RPCPriority",
		googleSQLSyntax: "'{HIGH|MEDIUM|LOW|NULL}'",
		decoder:         decodeWith(parser.NewDialectEnumParser(rpcPriorities)),
	}
	transactionModeParam = &paramDef{
		kind:            ParamEnum,
		enum:            "TransactionMode",
		googleSQLSyntax: "{READ ONLY|READ WRITE}",
		decoder:         decodeWith(parser.NewDialectParser[enums.TransactionMode](transactionModeParser, transactionModeParser)),
	}
)

// variableDef generates the SHOW and SET statements of one connection variable.
type variableDef struct {
	name string
	// PostgreSQL accepts an optional "spanner." prefix on Spanner specific variables.
	spannerScoped bool
	show, set     StatementType
	usage         string
	// nil for read-only variables
	param *paramDef
	// example values of the SET statement
	googleSQLValues, postgreSQLValues []string
}

var variables = []variableDef{
	{
		name: "autocommit", show: StatementShowAutocommit, set: StatementSetAutocommit,
		usage: "autocommit mode", param: boolParam,
		googleSQLValues: []string{"true", "FALSE"}, postgreSQLValues: []string{"on", "false", "'off'"},
	},
	{
		name: "readonly", spannerScoped: true, show: StatementShowReadOnly, set: StatementSetReadOnly,
		usage: "read-only mode", param: boolParam,
		googleSQLValues: []string{"false", "TRUE"}, postgreSQLValues: []string{"true", "off", "1"},
	},
	{
		name: "autocommit_dml_mode", spannerScoped: true, show: StatementShowAutocommitDMLMode, set: StatementSetAutocommitDMLMode,
		usage: "how DML statements are executed in autocommit mode", param: autocommitDMLModeParam,
		googleSQLValues:  []string{"'PARTITIONED_NON_ATOMIC'", "'transactional'"},
		postgreSQLValues: []string{"'PARTITIONED_NON_ATOMIC'", "transactional"},
	},
	{
		name: "statement_timeout", show: StatementShowStatementTimeout, set: StatementSetStatementTimeout,
		usage: "statement timeout", param: statementTimeoutParam,
		googleSQLValues: []string{"'100ms'", "null", "'10s'"}, postgreSQLValues: []string{"'100ms'", "2000", "default"},
	},
	{
		name: "read_timestamp", spannerScoped: true, show: StatementShowReadTimestamp,
		usage: "read timestamp of the last read-only transaction or query",
	},
	{
		name: "commit_timestamp", spannerScoped: true, show: StatementShowCommitTimestamp,
		usage: "commit timestamp of the last read/write transaction",
	},
	{
		name: "read_only_staleness", spannerScoped: true, show: StatementShowReadOnlyStaleness, set: StatementSetReadOnlyStaleness,
		usage: "staleness of read-only transactions and queries", param: readOnlyStalenessParam,
		googleSQLValues: []string{
			"'STRONG'",
			"'exact_staleness 10s'",
			"'read_timestamp 2024-08-01T12:00:00.123456Z'",
			"'min_read_timestamp 2024-08-01T21:00:00+09:00'",
			"'max_staleness 500ms'",
		},
		postgreSQLValues: []string{"'strong'", "'MAX_STALENESS 15s'", "'read_timestamp 2024-08-01T12:00:00Z'"},
	},
	{
		name: "optimizer_version", spannerScoped: true, show: StatementShowOptimizerVersion, set: StatementSetOptimizerVersion,
		usage: "query optimizer version", param: stringParam,
		googleSQLValues: []string{"'1'", "'LATEST'", "''"}, postgreSQLValues: []string{"'7'", "''"},
	},
	{
		name: "optimizer_statistics_package", spannerScoped: true, show: StatementShowOptimizerStatisticsPackage, set: StatementSetOptimizerStatisticsPackage,
		usage: "query optimizer statistics package", param: stringParam,
		googleSQLValues: []string{"'auto_20191128_14_47_22UTC'", "''"}, postgreSQLValues: []string{"'auto_20191128_14_47_22UTC'", "''"},
	},
	{
		name: "retry_aborts_internally", spannerScoped: true, show: StatementShowRetryAbortsInternally, set: StatementSetRetryAbortsInternally,
		usage: "whether aborted transactions are retried", param: boolParam,
		googleSQLValues: []string{"true", "false"}, postgreSQLValues: []string{"on", "no"},
	},
	{
		name: "return_commit_stats", spannerScoped: true, show: StatementShowReturnCommitStats, set: StatementSetReturnCommitStats,
		usage: "whether commit statistics are returned", param: boolParam,
		googleSQLValues: []string{"true", "false"}, postgreSQLValues: []string{"yes", "f"},
	},
	{
		name: "rpc_priority", spannerScoped: true, show: StatementShowRPCPriority, set: StatementSetRPCPriority,
		usage: "priority of requests", param: rpcPriorityParam,
		googleSQLValues: []string{"'HIGH'", "'null'", "low"}, postgreSQLValues: []string{"'MEDIUM'", "'NULL'"},
	},
	{
		name: "statement_tag", spannerScoped: true, show: StatementShowStatementTag, set: StatementSetStatementTag,
		usage: "request tag of the next statement", param: stringParam,
		googleSQLValues: []string{"'app=cart,action=list'", "''"}, postgreSQLValues: []string{"'app=cart'", "''"},
	},
	{
		name: "transaction_tag", spannerScoped: true, show: StatementShowTransactionTag, set: StatementSetTransactionTag,
		usage: "transaction tag of the next read/write transaction", param: stringParam,
		googleSQLValues: []string{"'app=cart,action=checkout'", "''"}, postgreSQLValues: []string{"'app=cart'", "''"},
	},
}

// namePattern and nameSyntax return the variable name as written in dialect.
func (v *variableDef) namePattern(dialect databasepb.DatabaseDialect) string {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL && v.spannerScoped {
		return `(?:spanner\.)?` + regexp.QuoteMeta(v.name)
	}
	return regexp.QuoteMeta(v.name)
}

func (v *variableDef) nameSyntax(dialect databasepb.DatabaseDialect) string {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL && v.spannerScoped {
		return "[SPANNER.]" + strings.ToUpper(v.name)
	}
	return strings.ToUpper(v.name)
}

func (v *variableDef) showDef(dialect databasepb.DatabaseDialect) statementDef {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL {
		examples := []string{"show " + v.name, "show variable " + v.name}
		if v.spannerScoped {
			examples = append(examples, "SHOW SPANNER."+strings.ToUpper(v.name), "show variable spanner."+v.name)
		}
		return statementDef{
			typ:      v.show,
			usage:    "Show " + v.usage,
			syntax:   "SHOW [VARIABLE] " + v.nameSyntax(dialect),
			pattern:  `(?is)^show\s+(?:variable\s+)?` + v.namePattern(dialect) + `$`,
			examples: examples,
		}
	}

	return statementDef{
		typ:      v.show,
		usage:    "Show " + v.usage,
		syntax:   "SHOW VARIABLE " + v.nameSyntax(dialect),
		pattern:  `(?is)^show\s+variable\s+` + v.namePattern(dialect) + `$`,
		examples: []string{"show variable " + v.name, "SHOW VARIABLE " + strings.ToUpper(v.name)},
	}
}

func (v *variableDef) setDef(dialect databasepb.DatabaseDialect) statementDef {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL {
		examples := lo.Map(v.postgreSQLValues, func(value string, i int) string {
			if i%2 == 0 {
				return fmt.Sprintf("set %s = %s", v.name, value)
			}
			return fmt.Sprintf("set %s to %s", v.name, value)
		})
		if v.spannerScoped {
			examples = append(examples, fmt.Sprintf("SET SPANNER.%s TO %s", strings.ToUpper(v.name), v.postgreSQLValues[0]))
		}
		return statementDef{
			typ:      v.set,
			usage:    "Set " + v.usage,
			syntax:   fmt.Sprintf("SET %s {=|TO} %s", v.nameSyntax(dialect), v.param.syntax(dialect)),
			pattern:  `(?is)^set\s+` + v.namePattern(dialect) + `(?:\s*=\s*|\s+to\s+)(?P<value>.+)$`,
			examples: examples,
			param:    v.param,
		}
	}

	examples := lo.Map(v.googleSQLValues, func(value string, i int) string {
		if i%2 == 0 {
			return fmt.Sprintf("set %s = %s", v.name, value)
		}
		return fmt.Sprintf("SET %s=%s", strings.ToUpper(v.name), value)
	})
	return statementDef{
		typ:      v.set,
		usage:    "Set " + v.usage,
		syntax:   fmt.Sprintf("SET %s = %s", v.nameSyntax(dialect), v.param.syntax(dialect)),
		pattern:  `(?is)^set\s+` + v.namePattern(dialect) + `\s*=\s*(?P<value>.+)$`,
		examples: examples,
		param:    v.param,
	}
}

var setTransactionDef = statementDef{
	typ:      StatementSetTransactionMode,
	usage:    "Set the mode of the current transaction",
	syntax:   "SET TRANSACTION {READ ONLY|READ WRITE}",
	pattern:  `(?is)^set\s+transaction\s+(?P<value>.+)$`,
	examples: []string{"set transaction read only", "SET TRANSACTION READ WRITE", "set transaction read_only", "set transaction read_write"},
	param:    transactionModeParam,
}

var batchDefs = []statementDef{
	{
		typ:      StatementStartBatchDDL,
		usage:    "Start a batch of DDL statements",
		syntax:   "START BATCH DDL",
		pattern:  `(?is)^start\s+batch\s+ddl$`,
		examples: []string{"start batch ddl", "START BATCH DDL"},
	},
	{
		typ:      StatementStartBatchDML,
		usage:    "Start a batch of DML statements",
		syntax:   "START BATCH DML",
		pattern:  `(?is)^start\s+batch\s+dml$`,
		examples: []string{"start batch dml", "START BATCH DML"},
	},
	{
		typ:      StatementRunBatch,
		usage:    "Run the current batch",
		syntax:   "RUN BATCH",
		pattern:  `(?is)^run\s+batch$`,
		examples: []string{"run batch", "RUN BATCH"},
	},
	{
		typ:      StatementAbortBatch,
		usage:    "Abort the current batch",
		syntax:   "ABORT BATCH",
		pattern:  `(?is)^abort\s+batch$`,
		examples: []string{"abort batch", "ABORT BATCH"},
	},
}

var googleSQLTransactionDefs = []statementDef{
	setTransactionDef,
	{
		typ:      StatementBegin,
		usage:    "Start a transaction",
		syntax:   "{BEGIN|START} [TRANSACTION]",
		pattern:  `(?is)^(?:begin|start)(?:\s+transaction)?$`,
		examples: []string{"begin", "begin transaction", "start", "START TRANSACTION"},
	},
	{
		typ:      StatementCommit,
		usage:    "Commit the current transaction",
		syntax:   "COMMIT [TRANSACTION]",
		pattern:  `(?is)^commit(?:\s+transaction)?$`,
		examples: []string{"commit", "COMMIT TRANSACTION"},
	},
	{
		typ:      StatementRollback,
		usage:    "Roll back the current transaction",
		syntax:   "ROLLBACK [TRANSACTION]",
		pattern:  `(?is)^rollback(?:\s+transaction)?$`,
		examples: []string{"rollback", "ROLLBACK TRANSACTION"},
	},
}

var postgreSQLTransactionDefs = []statementDef{
	setTransactionDef,
	{
		typ:      StatementBegin,
		usage:    "Start a transaction",
		syntax:   "{BEGIN|START} [TRANSACTION|WORK]",
		pattern:  `(?is)^(?:begin|start)(?:\s+(?:transaction|work))?$`,
		examples: []string{"begin", "begin transaction", "BEGIN WORK", "start", "start transaction", "START WORK"},
	},
	{
		typ:      StatementCommit,
		usage:    "Commit the current transaction",
		syntax:   "{COMMIT|END} [TRANSACTION|WORK]",
		pattern:  `(?is)^(?:commit|end)(?:\s+(?:transaction|work))?$`,
		examples: []string{"commit", "commit transaction", "COMMIT WORK", "end", "end transaction", "END WORK"},
	},
	{
		typ:      StatementRollback,
		usage:    "Roll back the current transaction",
		syntax:   "{ROLLBACK|ABORT} [TRANSACTION|WORK]",
		pattern:  `(?is)^(?:rollback|abort)(?:\s+(?:transaction|work))?$`,
		examples: []string{"rollback", "rollback transaction", "ROLLBACK WORK", "abort", "abort transaction", "ABORT WORK"},
	},
}

// statementDefs lists the statements of dialect in matching order.
func statementDefs(dialect databasepb.DatabaseDialect) []statementDef {
	var defs []statementDef
	for _, v := range variables {
		defs = append(defs, v.showDef(dialect))
	}
	for _, v := range variables {
		if v.param != nil {
			defs = append(defs, v.setDef(dialect))
		}
	}

	if dialect == databasepb.DatabaseDialect_POSTGRESQL {
		defs = append(defs, postgreSQLTransactionDefs...)
	} else {
		defs = append(defs, googleSQLTransactionDefs...)
	}
	return append(defs, batchDefs...)
}

// newCatalog compiles defs into the statements of dialect.
func newCatalog(dialect databasepb.DatabaseDialect, defs []statementDef) ([]*ClientSideStatement, error) {
	statements := make([]*ClientSideStatement, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		name := def.typ.String()
		catalogErr := func(format string, args ...any) error {
			return &CatalogError{Dialect: dialect, Statement: name, Reason: fmt.Sprintf(format, args...)}
		}

		if seen[name] {
			return nil, catalogErr("duplicate statement name")
		}
		seen[name] = true

		pattern, err := regexp.Compile(def.pattern)
		if err != nil {
			return nil, catalogErr("invalid pattern: %v", err)
		}
		if len(def.examples) == 0 {
			return nil, catalogErr("no examples")
		}
		h, ok := handlers[def.typ]
		if !ok {
			return nil, catalogErr("no handler")
		}
		if hasGroup := pattern.SubexpIndex(paramGroup) >= 0; hasGroup != (def.param != nil) {
			return nil, catalogErr("pattern %s must capture %q exactly when the statement has a parameter", def.pattern, paramGroup)
		}

		stmt := &ClientSideStatement{
			Name:     name,
			Type:     def.typ,
			Usage:    def.usage,
			Syntax:   def.syntax,
			Examples: def.examples,
			Pattern:  pattern,
			handler:  h,
		}
		if def.param != nil {
			stmt.Param = &Param{
				Kind:   def.param.kind,
				Enum:   def.param.enum,
				decode: def.param.decoder(dialect),
			}
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}
