// Package clientstmt parses and executes client-side statements.
//
// A client-side statement is a connection control statement which is
// interpreted by the client instead of being sent to Cloud Spanner:
//
//	SHOW VARIABLE AUTOCOMMIT
//	SET READ_ONLY_STALENESS = 'EXACT_STALENESS 10s'
//	BEGIN TRANSACTION
//
// Each dialect has its own catalog of statements. A Parser matches the text of
// a statement against the catalog of its dialect and returns a ParsedStatement,
// which calls exactly one method of a Connection when it is executed.
// Parsing never touches a Connection.
package clientstmt
