package enums

import (
	"fmt"
	"strings"
)

// AutocommitDMLMode represents the DML autocommit behavior
type AutocommitDMLMode int

const (
	AutocommitDMLModeTransactional AutocommitDMLMode = iota
	AutocommitDMLModePartitionedNonAtomic
)

var autocommitDMLModeNames = []string{
	AutocommitDMLModeTransactional:        "TRANSACTIONAL",
	AutocommitDMLModePartitionedNonAtomic: "PARTITIONED_NON_ATOMIC",
}

func (m AutocommitDMLMode) String() string {
	if m < 0 || int(m) >= len(autocommitDMLModeNames) {
		return fmt.Sprintf("AutocommitDMLMode(%d)", int(m))
	}
	return autocommitDMLModeNames[m]
}

// AutocommitDMLModeValues returns all declared values in declaration order.
func AutocommitDMLModeValues() []AutocommitDMLMode {
	return []AutocommitDMLMode{AutocommitDMLModeTransactional, AutocommitDMLModePartitionedNonAtomic}
}

// AutocommitDMLModeString looks up a mode by its name, ignoring case.
func AutocommitDMLModeString(s string) (AutocommitDMLMode, error) {
	for _, m := range AutocommitDMLModeValues() {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q does not belong to AutocommitDMLMode values", s)
}

// TransactionMode is the kind of transaction started by BEGIN or selected by SET TRANSACTION.
type TransactionMode int

const (
	TransactionModeReadWrite TransactionMode = iota
	TransactionModeReadOnly
)

func (m TransactionMode) String() string {
	switch m {
	case TransactionModeReadWrite:
		return "READ_WRITE"
	case TransactionModeReadOnly:
		return "READ_ONLY"
	default:
		return fmt.Sprintf("TransactionMode(%d)", int(m))
	}
}

// StatementString returns the form used in SET TRANSACTION.
func (m TransactionMode) StatementString() string {
	return strings.ReplaceAll(m.String(), "_", " ")
}

// TransactionModeValues returns all declared values in declaration order.
func TransactionModeValues() []TransactionMode {
	return []TransactionMode{TransactionModeReadWrite, TransactionModeReadOnly}
}

// TransactionModeString looks up a mode by name. Words may be separated by
// whitespace or an underscore, so "read only", "READ_ONLY" and "Read  Only" are all accepted.
func TransactionModeString(s string) (TransactionMode, error) {
	normalized := strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), "_")
	for _, m := range TransactionModeValues() {
		if strings.EqualFold(m.String(), normalized) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q does not belong to TransactionMode values", s)
}

// BatchMode represents the kind of batch active on a connection
type BatchMode int

const (
	BatchModeNone BatchMode = iota
	BatchModeDDL
	BatchModeDML
)

func (m BatchMode) String() string {
	switch m {
	case BatchModeNone:
		return "NONE"
	case BatchModeDDL:
		return "DDL"
	case BatchModeDML:
		return "DML"
	default:
		return fmt.Sprintf("BatchMode(%d)", int(m))
	}
}

// DisplayMode represents different output display formats
type DisplayMode int

const (
	DisplayModeUnspecified DisplayMode = iota
	DisplayModeTable
	DisplayModeVertical
	DisplayModeTab
	DisplayModeJSON
)

var displayModeNames = []string{
	DisplayModeUnspecified: "UNSPECIFIED",
	DisplayModeTable:       "TABLE",
	DisplayModeVertical:    "VERTICAL",
	DisplayModeTab:         "TAB",
	DisplayModeJSON:        "JSON",
}

func (m DisplayMode) String() string {
	if m < 0 || int(m) >= len(displayModeNames) {
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
	return displayModeNames[m]
}

// DisplayModeString looks up a display mode by its name, ignoring case. UNSPECIFIED is not accepted.
func DisplayModeString(s string) (DisplayMode, error) {
	for i, name := range displayModeNames {
		if m := DisplayMode(i); m != DisplayModeUnspecified && strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q does not belong to DisplayMode values", s)
}
