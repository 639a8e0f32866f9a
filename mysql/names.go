package mysql

import (
	"fmt"
	"strings"
	"unicode"
)

// tableName is a validated, optionally schema-qualified table.
type tableName struct {
	// name is the table as configured ("statements" or "game.statements").
	name string
	// ident is the backtick-quoted identifier used in SQL.
	ident string
}

func parseTableName(name string) (tableName, error) {
	if name == "" {
		return tableName{}, ErrTableNameRequired
	}

	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return tableName{}, fmt.Errorf("%w: %s", ErrInvalidTableName, name)
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		if part == "" || strings.IndexFunc(part, invalidIdentRune) >= 0 {
			return tableName{}, fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
		quoted[i] = "`" + part + "`"
	}

	return tableName{name: name, ident: strings.Join(quoted, ".")}, nil
}

func invalidIdentRune(r rune) bool {
	return r != '_' && r != '$' && (r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// checkNamespace validates a namespace against the VARCHAR(64) column.
func checkNamespace(namespace string) error {
	if len(namespace) > maxNamespaceLen {
		return fmt.Errorf("%w: %d bytes", ErrNamespaceTooLong, len(namespace))
	}

	return nil
}
