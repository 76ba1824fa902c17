// Package policy decides whether a generated statement may reach the database.
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/nl2sql"
)

var ErrRejected = errors.New("statement rejected by policy")

// Policy returns the statement to execute, or an error wrapping ErrRejected.
type Policy interface {
	Vet(sql string) (string, error)
	Name() string
}

func New(mode string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", config.PolicyFirstSelect:
		return FirstSelect{}, nil
	case config.PolicyReadOnly:
		return ReadOnly{}, nil
	default:
		return nil, fmt.Errorf("unsupported sql policy %q", mode)
	}
}

// FirstSelect narrows the input to its first SELECT line and otherwise passes it through.
type FirstSelect struct{}

func (FirstSelect) Vet(sql string) (string, error) {
	return nl2sql.ExtractSQL(sql), nil
}

func (FirstSelect) Name() string { return config.PolicyFirstSelect }

// ReadOnly admits a single SELECT or WITH statement free of write and DDL keywords.
type ReadOnly struct{}

var deniedKeyword = regexp.MustCompile(`(?i)\b(insert|update|delete|merge|upsert|drop|create|alter|truncate|attach|detach|copy|pragma|vacuum|grant|revoke|exec|execute|install)\b`)

func (ReadOnly) Vet(sql string) (string, error) {
	statement := strings.TrimSpace(nl2sql.ExtractSQL(sql))
	statement = strings.TrimSpace(strings.TrimRight(statement, "; \t\r\n"))
	if statement == "" {
		return "", fmt.Errorf("%w: empty statement", ErrRejected)
	}

	lower := strings.ToLower(statement)
	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return "", fmt.Errorf("%w: only SELECT statements are allowed", ErrRejected)
	}
	if strings.Contains(stripLiterals(statement), ";") {
		return "", fmt.Errorf("%w: multiple statements are not allowed", ErrRejected)
	}
	if keyword := deniedKeyword.FindString(stripLiterals(statement)); keyword != "" {
		return "", fmt.Errorf("%w: keyword %s is not allowed", ErrRejected, strings.ToUpper(keyword))
	}
	return statement, nil
}

func (ReadOnly) Name() string { return config.PolicyReadOnly }

// stripLiterals blanks out single-quoted string literals so their contents are not
// mistaken for keywords or statement separators.
func stripLiterals(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	inLiteral := false
	for _, r := range sql {
		if r == '\'' {
			inLiteral = !inLiteral
			b.WriteRune(r)
			continue
		}
		if inLiteral {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
