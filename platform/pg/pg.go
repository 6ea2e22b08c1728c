package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// TimeFormat can be used to extract and store time in a reproducible way.
const TimeFormat = "2006-01-02 15:04:05.000000 UTC"

// URLTest is the connection string expected by store integration tests.
const URLTest = "postgres://%s@127.0.0.1:5432/activities_test?sslmode=disable&connect_timeout=5"

const (
	fmtClause = "\nAND "
	fmtWHERE  = "WHERE\n%s"
)

// Errors returned as equivalents to the Postgres error codes.
var (
	ErrNotUnique        = errors.New("not unique")
	ErrRelationNotFound = errors.New("relation not found")
)

// To ensure idempotence we want to create the index only if it doesn't
// exist, which Postgres doesn't support natively for all versions we run.
// We fall back to a conditional create taken from:
// http://dba.stackexchange.com/a/35626.
const guardIndex = `DO $$
		BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_indexes WHERE schemaname = '%s' AND indexname = '%s'
		) THEN
		%s;
		END IF;
		END$$;`

// ClausesToWhere transforms a list of SQL clauses into a WHERE statement.
func ClausesToWhere(clauses ...string) string {
	return fmt.Sprintf(fmtWHERE, strings.Join(clauses, fmtClause))
}

// GuardIndex wraps an index creation query with a condition to prevent
// conflicts.
func GuardIndex(namespace, index, query string) string {
	return fmt.Sprintf(
		guardIndex,
		namespace,
		index,
		fmt.Sprintf(query, index, namespace),
	)
}

// IsNotUnique indicates if err is ErrNotUnique.
func IsNotUnique(err error) bool {
	return err == ErrNotUnique
}

// IsRelationNotFound indicates if err is ErrRelationNotFound.
func IsRelationNotFound(err error) bool {
	return err == ErrRelationNotFound
}

// WrapError translates known Postgres error codes into package errors,
// otherwise returns the original error.
func WrapError(err error) error {
	if err, ok := err.(*pq.Error); ok {
		switch err.Code {
		case "23505":
			return ErrNotUnique
		case "42P01":
			return ErrRelationNotFound
		}
	}

	return err
}
