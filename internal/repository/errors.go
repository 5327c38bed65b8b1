// Package repository implements the data access layer over MySQL. Domain
// failure modes (missing rows, uniqueness conflicts) are converted into
// tagged apperr values here so no other layer ever inspects driver errors;
// unexpected database errors pass through raw and surface as 500s at the
// outer boundary.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/biskaken/garage-api/internal/apperr"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoParentRow     = 1452
)

// isDuplicate reports whether err is a MySQL unique-key violation. The
// driver error type is checked directly, never its message text.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isReferenced reports whether a delete was blocked by a RESTRICT foreign key.
func isReferenced(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlRowIsReferenced
}

// isMissingParent reports whether an insert named a parent row that does not
// exist (foreign key failure on the child side).
func isMissingParent(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoParentRow
}

func notFound(what string) *apperr.Error {
	return apperr.New(apperr.NotFound, what+" not found")
}

func conflict(msg string) *apperr.Error {
	return apperr.New(apperr.Conflict, msg)
}
