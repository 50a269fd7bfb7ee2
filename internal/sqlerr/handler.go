package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/qrtrack/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConvertPgError converts a raw PostgreSQL error into *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// Describe returns the parsed database error behind err, if the driver
// reported a structured one. It is meant for logging only.
func Describe(err error) *Error {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr)
	}

	return nil
}

// getEntityName derives a display name from a table name:
// "sessions" -> "Session", "nodes" -> "Node".
func getEntityName(tableName string) string {
	if tableName == "" {
		return "Resource"
	}

	entity := strings.TrimSuffix(tableName, "s")
	if entity == "" {
		entity = tableName
	}
	return cases.Title(language.English).String(strings.ReplaceAll(entity, "_", " "))
}

// IsNoRows reports whether err means a lookup found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// HandleError converts a storage error into a client-facing error.
//
//   - *errs.HTTPError: returned unchanged.
//   - no rows: 404 "<Entity> not found", the table taken from *NotFoundError.
//   - anything else: generic 500. The cause is for logs only.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if IsNoRows(err) {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(nf.Table)), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
