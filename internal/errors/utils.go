package errors

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase = "database"
	CategoryNetwork  = "network"
	CategoryNotFound = "not_found"
	CategoryTimeout  = "timeout"
	CategoryUnknown  = "unknown"
)

type classifyRule struct {
	category  string
	sanitized string
	match     func(error) bool
}

// checked in order, first match wins. typed checks come before message sniffing
var classifyRules = []classifyRule{
	{CategoryDatabase, "database operation failed", isPgError},
	{CategoryNotFound, "resource not found", is(pgx.ErrNoRows)},
	{CategoryTimeout, "request timed out", is(context.DeadlineExceeded)},
	{CategoryTimeout, "request canceled", is(context.Canceled)},
	{CategoryNetwork, "connection error occurred", isNetError},
	{CategoryTimeout, "request timed out", mentions("timeout", "deadline")},
	{CategoryNetwork, "connection error occurred", mentions("connection", "dial", "network", "redis", "kafka")},
	{CategoryDatabase, "database operation failed", mentions("database", "postgres", "pgx", "sql")},
}

// returns the category of err and the message shown to clients in production
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	for _, rule := range classifyRules {
		if rule.match(err) {
			return ErrorInfo{rule.category, rule.sanitized}
		}
	}

	return ErrorInfo{CategoryUnknown, "an error occurred"}
}

// raw error text outside production, a generic message inside it
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}

	if os.Getenv("ENVIRONMENT") != "production" {
		return err.Error()
	}

	return classifyError(err).sanitized
}

func is(target error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

func isPgError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

func isNetError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func mentions(words ...string) func(error) bool {
	return func(err error) bool {
		msg := strings.ToLower(err.Error())
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}
