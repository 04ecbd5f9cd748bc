package core

// error_messages.go maps run failures to operator-facing codes.
//
// Codes are grouped by pipeline stage:
//
//	CFG001 - Credentials or configuration unavailable
//	SRC001 - Source bucket is empty
//	SRC002 - Object store unreachable or access denied
//	PRS001 - Extract is malformed (column count, encoding, header)
//	DB001  - Warehouse authentication failed
//	DB002  - Insufficient privilege on the destination table
//	DB003  - Warehouse connection lost or refused
//	DB004  - Value rejected by a column type or length
//	DB005  - Other persistence failure
//	ERR000 - Unclassified
//
// Classification prefers errors.Is against the sentinels in errors.go, then
// SQLSTATE classes from *pgconn.PgError, then case-insensitive substrings.

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides operator-facing error information with guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Stable reference code
}

var (
	msgConfig = UserMessage{
		Message: "Credentials or configuration are unavailable",
		Action:  "Check SECRETS_PROVIDER and the credential bundle it points at",
		Code:    "CFG001",
	}
	msgEmptySource = UserMessage{
		Message: "The source bucket contains no objects",
		Action:  "Upload an export to the bucket or check SOURCE_BUCKET/SOURCE_PREFIX",
		Code:    "SRC001",
	}
	msgSourceAccess = UserMessage{
		Message: "The object store could not be read",
		Action:  "Check AWS credentials, region and bucket policy",
		Code:    "SRC002",
	}
	msgParse = UserMessage{
		Message: "The export is not valid comma-separated text",
		Action:  "Check the reported line for stray quotes, column count or encoding",
		Code:    "PRS001",
	}
	msgAuth = UserMessage{
		Message: "The warehouse rejected the credentials",
		Action:  "Rotate or correct the database user and password",
		Code:    "DB001",
	}
	msgPrivilege = UserMessage{
		Message: "The database user lacks privileges on the destination table",
		Action:  "Grant CREATE/INSERT on the schema to the loader user",
		Code:    "DB002",
	}
	msgConnection = UserMessage{
		Message: "The warehouse connection was refused or lost",
		Action:  "Check the cluster endpoint, security groups and the probe log line",
		Code:    "DB003",
	}
	msgValue = UserMessage{
		Message: "A value was rejected by the destination column",
		Action:  "Check the failing tweet_id in the log; the table may need reprovisioning",
		Code:    "DB004",
	}
	msgPersistence = UserMessage{
		Message: "The batch could not be persisted and was rolled back",
		Action:  "Inspect the warehouse error in the log and rerun",
		Code:    "DB005",
	}
	msgUnknown = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Check the log for the underlying error",
		Code:    "ERR000",
	}
)

// errorPattern maps a technical substring to a message. First match wins.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"password authentication failed", msgAuth},
	{"permission denied", msgPrivilege},
	{"connection refused", msgConnection},
	{"connection reset", msgConnection},
	{"no such host", msgConnection},
	{"value too long", msgValue},
	{"nosuchbucket", msgSourceAccess},
	{"accessdenied", msgSourceAccess},
}

// MapError converts an error to a UserMessage.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrConfig):
		return msgConfig
	case errors.Is(err, ErrEmptySource):
		return msgEmptySource
	case errors.Is(err, ErrParse):
		return msgParse
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "28"):
			return msgAuth
		case pgErr.Code == "42501":
			return msgPrivilege
		case strings.HasPrefix(pgErr.Code, "08"):
			return msgConnection
		case strings.HasPrefix(pgErr.Code, "22"):
			return msgValue
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}

	if errors.Is(err, ErrPersistence) {
		return msgPersistence
	}
	return msgUnknown
}

// ErrorCode returns just the reference code for err.
func ErrorCode(err error) string {
	return MapError(err).Code
}
