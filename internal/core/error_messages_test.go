package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "config sentinel",
			err:         fmt.Errorf("%w: DB_HOST missing", ErrConfig),
			wantCode:    "CFG001",
			wantMessage: "Credentials or configuration are unavailable",
		},
		{
			name:        "empty source sentinel",
			err:         fmt.Errorf("bucket tweets: %w", ErrEmptySource),
			wantCode:    "SRC001",
			wantMessage: "The source bucket contains no objects",
		},
		{
			name:        "parse error",
			err:         fmt.Errorf("read k: %w", &ParseError{Line: 4, Reason: "wrong number of columns"}),
			wantCode:    "PRS001",
			wantMessage: "The export is not valid comma-separated text",
		},
		{
			name:        "auth sqlstate",
			err:         fmt.Errorf("connect: %w", &pgconn.PgError{Code: "28P01"}),
			wantCode:    "DB001",
			wantMessage: "The warehouse rejected the credentials",
		},
		{
			name:        "privilege sqlstate",
			err:         fmt.Errorf("%w: %w", ErrPersistence, &pgconn.PgError{Code: "42501"}),
			wantCode:    "DB002",
			wantMessage: "The database user lacks privileges on the destination table",
		},
		{
			name:        "value sqlstate beats persistence sentinel",
			err:         fmt.Errorf("%w: tweet_id 7: %w", ErrPersistence, &pgconn.PgError{Code: "22001"}),
			wantCode:    "DB004",
			wantMessage: "A value was rejected by the destination column",
		},
		{
			name:        "connection refused by pattern",
			err:         errors.New("dial tcp 10.0.0.1:5439: connect: connection refused"),
			wantCode:    "DB003",
			wantMessage: "The warehouse connection was refused or lost",
		},
		{
			name:        "bucket access by pattern",
			err:         errors.New("operation error S3: ListObjectsV2, api error AccessDenied"),
			wantCode:    "SRC002",
			wantMessage: "The object store could not be read",
		},
		{
			name:        "other persistence failure",
			err:         fmt.Errorf("%w: commit: tx closed", ErrPersistence),
			wantCode:    "DB005",
			wantMessage: "The batch could not be persisted and was rolled back",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("PASSWORD AUTHENTICATION FAILED for user loader"),
			wantCode:    "DB001",
			wantMessage: "The warehouse rejected the credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(ErrEmptySource); got != "SRC001" {
		t.Errorf("ErrorCode() = %q, want SRC001", got)
	}
	if got := ErrorCode(nil); got != "" {
		t.Errorf("ErrorCode(nil) = %q, want empty", got)
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("bare quote")
	err := &ParseError{Line: 12, Column: ColText, Reason: "malformed row", Err: cause}

	if !errors.Is(err, ErrParse) {
		t.Error("errors.Is(err, ErrParse) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := `malformed tabular content: line 12: column "text": malformed row: bare quote`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var pe *ParseError
	if !errors.As(fmt.Errorf("read: %w", err), &pe) || pe.Line != 12 {
		t.Errorf("errors.As did not recover line 12, got %+v", pe)
	}
}
