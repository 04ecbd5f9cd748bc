package core

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultRowLimit caps the number of data rows read from one extract.
const DefaultRowLimit = 5000

// DefaultTargetLanguage is the language rows are filtered to when none is given.
const DefaultTargetLanguage = "en"

// Column names of the conversation export. The header row must contain all of
// them; order does not matter and extra columns are ignored.
const (
	ColTweetID             = "tweet_id"
	ColAuthorID            = "author_id"
	ColInbound             = "inbound"
	ColCreatedAt           = "created_at"
	ColText                = "text"
	ColResponseTweetID     = "response_tweet_id"
	ColInResponseToTweetID = "in_response_to_tweet_id"
)

// RequiredColumns lists the header fields every extract must provide.
var RequiredColumns = []string{
	ColTweetID,
	ColAuthorID,
	ColInbound,
	ColCreatedAt,
	ColText,
	ColResponseTweetID,
	ColInResponseToTweetID,
}

// ObjectInfo describes one object in the landing bucket.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ObjectStore is the subset of blob storage the extractor needs.
type ObjectStore interface {
	List(ctx context.Context, bucket string) ([]ObjectInfo, error)
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// RawRecord is one parsed row of the export, before any cleaning.
type RawRecord struct {
	TweetID             int64
	AuthorID            string
	Inbound             bool
	CreatedAt           string // unparsed, coerced by the transformer
	Text                string
	ResponseTweetID     string // may be a comma-delimited list
	InResponseToTweetID string

	Line int // 1-indexed line in the source object
}

// CleanRecord is a RawRecord enriched by the transformer.
type CleanRecord struct {
	RawRecord

	CleanText     string
	Language      Language
	CreatedAtTime pgtype.Timestamp // Valid=false when created_at could not be parsed
}

// Language is the outcome of language detection: either a detected
// ISO 639-1 code or Undetected.
type Language struct {
	code string
}

// Undetected is the result for text whose language could not be determined.
var Undetected = Language{}

// UndetectedCode is how Undetected renders in logs.
const UndetectedCode = "und"

// Detected returns the result for a successfully classified text.
// An empty code yields Undetected.
func Detected(code string) Language {
	return Language{code: strings.ToLower(strings.TrimSpace(code))}
}

// Code returns the language code and whether detection succeeded.
func (l Language) Code() (string, bool) {
	return l.code, l.code != ""
}

// IsDetected reports whether a language was found.
func (l Language) IsDetected() bool {
	return l.code != ""
}

// Matches reports whether the language was detected and equals target.
// Undetected never matches.
func (l Language) Matches(target string) bool {
	return l.code != "" && strings.EqualFold(l.code, strings.TrimSpace(target))
}

func (l Language) String() string {
	if l.code == "" {
		return UndetectedCode
	}
	return l.code
}

// LanguageDetector classifies cleaned text. Implementations must not fail:
// anything they cannot classify is reported as Undetected.
type LanguageDetector interface {
	Detect(text string) Language
}

// LanguageDetectorFunc adapts a plain function to LanguageDetector.
type LanguageDetectorFunc func(text string) Language

// Detect implements LanguageDetector.
func (f LanguageDetectorFunc) Detect(text string) Language {
	return f(text)
}

// TransformStats summarises one FilterAndTransform call.
type TransformStats struct {
	Total          int
	Kept           int
	Undetected     int
	OtherLanguage  int
	NullTimestamps int // among kept rows
}
