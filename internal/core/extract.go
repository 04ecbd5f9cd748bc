package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tweetpipe/internal/logging"
)

// Extractor finds the newest export in a bucket and parses it into RawRecords.
type Extractor struct {
	store ObjectStore
}

// NewExtractor creates an extractor reading from store.
func NewExtractor(store ObjectStore) *Extractor {
	return &Extractor{store: store}
}

// DiscoverLatestObject returns the key of the most recently modified object
// in bucket. Ties keep the first object listed. Returns ErrEmptySource when
// the bucket is empty.
func (e *Extractor) DiscoverLatestObject(ctx context.Context, bucket string) (string, error) {
	objects, err := e.store.List(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("list bucket %s: %w", bucket, err)
	}

	latest, ok := LatestObject(objects)
	if !ok {
		return "", fmt.Errorf("bucket %s: %w", bucket, ErrEmptySource)
	}

	logging.FromContext(ctx).Debug("latest object selected",
		"bucket", bucket,
		"key", latest.Key,
		"last_modified", latest.LastModified,
		"candidates", len(objects),
	)
	return latest.Key, nil
}

// LatestObject picks the object with the greatest LastModified.
func LatestObject(objects []ObjectInfo) (ObjectInfo, bool) {
	if len(objects) == 0 {
		return ObjectInfo{}, false
	}
	latest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(latest.LastModified) {
			latest = obj
		}
	}
	return latest, true
}

// ReadTable fetches bucket/key and parses at most rowLimit data rows.
// A rowLimit <= 0 means DefaultRowLimit.
func (e *Extractor) ReadTable(ctx context.Context, bucket, key string, rowLimit int) ([]RawRecord, error) {
	body, err := e.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer body.Close()

	records, err := ParseRecords(body, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}

	logging.FromContext(ctx).Info("table read",
		"key", key,
		"rows", len(records),
		"row_limit", effectiveRowLimit(rowLimit),
	)
	return records, nil
}

func effectiveRowLimit(rowLimit int) int {
	if rowLimit <= 0 {
		return DefaultRowLimit
	}
	return rowLimit
}

// ParseRecords parses comma-delimited text with a header row into RawRecords,
// stopping after rowLimit data rows. Rows whose cells are all blank are
// skipped and do not count toward the limit.
func ParseRecords(r io.Reader, rowLimit int) ([]RawRecord, error) {
	limit := effectiveRowLimit(rowLimit)

	cr := csv.NewReader(WrapForParsing(r))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = 0 // every row must match the header width

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Reason: "empty file"}
	}
	if err != nil {
		return nil, wrapReadError(err, 1)
	}

	idx := MakeHeaderIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{
			Line:   1,
			Reason: fmt.Sprintf("missing required column(s) %s", strings.Join(missing, ", ")),
		}
	}

	records := make([]RawRecord, 0, min(limit, 1024))
	lastLine := 1
	for len(records) < limit {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapReadError(err, lastLine+1)
		}

		lastLine, _ = cr.FieldPos(0)
		if isEmptyRow(row) {
			continue
		}

		rec, err := buildRecord(row, idx, lastLine)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// buildRecord maps one CSV row to a RawRecord.
func buildRecord(row []string, idx HeaderIndex, line int) (RawRecord, error) {
	cell := func(col string) string {
		return row[idx[col]]
	}

	id, ok := ParseTweetID(cell(ColTweetID))
	if !ok {
		return RawRecord{}, &ParseError{
			Line:   line,
			Column: ColTweetID,
			Reason: fmt.Sprintf("invalid integer %q", cell(ColTweetID)),
		}
	}

	inbound, ok := ParseBool(cell(ColInbound))
	if !ok {
		return RawRecord{}, &ParseError{
			Line:   line,
			Column: ColInbound,
			Reason: fmt.Sprintf("invalid boolean %q", cell(ColInbound)),
		}
	}

	return RawRecord{
		TweetID:             id,
		AuthorID:            strings.TrimSpace(cell(ColAuthorID)),
		Inbound:             inbound,
		CreatedAt:           cell(ColCreatedAt),
		Text:                cell(ColText),
		ResponseTweetID:     strings.TrimSpace(cell(ColResponseTweetID)),
		InResponseToTweetID: strings.TrimSpace(cell(ColInResponseToTweetID)),
		Line:                line,
	}, nil
}

// wrapReadError converts csv and encoding failures into a *ParseError.
func wrapReadError(err error, line int) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		if errors.Is(csvErr.Err, csv.ErrFieldCount) {
			return &ParseError{Line: csvErr.Line, Reason: "wrong number of columns", Err: csvErr.Err}
		}
		return &ParseError{Line: csvErr.Line, Reason: "malformed row", Err: csvErr.Err}
	}

	var encErr *EncodingError
	if errors.As(err, &encErr) {
		return &ParseError{Line: line, Reason: "unreadable encoding", Err: encErr}
	}

	return &ParseError{Line: line, Reason: "read failed", Err: err}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
