package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// fakeStore is an in-memory ObjectStore.
type fakeStore struct {
	objects []ObjectInfo
	bodies  map[string][]byte
	listErr error
	getErr  error

	closed int
}

func (f *fakeStore) List(_ context.Context, _ string) ([]ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeStore) Get(_ context.Context, _, key string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.bodies[key]
	if !ok {
		return nil, fmt.Errorf("no such key %q", key)
	}
	return &trackingBody{Reader: bytes.NewReader(body), store: f}, nil
}

type trackingBody struct {
	io.Reader
	store *fakeStore
}

func (b *trackingBody) Close() error {
	b.store.closed++
	return nil
}

const testHeader = "tweet_id,author_id,inbound,created_at,text,response_tweet_id,in_response_to_tweet_id\n"

// buildExport renders n rows of a well-formed export.
func buildExport(n int) []byte {
	var sb strings.Builder
	sb.WriteString(testHeader)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "%d,user%d,True,Tue Oct 31 22:10:47 +0000 2017,hello number %d,,%d\n", i, i, i, i+1)
	}
	return []byte(sb.String())
}

// ----------------------------------------------------------------------------
// DiscoverLatestObject Tests
// ----------------------------------------------------------------------------

func TestDiscoverLatestObject(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		objects []ObjectInfo
		listErr error
		wantKey string
		wantErr error
	}{
		{
			name:    "empty bucket",
			objects: nil,
			wantErr: ErrEmptySource,
		},
		{
			name:    "single object",
			objects: []ObjectInfo{{Key: "a.csv", LastModified: base}},
			wantKey: "a.csv",
		},
		{
			name: "newest wins regardless of order",
			objects: []ObjectInfo{
				{Key: "old.csv", LastModified: base},
				{Key: "new.csv", LastModified: base.Add(time.Hour)},
				{Key: "mid.csv", LastModified: base.Add(time.Minute)},
			},
			wantKey: "new.csv",
		},
		{
			name: "tie keeps first listed",
			objects: []ObjectInfo{
				{Key: "first.csv", LastModified: base},
				{Key: "second.csv", LastModified: base},
			},
			wantKey: "first.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(&fakeStore{objects: tt.objects, listErr: tt.listErr})

			key, err := ex.DiscoverLatestObject(context.Background(), "bucket")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

func TestDiscoverLatestObject_ListError(t *testing.T) {
	listErr := errors.New("api error AccessDenied")
	ex := NewExtractor(&fakeStore{listErr: listErr})

	_, err := ex.DiscoverLatestObject(context.Background(), "bucket")
	if !errors.Is(err, listErr) {
		t.Fatalf("err = %v, want wrapped %v", err, listErr)
	}
	if errors.Is(err, ErrEmptySource) {
		t.Error("list failure must not be reported as an empty source")
	}
}

// ----------------------------------------------------------------------------
// ReadTable Tests
// ----------------------------------------------------------------------------

func TestReadTable_RowLimit(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		rowLimit int
		want     int
	}{
		{"default limit truncates", 10000, 0, DefaultRowLimit},
		{"explicit limit", 100, 10, 10},
		{"fewer rows than limit", 3, 5000, 3},
		{"header only", 0, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{bodies: map[string][]byte{"k": buildExport(tt.rows)}}
			ex := NewExtractor(store)

			rows, err := ex.ReadTable(context.Background(), "bucket", "k", tt.rowLimit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("len(rows) = %d, want %d", len(rows), tt.want)
			}
			if store.closed != 1 {
				t.Errorf("body closed %d times, want 1", store.closed)
			}
			for i, r := range rows {
				if r.TweetID != int64(i+1) {
					t.Fatalf("rows[%d].TweetID = %d, want %d (order not preserved)", i, r.TweetID, i+1)
				}
			}
		})
	}
}

func TestReadTable_GetError(t *testing.T) {
	getErr := errors.New("NoSuchKey")
	ex := NewExtractor(&fakeStore{getErr: getErr})

	if _, err := ex.ReadTable(context.Background(), "bucket", "k", 0); !errors.Is(err, getErr) {
		t.Fatalf("err = %v, want wrapped %v", err, getErr)
	}
}

func TestReadTable_ClosesBodyOnParseError(t *testing.T) {
	store := &fakeStore{bodies: map[string][]byte{"k": []byte("tweet_id\n1\n")}}

	_, err := NewExtractor(store).ReadTable(context.Background(), "bucket", "k", 0)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if store.closed != 1 {
		t.Errorf("body closed %d times, want 1", store.closed)
	}
}

// ----------------------------------------------------------------------------
// ParseRecords Tests
// ----------------------------------------------------------------------------

func TestParseRecords_Fields(t *testing.T) {
	input := testHeader +
		`119237,sprintcare,False,Tue Oct 31 22:10:47 +0000 2017,"@115712 I understand, ""really"" sorry",119238,` + "\n" +
		"119238,115712,TRUE,,\"line one\nline two\",\"119239,119240\",119237\n"

	rows, err := ParseRecords(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.TweetID != 119237 || first.AuthorID != "sprintcare" || first.Inbound {
		t.Errorf("first row = %+v", first)
	}
	if first.Text != `@115712 I understand, "really" sorry` {
		t.Errorf("first.Text = %q", first.Text)
	}
	if first.ResponseTweetID != "119238" || first.InResponseToTweetID != "" {
		t.Errorf("first response ids = %q / %q", first.ResponseTweetID, first.InResponseToTweetID)
	}
	if first.Line != 2 {
		t.Errorf("first.Line = %d, want 2", first.Line)
	}

	second := rows[1]
	if !second.Inbound || second.CreatedAt != "" {
		t.Errorf("second row = %+v", second)
	}
	if second.Text != "line one\nline two" {
		t.Errorf("second.Text = %q", second.Text)
	}
	if second.ResponseTweetID != "119239,119240" {
		t.Errorf("second.ResponseTweetID = %q", second.ResponseTweetID)
	}
}

func TestParseRecords_HeaderVariants(t *testing.T) {
	// Reordered, differently cased, BOM-prefixed and with an extra column.
	input := "\xEF\xBB\xBFText,Tweet_ID,extra,author_id,inbound,created_at,response_tweet_id,in_response_to_tweet_id\r\n" +
		"hi there,5,x,a,false,,,\r\n"

	rows, err := ParseRecords(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].TweetID != 5 || rows[0].Text != "hi there" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestParseRecords_SkipsBlankRows(t *testing.T) {
	input := testHeader +
		"1,a,true,,one,,\n" +
		",,,,,,\n" +
		"\n" +
		"2,b,false,,two,,\n"

	rows, err := ParseRecords(strings.NewReader(input), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[1].TweetID != 2 {
		t.Errorf("rows = %+v, want ids 1 and 2", rows)
	}
}

func TestParseRecords_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLine   int
		wantColumn string
		wantReason string
	}{
		{
			name:       "empty file",
			input:      "",
			wantLine:   1,
			wantReason: "empty file",
		},
		{
			name:       "missing required column",
			input:      "tweet_id,author_id,inbound,created_at,text\n1,a,true,,x\n",
			wantLine:   1,
			wantReason: "missing required column(s) response_tweet_id, in_response_to_tweet_id",
		},
		{
			name:       "wrong column count",
			input:      testHeader + "1,a,true,,ok,,\n2,b,true,,too,many,,cells\n",
			wantLine:   3,
			wantReason: "wrong number of columns",
		},
		{
			name:       "bad tweet id",
			input:      testHeader + "abc,a,true,,x,,\n",
			wantLine:   2,
			wantColumn: ColTweetID,
			wantReason: `invalid integer "abc"`,
		},
		{
			name:       "bad inbound",
			input:      testHeader + "1,a,sometimes,,x,,\n",
			wantLine:   2,
			wantColumn: ColInbound,
			wantReason: `invalid boolean "sometimes"`,
		},
		{
			name:       "invalid utf-8",
			input:      testHeader + "1,a,true,,ok,,\n2,b,true,,caf\xe9,,\n",
			wantLine:   3,
			wantReason: "unreadable encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseRecords(strings.NewReader(tt.input), 0)
			if rows != nil {
				t.Errorf("rows = %v, want nil on error", rows)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if !errors.Is(err, ErrParse) {
				t.Error("errors.Is(err, ErrParse) = false")
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
			if pe.Column != tt.wantColumn {
				t.Errorf("Column = %q, want %q", pe.Column, tt.wantColumn)
			}
			if pe.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", pe.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseRecords_EncodingCause(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(testHeader+"1,a,true,,\xff,,\n"), 0)

	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("err = %v, want *EncodingError cause", err)
	}
}
