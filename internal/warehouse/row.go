package warehouse

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
)

// Row is one destination row, with strings already fitted to the column
// bounds.
type Row struct {
	TweetID             int64
	AuthorID            pgtype.Text
	Inbound             bool
	CreatedAt           pgtype.Timestamp
	Text                pgtype.Text
	ResponseTweetID     pgtype.Text
	InResponseToTweetID pgtype.Text
	CleanText           pgtype.Text
}

// NewRow maps a transformed record to a Row. Strings longer than their
// column are cut on a rune boundary; blank values in nullable columns
// become NULL.
func NewRow(rec core.CleanRecord) Row {
	return Row{
		TweetID:             rec.TweetID,
		AuthorID:            textValue(schema.ColAuthorID, rec.AuthorID),
		Inbound:             rec.Inbound,
		CreatedAt:           rec.CreatedAtTime,
		Text:                textValue(schema.ColText, rec.Text),
		ResponseTweetID:     textValue(schema.ColResponseTweetID, rec.ResponseTweetID),
		InResponseToTweetID: textValue(schema.ColInResponseToTweetID, rec.InResponseToTweetID),
		CleanText:           textValue(schema.ColCleanText, rec.CleanText),
	}
}

// Values returns the insert arguments in schema.TweetColumns order.
func (r Row) Values() []any {
	return []any{
		r.TweetID,
		r.AuthorID,
		r.Inbound,
		r.CreatedAt,
		r.Text,
		r.ResponseTweetID,
		r.InResponseToTweetID,
		r.CleanText,
	}
}

func textValue(column, s string) pgtype.Text {
	s = fit(column, s)
	if schema.Nullable(column) {
		return core.ToPgText(s)
	}
	return pgtype.Text{String: s, Valid: true}
}

func fit(column, s string) string {
	if n := schema.MaxBytes(column); n > 0 {
		return core.TruncateUTF8(s, n)
	}
	return s
}
