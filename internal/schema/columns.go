// Package schema describes the destination table for processed tweets and
// renders its DDL and insert statements.
package schema

import (
	"fmt"
	"strings"
)

// ColumnType is the SQL type family of a column.
type ColumnType string

const (
	TypeBigInt    ColumnType = "BIGINT"
	TypeBoolean   ColumnType = "BOOLEAN"
	TypeTimestamp ColumnType = "TIMESTAMP"
	TypeVarchar   ColumnType = "VARCHAR"
)

// Column defines one destination column.
type Column struct {
	Name string
	Type ColumnType

	// MaxBytes is the VARCHAR length. Redshift counts bytes, not characters.
	MaxBytes int

	// Encode is the Redshift compression encoding, if any.
	Encode string

	// Nullable columns store empty or blank strings as NULL. Other text
	// columns keep them as empty strings.
	Nullable bool
}

// SQLType renders the column type, e.g. VARCHAR(256).
func (c Column) SQLType() string {
	if c.Type == TypeVarchar {
		return fmt.Sprintf("%s(%d)", c.Type, c.MaxBytes)
	}
	return string(c.Type)
}

// Column names of the destination table, in insert order.
const (
	ColTweetID             = "tweet_id"
	ColAuthorID            = "author_id"
	ColInbound             = "inbound"
	ColCreatedAt           = "created_at"
	ColText                = "text"
	ColResponseTweetID     = "response_tweet_id"
	ColInResponseToTweetID = "in_response_to_tweet_id"
	ColCleanText           = "clean_text"
)

// TweetColumns is the fixed layout of the processed tweets table.
var TweetColumns = []Column{
	{Name: ColTweetID, Type: TypeBigInt, Encode: "az64"},
	{Name: ColAuthorID, Type: TypeVarchar, MaxBytes: 256, Encode: "lzo"},
	{Name: ColInbound, Type: TypeBoolean},
	{Name: ColCreatedAt, Type: TypeTimestamp, Nullable: true},
	{Name: ColText, Type: TypeVarchar, MaxBytes: 6000},
	{Name: ColResponseTweetID, Type: TypeVarchar, MaxBytes: 15000, Nullable: true},
	{Name: ColInResponseToTweetID, Type: TypeVarchar, MaxBytes: 256, Nullable: true},
	{Name: ColCleanText, Type: TypeVarchar, MaxBytes: 6000},
}

// ColumnByName returns the column with the given name.
func ColumnByName(name string) (Column, bool) {
	for _, c := range TweetColumns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// MaxBytes returns the VARCHAR bound of the named column, or 0 when it has
// none.
func MaxBytes(name string) int {
	c, _ := ColumnByName(name)
	return c.MaxBytes
}

// Nullable reports whether the named column stores blank values as NULL.
func Nullable(name string) bool {
	c, _ := ColumnByName(name)
	return c.Nullable
}
