// Package core provides the extract and transform stages of the tweet
// pipeline.
//
// The package holds the domain logic independent of any storage SDK or
// database driver. Object storage is reached through [ObjectStore] and
// language detection through [LanguageDetector], so both stages can be
// exercised in tests with in-memory fakes.
//
// # Extract
//
// [Extractor.DiscoverLatestObject] lists the landing bucket and picks the
// object with the greatest last-modified time. [Extractor.ReadTable] streams
// that object through [WrapForParsing] (BOM removal, strict UTF-8) into a
// CSV reader and builds at most rowLimit [RawRecord] values:
//
//	ex := core.NewExtractor(store)
//	key, err := ex.DiscoverLatestObject(ctx, "tweets-test-123")
//	rows, err := ex.ReadTable(ctx, "tweets-test-123", key, core.DefaultRowLimit)
//
// Malformed content fails the whole read with a [*ParseError].
//
// # Transform
//
// [Clean] normalizes tweet text: entities are unescaped, URLs and mentions
// removed, punctuation collapsed, and the result case folded. It is
// idempotent. [Transformer.FilterAndTransform] cleans each row, detects its
// language and keeps rows in the target language, preserving input order.
// Rows whose language cannot be determined are always dropped.
//
// # Errors
//
// Failures are classified by the sentinels [ErrConfig], [ErrEmptySource],
// [ErrParse] and [ErrPersistence]. [MapError] turns any run failure into an
// operator-facing [UserMessage] with a stable code.
package core
