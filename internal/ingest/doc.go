// Package ingest normalizes heterogeneous tabular drilling data into the
// canonical record set consumed by the quality scorer and the decimation
// engine.
//
// Two decoders produce the intermediate RawRecord shape: a delimited-text
// decoder (header row required, comma by default) and an excelize-backed
// workbook decoder for proprietary spreadsheet exports. Normalization is
// shared: column names are resolved case-insensitively against a synonym
// table (first match wins), numeric cells are parsed leniently with a
// zero default, rows whose cells are all blank are dropped, and records
// with a non-positive depth are dropped. The depth gate is the real
// validation step; lenient coercion is deliberate and surfaces through the
// completeness score rather than through per-row errors.
//
// When a decoder fails outright the caller falls back to the deterministic
// placeholder set from Fallback, so a broken upload degrades the session
// instead of aborting it.
package ingest
