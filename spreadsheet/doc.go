// Package spreadsheet implements an in-memory spreadsheet formula engine.
//
// Cells hold either literals or formulas ("=A1+B$2*2") as expression
// trees. Formulas reference other cells through relative or $-absolute
// axes; rectangle copies deep-clone the source trees and translate the
// relative axes by the displacement. Evaluation runs a cycle check first,
// so cyclic reference graphs terminate and yield the undefined value.
// Sheets serialize to a compact control-character-delimited stream and
// convert to and from xlsx workbooks.
package spreadsheet
