// Package core provides the reconciliation logic for Complot / Layer quality checks.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the CLI and tests without
// modification.
//
// # Pipeline
//
// A run flows through four stages:
//
//  1. Loader reads the Complot CSV (any common encoding) and the first
//     worksheet of the layer spreadsheet into [Record] values. Cells are
//     cleaned and null tokens become null through a single [Normalizer].
//  2. [BuildIndex] groups records of both sources by normalized join key.
//     Records without a key go to the unkeyed bucket.
//  3. [Matcher] classifies each key as both-present, primary-only or
//     layer-only and compares the configured fields of every record pair.
//     Duplicated keys are paired positionally; the excess is flagged.
//  4. The report layer lays out the output table, computes the [Summary] and
//     writes the .xlsx and _report.txt artifacts atomically.
//
// [Service.Run] wraps the pipeline for the front-ends: it bounds concurrent
// runs, emits [RunProgress] and records each run in a [RunHistory].
//
// # Error Handling
//
// Fatal failures are typed: [ErrInputMissing], [*InputError], [*ColumnError]
// and [*OutputError]. Malformed rows are never fatal; their cells become null
// and the record carries a note. Errors are mapped to user-facing messages
// with support codes by [MapError]:
//
//   - FILE001-FILE004: input files (missing, unreadable, too large, not a workbook)
//   - VAL004: required column missing
//   - OUT001-OUT002: writing the report
//   - RUN001-RUN004: run control (busy, cancelled, timed out, unknown run)
package core
