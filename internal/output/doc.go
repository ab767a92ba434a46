// Package output renders record sets and statistics for humans and
// machines.
//
// Three renderings share one contract: the caller hands in records in
// canonical order and the package never reorders them.
//
//   - DeterministicEncode: byte-identical JSON (sorted keys, floats
//     rounded to 6 places, empty fields omitted), so identical runs
//     diff clean and golden files stay stable.
//   - WriteTable: an aligned terminal table. Column widths follow the
//     content, the signature column absorbs truncation, stability is
//     colorized on real terminals.
//   - WriteCSV: a plain header-plus-rows export.
//
// Timestamps and durations never belong in deterministic output; keep
// them out of the values handed to DeterministicEncode.
package output
