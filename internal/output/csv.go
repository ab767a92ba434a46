package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"rustdex/internal/flatten"
)

var csvHeader = []string{
	"kind", "id", "name", "path", "decl",
	"has_generics", "is_const", "is_async",
	"stability", "fn_count", "trait_path", "trait_foreign",
}

// WriteCSV writes records as CSV with a header row, one record per
// line, in the order given.
func WriteCSV(w io.Writer, records []flatten.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			string(r.Kind),
			r.ID,
			r.Name,
			r.Path,
			r.Decl,
			strconv.FormatBool(r.HasGenerics),
			strconv.FormatBool(r.IsConst),
			strconv.FormatBool(r.IsAsync),
			string(r.Stability),
			strconv.Itoa(r.FnCount),
			r.TraitPath,
			strconv.FormatBool(r.TraitForeign),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
