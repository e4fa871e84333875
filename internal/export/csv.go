// Package export serializes stored decisions into a flat CSV extract.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

// Filename is the suggested download name of the extract
const Filename = "dubletten_entscheidungen.csv"

// ContentType is the media type of the extract
const ContentType = "text/csv; charset=utf-8"

// DeleteIDSeparator joins the identifiers marked for removal into one cell
const DeleteIDSeparator = " | "

// Header lists the extract columns. They keep the storage column names so the
// file can be matched against the decision table.
var Header = []string{
	"name1", "ort01", "status", "lifnr_behalten",
	"lifnr_loeschen", "notiz", "bearbeitet_von", "bearbeitet_am",
}

// WriteDecisionsCSV writes one row per decision in the order given. Absent
// values become empty cells.
func WriteDecisionsCSV(w io.Writer, decisions []database.Decision) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, d := range decisions {
		if err := cw.Write(row(d)); err != nil {
			return fmt.Errorf("failed to write decision %q/%q: %w", d.Name1, d.Ort01, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func row(d database.Decision) []string {
	var updated string
	if !d.UpdatedAt.IsZero() {
		updated = d.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		d.Name1,
		d.Ort01,
		string(d.Status),
		deref(d.KeepID),
		strings.Join(d.DeleteIDs, DeleteIDSeparator),
		deref(d.Note),
		d.Author,
		updated,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
