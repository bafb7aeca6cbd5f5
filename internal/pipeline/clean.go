package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ucmr-pipeline/internal/model"
)

// Tribal public water systems report an EPA region code where every other
// system reports a state abbreviation. Digit runs are replaced wherever
// they appear in the field, not only when the whole field is numeric.
var numericState = regexp.MustCompile(`[0-9]+`)

// CleanRecords moves the table from Loaded to Cleaned: identifier fields
// are trimmed, numeric State codes are rewritten to the Tribal PWS
// sentinel, and the table is put in a stable order. After this stage State
// never matches [0-9]+, which the grouping key builder relies on.
func CleanRecords(records []model.Record) []model.Record {
	cleaned := make([]model.Record, len(records))
	rewritten := 0
	for i, rec := range records {
		rec.PWSID = strings.TrimSpace(rec.PWSID)
		rec.FacilityID = strings.TrimSpace(rec.FacilityID)
		rec.SamplePointID = strings.TrimSpace(rec.SamplePointID)
		rec.SampleID = strings.TrimSpace(rec.SampleID)
		rec.State = strings.TrimSpace(rec.State)
		rec.Region = strings.TrimSpace(rec.Region)
		rec.Contaminant = strings.TrimSpace(rec.Contaminant)
		rec.CollectionDate = strings.TrimSpace(rec.CollectionDate)

		if numericState.MatchString(rec.State) {
			rec.State = numericState.ReplaceAllString(rec.State, model.TribalPWSLabel)
			rewritten++
		}
		cleaned[i] = rec
	}

	// Stable output ordering for byte-identical reruns.
	sort.SliceStable(cleaned, func(i, j int) bool {
		if cleaned[i].PWSID != cleaned[j].PWSID {
			return cleaned[i].PWSID < cleaned[j].PWSID
		}
		return cleaned[i].SampleID < cleaned[j].SampleID
	})

	if rewritten > 0 {
		fmt.Printf("🧹 Cleaning done: %d state codes rewritten to %q\n", rewritten, model.TribalPWSLabel)
	}
	return cleaned
}
