package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ucmr-pipeline/internal/model"
)

// Required UCMR4 columns. The raw exports carry more (Size, SamplePointName,
// SampleEventCode, ...); everything outside this set is dropped at load.
var requiredColumns = []string{
	"PWSID", "PWSName", "FacilityID", "FacilityName", "FacilityWaterType",
	"SamplePointID", "SamplePointType", "CollectionDate", "SampleID",
	"Contaminant", "MRL", "MethodID", "AnalyticalResultsSign",
	"AnalyticalResultValue(µg/L)", "Region", "State",
}

// LoadTables reads every input table and concatenates them into one logical
// table. Inputs may be literal paths or globs. No deduplication across
// tables is performed.
func LoadTables(inputs []string) ([]model.Record, error) {
	paths, err := expandInputs(inputs)
	if err != nil {
		return nil, err
	}

	var all []model.Record
	for _, path := range paths {
		records, err := loadTSV(path)
		if err != nil {
			return nil, err
		}
		fmt.Printf("📄 Loaded %d records from %s\n", len(records), path)
		all = append(all, records...)
	}

	fmt.Printf("📄 Ingestion done: %d records from %d file(s)\n", len(all), len(paths))
	return all, nil
}

// expandInputs resolves globs and sorts the final path list so reruns read
// files in the same order.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		if strings.ContainsAny(in, "*?[") {
			matches, err := filepath.Glob(in)
			if err != nil {
				return nil, fmt.Errorf("bad input pattern %q: %w", in, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("input pattern %q matched no files", in)
			}
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, in)
	}
	sort.Strings(paths)
	return paths, nil
}

func loadTSV(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input table: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCRTerminated)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s is empty", model.ErrSchemaMismatch, path)
	}

	index, err := headerIndex(scanner.Text(), path)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	row := 1
	for scanner.Scan() {
		row++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		rec, err := recordFromRow(index, fields, path, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read error in %s: %w", path, err)
	}
	return records, nil
}

// headerIndex maps each required column name to its position, failing with
// SchemaMismatch on the first column the table does not carry.
func headerIndex(header, path string) (map[string]int, error) {
	names := strings.Split(header, "\t")
	positions := make(map[string]int, len(names))
	for i, name := range names {
		clean := strings.TrimSpace(name)
		clean = strings.ReplaceAll(clean, `"`, "")
		clean = strings.TrimPrefix(clean, "\uFEFF")
		positions[clean] = i
	}

	index := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		pos, ok := positions[col]
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing column %q", model.ErrSchemaMismatch, path, col)
		}
		index[col] = pos
	}
	return index, nil
}

func recordFromRow(index map[string]int, fields []string, path string, row int) (model.Record, error) {
	get := func(col string) (string, error) {
		pos := index[col]
		if pos >= len(fields) {
			return "", fmt.Errorf("%w: %s row %d has %d fields, column %q is at position %d",
				model.ErrSchemaMismatch, path, row, len(fields), col, pos+1)
		}
		return fields[pos], nil
	}

	rec := model.Record{}
	assign := []struct {
		col  string
		dest *string
	}{
		{"PWSID", &rec.PWSID},
		{"PWSName", &rec.PWSName},
		{"FacilityID", &rec.FacilityID},
		{"FacilityName", &rec.FacilityName},
		{"FacilityWaterType", &rec.FacilityWaterType},
		{"SamplePointID", &rec.SamplePointID},
		{"SamplePointType", &rec.SamplePointType},
		{"CollectionDate", &rec.CollectionDate},
		{"SampleID", &rec.SampleID},
		{"Contaminant", &rec.Contaminant},
		{"MethodID", &rec.MethodID},
		{"AnalyticalResultsSign", &rec.Sign},
		{"Region", &rec.Region},
		{"State", &rec.State},
	}
	for _, a := range assign {
		v, err := get(a.col)
		if err != nil {
			return model.Record{}, err
		}
		*a.dest = v
	}
	rec.Sign = strings.TrimSpace(rec.Sign)

	mrlField, err := get("MRL")
	if err != nil {
		return model.Record{}, err
	}
	rec.MRL, err = parseConcentration(mrlField, "MRL", path, row)
	if err != nil {
		return model.Record{}, err
	}
	if rec.MRL != nil && *rec.MRL < 0 {
		return model.Record{}, fmt.Errorf("%s row %d: negative MRL %v", path, row, *rec.MRL)
	}

	valueField, err := get("AnalyticalResultValue(µg/L)")
	if err != nil {
		return model.Record{}, err
	}
	rec.Value, err = parseConcentration(valueField, "AnalyticalResultValue(µg/L)", path, row)
	if err != nil {
		return model.Record{}, err
	}

	return rec, nil
}

func parseConcentration(s, col, path string, row int) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s row %d: column %q is not numeric: %q", path, row, col, s)
	}
	return &f, nil
}

// scanCRTerminated splits on carriage returns, the record terminator the
// UCMR4 exports use, swallowing a following newline if present.
// encoding/csv cannot be configured with this terminator, hence the custom
// split function.
func scanCRTerminated(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\r'); i >= 0 {
		advance := i + 1
		if advance == len(data) && !atEOF {
			// need one more byte to know whether a \n follows the \r
			return 0, nil, nil
		}
		if advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
