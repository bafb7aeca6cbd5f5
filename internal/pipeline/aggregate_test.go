package pipeline

import (
	"sort"
	"testing"

	"ucmr-pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processedND(state, contaminant string, mrl float64, policy model.NonDetectPolicy) model.ProcessedRecord {
	rec := model.Record{State: state, Contaminant: contaminant, Sign: "<", MRL: fp(mrl), CollectionDate: "06/01/2019"}
	result, err := Resolve(rec, policy)
	if err != nil {
		panic(err)
	}
	return model.ProcessedRecord{Record: rec, ProcessedResult: result}
}

func processedDet(state, contaminant string, value float64) model.ProcessedRecord {
	rec := model.Record{State: state, Contaminant: contaminant, MRL: fp(1), Value: fp(value), CollectionDate: "06/01/2019"}
	return model.ProcessedRecord{Record: rec, ProcessedResult: value}
}

func TestAggregateHalfMRLScenario(t *testing.T) {
	// Three non-detects for contaminant X in CA with MRL=2 under half-mrl
	// resolve to 1, 1, 1.
	records := []model.ProcessedRecord{
		processedND("CA", "X", 2, model.PolicyHalfMRL),
		processedND("CA", "X", 2, model.PolicyHalfMRL),
		processedND("CA", "X", 2, model.PolicyHalfMRL),
	}

	rows, err := AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CA", rows[0].State)
	assert.Equal(t, "X", rows[0].Contaminant)
	assert.Equal(t, 1.0, rows[0].Min)
	assert.Equal(t, 1.0, rows[0].Mean)
	assert.Equal(t, 1.0, rows[0].Max)
	assert.Equal(t, 3, rows[0].Count)

	// A fourth detected record with value 5 shifts the statistics.
	records = append(records, processedDet("CA", "X", 5))
	rows, err = AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Min)
	assert.Equal(t, 2.0, rows[0].Mean)
	assert.Equal(t, 5.0, rows[0].Max)
	assert.Equal(t, 4, rows[0].Count)
}

func TestAggregateTribalPartitionMerge(t *testing.T) {
	// After cleaning, a record with state "03" and one with "Tribal PWS"
	// land in the same partition.
	raw := []model.Record{
		{PWSID: "A", State: "03", Contaminant: "X", Sign: "<", MRL: fp(2)},
		{PWSID: "B", State: model.TribalPWSLabel, Contaminant: "X", Sign: "<", MRL: fp(2)},
	}
	cleaned := CleanRecords(raw)
	processed, err := ResolveRecords(cleaned, model.PolicyAtMRL)
	require.NoError(t, err)

	rows, err := AggregateRecords(processed, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TribalPWSLabel, rows[0].State)
	assert.Equal(t, 2, rows[0].Count)
}

func TestAggregateRowPerDistinctPair(t *testing.T) {
	records := []model.ProcessedRecord{
		processedDet("CA", "X", 1),
		processedDet("CA", "Y", 2),
		processedDet("AZ", "X", 3),
		processedDet("AZ", "X", 4),
	}
	rows, err := AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// No partition is empty and every record counts exactly once.
	total := 0
	for _, row := range rows {
		assert.Greater(t, row.Count, 0)
		total += row.Count
	}
	assert.Equal(t, len(records), total)
}

func TestAggregateOrderingDeterministic(t *testing.T) {
	records := []model.ProcessedRecord{
		processedDet("NV", "Y", 1),
		processedDet("AZ", "Z", 2),
		processedDet("AZ", "A", 3),
		processedDet("CA", "M", 4),
	}
	rows, err := AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)

	sorted := sort.SliceIsSorted(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].Contaminant < rows[j].Contaminant
	})
	assert.True(t, sorted, "rows must be ordered by key then contaminant")

	again, err := AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestAggregateMinMeanMaxInvariant(t *testing.T) {
	records := []model.ProcessedRecord{
		processedDet("CA", "X", 0.2),
		processedDet("CA", "X", 7.9),
		processedDet("CA", "X", 3.3),
		processedND("CA", "X", 2, model.PolicyHalfMRL),
	}
	rows, err := AggregateRecords(records, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	for _, row := range rows {
		assert.LessOrEqual(t, row.Min, row.Mean)
		assert.LessOrEqual(t, row.Mean, row.Max)
	}
}

func TestAggregateModesOnlyRegroup(t *testing.T) {
	// Switching modes regroups the same resolved values; the per-partition
	// counts always sum to the record count.
	records := []model.ProcessedRecord{
		processedDet("CA", "X", 1),
		processedDet("AZ", "X", 2),
		processedDet("CA", "Y", 3),
	}
	for _, spatial := range []model.SpatialMode{model.SpatialState, model.SpatialRegion} {
		rows, err := AggregateRecords(records, spatial, model.TemporalNone)
		require.NoError(t, err)
		total := 0
		for _, row := range rows {
			total += row.Count
		}
		assert.Equal(t, len(records), total)
	}
}

func TestAggregateTemporalPartitions(t *testing.T) {
	jan := processedDet("CA", "X", 1)
	jan.CollectionDate = "01/10/2018"
	dec := processedDet("CA", "X", 3)
	dec.CollectionDate = "12/20/2018"
	nextYear := processedDet("CA", "X", 5)
	nextYear.CollectionDate = "02/01/2019"

	records := []model.ProcessedRecord{jan, dec, nextYear}

	rows, err := AggregateRecords(records, model.SpatialNone, model.TemporalAnnual)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2018, rows[0].Year)
	assert.Equal(t, 2.0, rows[0].Mean)
	assert.Equal(t, 2019, rows[1].Year)

	rows, err = AggregateRecords(records, model.SpatialNone, model.TemporalMonthly)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestAggregateInvalidDateFailsRun(t *testing.T) {
	bad := processedDet("CA", "X", 1)
	bad.CollectionDate = "not-a-date"
	_, err := AggregateRecords([]model.ProcessedRecord{bad}, model.SpatialNone, model.TemporalMonthly)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}
