package pipeline

import (
	"testing"

	"ucmr-pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRecord() model.Record {
	return model.Record{
		PWSID:          "CA1234567",
		SampleID:       "S-1",
		Contaminant:    "manganese",
		State:          "CA",
		Region:         "9",
		CollectionDate: "03/15/2018",
	}
}

func TestKeyForSpatialModes(t *testing.T) {
	rec := keyRecord()

	key, err := KeyFor(rec, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
	assert.Equal(t, GroupKey{State: "CA", Contaminant: "manganese"}, key)

	key, err = KeyFor(rec, model.SpatialRegion, model.TemporalNone)
	require.NoError(t, err)
	assert.Equal(t, GroupKey{Region: "9", Contaminant: "manganese"}, key)
}

func TestKeyForTemporalModes(t *testing.T) {
	rec := keyRecord()

	key, err := KeyFor(rec, model.SpatialNone, model.TemporalAnnual)
	require.NoError(t, err)
	assert.Equal(t, GroupKey{Year: 2018, Contaminant: "manganese"}, key)

	key, err = KeyFor(rec, model.SpatialNone, model.TemporalMonthly)
	require.NoError(t, err)
	assert.Equal(t, GroupKey{Year: 2018, Month: 3, Contaminant: "manganese"}, key)
}

func TestKeyForCombinedModes(t *testing.T) {
	key, err := KeyFor(keyRecord(), model.SpatialState, model.TemporalMonthly)
	require.NoError(t, err)
	assert.Equal(t, GroupKey{State: "CA", Year: 2018, Month: 3, Contaminant: "manganese"}, key)
}

func TestKeyForInvalidDate(t *testing.T) {
	rec := keyRecord()
	rec.CollectionDate = "2018-03-15" // not the accepted layout

	_, err := KeyFor(rec, model.SpatialNone, model.TemporalAnnual)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
	assert.Contains(t, err.Error(), "CA1234567")

	// A bad date is irrelevant when no temporal mode is selected.
	_, err = KeyFor(rec, model.SpatialState, model.TemporalNone)
	require.NoError(t, err)
}

func TestKeyForInvalidModes(t *testing.T) {
	_, err := KeyFor(keyRecord(), "county", model.TemporalNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidMode)

	_, err = KeyFor(keyRecord(), model.SpatialNone, "weekly")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidMode)
}

func TestGroupKeyLess(t *testing.T) {
	a := GroupKey{State: "AZ", Contaminant: "bromide"}
	b := GroupKey{State: "CA", Contaminant: "anatoxin-a"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	// Same spatial value: contaminant breaks the tie.
	c := GroupKey{State: "CA", Contaminant: "bromide"}
	assert.True(t, b.Less(c))

	// Temporal components order before contaminant.
	d := GroupKey{State: "CA", Year: 2018, Month: 12, Contaminant: "zzz"}
	e := GroupKey{State: "CA", Year: 2019, Month: 1, Contaminant: "aaa"}
	assert.True(t, d.Less(e))
}
