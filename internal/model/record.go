package model

// NonDetectSign is the comparison sign UCMR4 uses for results reported
// below the minimum reporting level.
const NonDetectSign = "<"

// TribalPWSLabel replaces numeric EPA region codes found in the State
// column; tribal water systems report a region number instead of a state.
const TribalPWSLabel = "Tribal PWS"

// Record is a single analytical measurement after column pruning.
// All concentrations are in µg/L. MRL and Value are pointers because the
// raw exports leave either blank: Value is meaningless for non-detects and
// MRL can be missing on malformed rows.
type Record struct {
	PWSID             string   `json:"pwsid"`
	PWSName           string   `json:"pwsName"`
	FacilityID        string   `json:"facilityId"`
	FacilityName      string   `json:"facilityName"`
	FacilityWaterType string   `json:"facilityWaterType"`
	SamplePointID     string   `json:"samplePointId"`
	SamplePointType   string   `json:"samplePointType"`
	CollectionDate    string   `json:"collectionDate"` // MM/DD/YYYY
	SampleID          string   `json:"sampleId"`
	Contaminant       string   `json:"contaminant"`
	MRL               *float64 `json:"mrl,omitempty"`
	MethodID          string   `json:"methodId"`
	Sign              string   `json:"sign"` // "<" means non-detect
	Value             *float64 `json:"value,omitempty"`
	Region            string   `json:"region"`
	State             string   `json:"state"`
}

// IsNonDetect reports whether the result was below the reporting level.
func (r Record) IsNonDetect() bool {
	return r.Sign == NonDetectSign
}

// ProcessedRecord is a record with the non-detect policy applied.
type ProcessedRecord struct {
	Record
	ProcessedResult float64 `json:"processedResult"`
}

// CollectionDateLayout is the single accepted date layout. The UCMR4
// exports publish MM/DD/YYYY; no other layout is attempted.
const CollectionDateLayout = "01/02/2006"
