package tsvsubset

import "time"

// DatasetReport summarizes one dataset scan.
type DatasetReport struct {
	Dataset         string        `json:"dataset"`
	File            string        `json:"file"`
	Table           string        `json:"table"`
	Compression     string        `json:"compression"`
	Scanned         int64         `json:"scanned"`
	Matched         int64         `json:"matched"`
	Bytes           int64         `json:"bytes"`
	CompressedBytes int64         `json:"compressed_bytes"`
	Duration        time.Duration `json:"duration"`
}

// Report summarizes a successful run.
type Report struct {
	Titles         uint64          `json:"titles"`
	Persons        uint64          `json:"persons"`
	TitleSetBytes  uint64          `json:"title_set_bytes"`
	PersonSetBytes uint64          `json:"person_set_bytes"`
	Datasets       []DatasetReport `json:"datasets"`
	Rows           int64           `json:"rows"`
	SeedDuration   time.Duration   `json:"seed_duration"`
	CommitDuration time.Duration   `json:"commit_duration"`
	Duration       time.Duration   `json:"duration"`
}

// Dataset returns the report of the named dataset.
func (r *Report) Dataset(name string) (DatasetReport, bool) {
	for _, d := range r.Datasets {
		if d.Dataset == name {
			return d, true
		}
	}
	return DatasetReport{}, false
}
