package listing

import (
	"fmt"
)

// Dataset is an ordered collection of records with unique IDs
type Dataset struct {
	records []Record
	index   map[string]int
}

// NewDataset returns an empty dataset
func NewDataset() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// FromRecords builds a dataset, failing on an empty or repeated ID
func FromRecords(records []Record) (*Dataset, error) {
	d := NewDataset()
	for _, r := range records {
		if err := d.Append(r); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Append adds a record at the end
func (d *Dataset) Append(r Record) error {
	if r.ID == "" {
		return fmt.Errorf("record has an empty id (address %q)", r.Address)
	}
	if _, dup := d.index[r.ID]; dup {
		return fmt.Errorf("duplicate record id %q", r.ID)
	}
	d.index[r.ID] = len(d.records)
	d.records = append(d.records, r)
	return nil
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Has reports whether a record with the given ID exists
func (d *Dataset) Has(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[id]
	return ok
}

// Get returns a copy of the record with the given ID
func (d *Dataset) Get(id string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i].Clone(), true
}

// Records returns deep copies of all records in order
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = r.Clone()
	}
	return out
}

// Keys returns the record IDs in order
func (d *Dataset) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.records))
	for i, r := range d.records {
		keys[i] = r.ID
	}
	return keys
}
