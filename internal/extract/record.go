package extract

import "sort"

// Method records how a field's value was obtained.
type Method string

const (
	MethodPositional Method = "positional"
	MethodRegex      Method = "regex"
	MethodMissing    Method = "missing"
)

// FieldValue is a field's merged value across the document.
type FieldValue struct {
	Value     string `json:"value"`
	PageIndex int    `json:"page_index"`
	Method    Method `json:"method"`
}

// PageValue is a field's value as seen on one specific page.
type PageValue struct {
	PageIndex int    `json:"page_index"`
	Value     string `json:"value"`
}

// Record accumulates extracted fields across pages. Once a field holds a
// non-missing value, later pages never overwrite it; per-page sightings
// are still recorded for reporting.
//
// Record is not safe for concurrent use; page processing within a job is
// sequential.
type Record struct {
	fields map[string]FieldValue
	pages  map[string][]PageValue
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{
		fields: make(map[string]FieldValue),
		pages:  make(map[string][]PageValue),
	}
}

// Apply merges one page's candidates into the record. Pages must be
// applied in ascending page order for the first-wins rule to hold.
func (r *Record) Apply(pageIndex int, cands map[string]Candidate) {
	for field, c := range cands {
		r.pages[field] = append(r.pages[field], PageValue{PageIndex: pageIndex, Value: c.Value})
		if _, ok := r.fields[field]; !ok {
			r.fields[field] = FieldValue{Value: c.Value, PageIndex: pageIndex, Method: c.Method}
		}
	}
}

// Get returns the merged value for a field. Fields never seen report
// MethodMissing.
func (r *Record) Get(field string) FieldValue {
	if fv, ok := r.fields[field]; ok {
		return fv
	}
	return FieldValue{Method: MethodMissing}
}

// PageValues returns every per-page sighting of a field, in page order.
func (r *Record) PageValues(field string) []PageValue {
	return r.pages[field]
}

// PageValue returns the value a specific page produced for a field, if any.
func (r *Record) PageValue(field string, pageIndex int) (string, bool) {
	for _, pv := range r.pages[field] {
		if pv.PageIndex == pageIndex {
			return pv.Value, true
		}
	}
	return "", false
}

// Consistent reports whether every page that produced a value for the
// field produced the same one. Fields never seen are trivially consistent.
func (r *Record) Consistent(field string) bool {
	seen := make(map[string]bool)
	for _, pv := range r.pages[field] {
		seen[pv.Value] = true
	}
	return len(seen) <= 1
}

// Snapshot is the serializable form of a Record.
type Snapshot struct {
	Fields map[string]FieldValue  `json:"fields"`
	Pages  map[string][]PageValue `json:"pages"`
}

// Snapshot returns a deep copy suitable for persistence.
func (r *Record) Snapshot() Snapshot {
	snap := Snapshot{
		Fields: make(map[string]FieldValue, len(r.fields)),
		Pages:  make(map[string][]PageValue, len(r.pages)),
	}
	for k, v := range r.fields {
		snap.Fields[k] = v
	}
	for k, v := range r.pages {
		pvs := make([]PageValue, len(v))
		copy(pvs, v)
		snap.Pages[k] = pvs
	}
	return snap
}

// FromSnapshot rebuilds a Record from its serialized form.
func FromSnapshot(snap Snapshot) *Record {
	r := NewRecord()
	for k, v := range snap.Fields {
		r.fields[k] = v
	}
	for k, v := range snap.Pages {
		pvs := make([]PageValue, len(v))
		copy(pvs, v)
		sort.Slice(pvs, func(i, j int) bool { return pvs[i].PageIndex < pvs[j].PageIndex })
		r.pages[k] = pvs
	}
	return r
}
