package ffq

// FHIR ValueSet.compose output structures. Field names and omission rules
// follow the R4 wire format so a Compose can be embedded directly into a
// ValueSet resource.

// FilterOp is a ValueSet filter operator code.
type FilterOp string

const (
	OpEquals       FilterOp = "="
	OpIsA          FilterOp = "is-a"
	OpDescendentOf FilterOp = "descendent-of"
	OpIsNotA       FilterOp = "is-not-a"
	OpRegex        FilterOp = "regex"
	OpIn           FilterOp = "in"
	OpNotIn        FilterOp = "not-in"
	OpGeneralizes  FilterOp = "generalizes"
	OpExists       FilterOp = "exists"
)

// Compose is the compose element of a ValueSet resource.
type Compose struct {
	Inactive *bool       `json:"inactive,omitempty"`
	Include  []Component `json:"include,omitempty"`
	Exclude  []Component `json:"exclude,omitempty"`
}

// Component selects codes from one system, by enumeration, by filter, or
// by reference to other ValueSets.
type Component struct {
	System   string       `json:"system,omitempty"`
	Version  string       `json:"version,omitempty"`
	Concept  []ConceptRef `json:"concept,omitempty"`
	Filter   []Filter     `json:"filter,omitempty"`
	ValueSet []string     `json:"valueSet,omitempty"`
}

// ConceptRef names a single code.
type ConceptRef struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// Filter selects codes by property.
type Filter struct {
	Property string   `json:"property"`
	Op       FilterOp `json:"op"`
	Value    string   `json:"value"`
}
