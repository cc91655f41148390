package terminology

// ValidateResult holds the outcome of a $validate-code operation.
//
// A false Result with a Message is a normal outcome ("the code is wrong"),
// not an error; only failures of the mechanism surface as *Error.
type ValidateResult struct {
	// Result is true when the code is valid (and, if a display was
	// supplied, the display matches).
	Result bool `json:"result"`

	// Message explains a false Result.
	Message string `json:"message,omitempty"`

	// Display carries the canonical display for the code when known,
	// regardless of Result.
	Display string `json:"display,omitempty"`
}

// LookupResult holds the outcome of a CodeSystem/$lookup operation.
type LookupResult struct {
	// Display is the canonical display name for the code.
	Display string `json:"display,omitempty"`

	// Abstract reports whether the code is abstract (not selectable).
	Abstract bool `json:"abstract,omitempty"`

	// Properties maps property codes to their rendered values.
	Properties map[string]string `json:"properties,omitempty"`

	// Designations lists alternative displays in document order.
	Designations []Designation `json:"designations,omitempty"`
}

// Designation is an alternative display for a code, typically language-
// or use-specific.
type Designation struct {
	Language string `json:"language,omitempty"`
	Use      string `json:"use,omitempty"`
	Value    string `json:"value"`
}

// Coding identifies a single code from a system, optionally with the
// display the source document carried.
type Coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// CodeValidator validates codes against CodeSystems and ValueSets.
//
// An empty display argument means "no display supplied"; a non-empty
// display must match the canonical display or a registered designation
// case-insensitively for Result to be true.
type CodeValidator interface {
	// ValidateCodeInCodeSystem implements CodeSystem/$validate-code.
	ValidateCodeInCodeSystem(system, code, display string) (*ValidateResult, error)

	// ValidateCodeInValueSet implements ValueSet/$validate-code.
	ValidateCodeInValueSet(valueSetURL, system, code, display string) (*ValidateResult, error)
}

// CodeLookup looks up a code's canonical metadata.
type CodeLookup interface {
	// LookupCode implements CodeSystem/$lookup.
	LookupCode(system, code string) (*LookupResult, error)
}

// CapabilityProber answers whether a service can speak for a CodeSystem
// or ValueSet. Probes never fail.
type CapabilityProber interface {
	SupportsCodeSystem(system string) bool
	SupportsValueSet(valueSetURL string) bool
}

// SupplementRegistry tracks CodeSystem supplements. A supplement extends a
// base CodeSystem with designations and properties; it must never appear
// as a Coding.system.
type SupplementRegistry interface {
	// IsSupplement reports the base CodeSystem URL a supplement extends.
	IsSupplement(system string) (baseURL string, ok bool)

	// RegisterSupplement records that system supplements baseURL.
	RegisterSupplement(system, baseURL string)
}

// Service combines the full terminology capability set. All
// implementations in this package are safe for concurrent use.
type Service interface {
	CodeValidator
	CodeLookup
	CapabilityProber
	SupplementRegistry
}
