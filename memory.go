package terminology

import (
	"fmt"
	"strings"
	"sync"
)

// MockService is an in-memory Service backed by explicit tables of codes,
// designations, value-set memberships, and supplements. It is fully
// deterministic, which makes it the right backend for tests and offline
// validation runs.
type MockService struct {
	mu          sync.RWMutex
	codes       map[string]map[string]*codeInfo // system -> code -> info
	valueSets   map[string][]memberCoding       // url -> members
	supplements map[string]string               // supplement url -> base url
}

// codeInfo holds what the mock knows about a single code.
type codeInfo struct {
	display      string
	designations []Designation
	properties   map[string]string
	abstract     bool
}

// memberCoding is a (system, code) pair belonging to a ValueSet.
type memberCoding struct {
	system string
	code   string
}

// NewMockService creates an empty mock service. Populate it with AddCode,
// AddCodeWithDesignations, and AddValueSet.
func NewMockService() *MockService {
	return &MockService{
		codes:       make(map[string]map[string]*codeInfo),
		valueSets:   make(map[string][]memberCoding),
		supplements: make(map[string]string),
	}
}

// NewMockServiceWithCommonCodes creates a mock service pre-populated with
// the common FHIR code systems and value sets described in common.go.
func NewMockServiceWithCommonCodes() *MockService {
	s := NewMockService()
	s.addCommonCodes()
	return s
}

// AddCode registers a code with its canonical display.
func (s *MockService) AddCode(system, code, display string) *MockService {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes[system] == nil {
		s.codes[system] = make(map[string]*codeInfo)
	}
	s.codes[system][code] = &codeInfo{display: display}
	return s
}

// AddCodeWithDesignations registers a code with alternative displays.
// Each designation is a (language, value) pair.
func (s *MockService) AddCodeWithDesignations(system, code, display string, designations ...[2]string) *MockService {
	info := &codeInfo{display: display}
	for _, d := range designations {
		info.designations = append(info.designations, Designation{Language: d[0], Value: d[1]})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes[system] == nil {
		s.codes[system] = make(map[string]*codeInfo)
	}
	s.codes[system][code] = info
	return s
}

// AddAbstractCode registers a code marked abstract (not selectable).
func (s *MockService) AddAbstractCode(system, code, display string) *MockService {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes[system] == nil {
		s.codes[system] = make(map[string]*codeInfo)
	}
	s.codes[system][code] = &codeInfo{display: display, abstract: true}
	return s
}

// AddCodeProperty attaches a property to an already-registered code.
// Unknown codes are ignored.
func (s *MockService) AddCodeProperty(system, code, property, value string) *MockService {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.codes[system][code]; ok {
		if info.properties == nil {
			info.properties = make(map[string]string)
		}
		info.properties[property] = value
	}
	return s
}

// AddValueSet registers a ValueSet with its member codings.
func (s *MockService) AddValueSet(url string, members ...Coding) *MockService {
	ms := make([]memberCoding, 0, len(members))
	for _, m := range members {
		ms = append(ms, memberCoding{system: m.System, code: m.Code})
	}
	s.mu.Lock()
	s.valueSets[url] = ms
	s.mu.Unlock()
	return s
}

// ValidateCodeInCodeSystem implements CodeValidator.
func (s *MockService) ValidateCodeInCodeSystem(system, code, display string) (*ValidateResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if base, ok := s.supplements[system]; ok {
		return nil, invalidRequestErr("CodeSystem '%s' is a supplement to '%s' and cannot be used as a Coding system", system, base)
	}

	codes, ok := s.codes[system]
	if !ok {
		return nil, &Error{Kind: KindNotFound, Msg: fmt.Sprintf("CodeSystem '%s' not found", system)}
	}
	info, ok := codes[code]
	if !ok {
		return nil, &Error{Kind: KindNotFound, Msg: fmt.Sprintf("Code '%s' not found in system '%s'", code, system)}
	}

	if display == "" {
		return &ValidateResult{Result: true, Display: info.display}, nil
	}

	if displayMatches(info, display) {
		return &ValidateResult{Result: true, Display: info.display}, nil
	}

	return &ValidateResult{
		Result:  false,
		Message: wrongDisplayMessage(display, system, code, info),
		Display: info.display,
	}, nil
}

// ValidateCodeInValueSet implements CodeValidator.
func (s *MockService) ValidateCodeInValueSet(valueSetURL, system, code, display string) (*ValidateResult, error) {
	s.mu.RLock()
	members, ok := s.valueSets[valueSetURL]
	if !ok {
		s.mu.RUnlock()
		return nil, &Error{Kind: KindNotFound, Msg: fmt.Sprintf("ValueSet '%s' not found", valueSetURL)}
	}

	inSet := false
	for _, m := range members {
		if m.system == system && m.code == code {
			inSet = true
			break
		}
	}
	s.mu.RUnlock()

	if !inSet {
		return &ValidateResult{
			Result:  false,
			Message: fmt.Sprintf("The code provided (%s#%s) was not found in the value set '%s'", system, code, valueSetURL),
		}, nil
	}

	if display != "" {
		return s.ValidateCodeInCodeSystem(system, code, display)
	}

	// Membership is established; a missing CodeSystem definition is not
	// a failure here.
	result, err := s.ValidateCodeInCodeSystem(system, code, "")
	if err != nil {
		return &ValidateResult{Result: true}, nil
	}
	return result, nil
}

// LookupCode implements CodeLookup.
func (s *MockService) LookupCode(system, code string) (*LookupResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes, ok := s.codes[system]
	if !ok {
		return nil, &Error{Kind: KindNotFound, Msg: fmt.Sprintf("CodeSystem '%s' not found", system)}
	}
	info, ok := codes[code]
	if !ok {
		return nil, &Error{Kind: KindNotFound, Msg: fmt.Sprintf("Code '%s' not found in system '%s'", code, system)}
	}

	res := &LookupResult{
		Display:      info.display,
		Abstract:     info.abstract,
		Designations: append([]Designation(nil), info.designations...),
	}
	if len(info.properties) > 0 {
		res.Properties = make(map[string]string, len(info.properties))
		for k, v := range info.properties {
			res.Properties[k] = v
		}
	}
	return res, nil
}

// SupportsCodeSystem implements CapabilityProber.
func (s *MockService) SupportsCodeSystem(system string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[system]
	return ok
}

// SupportsValueSet implements CapabilityProber.
func (s *MockService) SupportsValueSet(valueSetURL string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.valueSets[valueSetURL]
	return ok
}

// IsSupplement implements SupplementRegistry.
func (s *MockService) IsSupplement(system string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	base, ok := s.supplements[system]
	return base, ok
}

// RegisterSupplement implements SupplementRegistry.
func (s *MockService) RegisterSupplement(system, baseURL string) {
	s.mu.Lock()
	s.supplements[system] = baseURL
	s.mu.Unlock()
}

// displayMatches reports whether display equals the canonical display or
// any designation, ASCII case-insensitively.
func displayMatches(info *codeInfo, display string) bool {
	if strings.EqualFold(info.display, display) {
		return true
	}
	for _, d := range info.designations {
		if strings.EqualFold(d.Value, display) {
			return true
		}
	}
	return false
}

// wrongDisplayMessage renders the display-mismatch message, listing every
// acceptable display once.
func wrongDisplayMessage(display, system, code string, info *codeInfo) string {
	valid := []string{info.display}
	for _, d := range info.designations {
		dup := false
		for _, v := range valid {
			if v == d.Value {
				dup = true
				break
			}
		}
		if !dup {
			valid = append(valid, d.Value)
		}
	}

	var validStr string
	if len(valid) == 1 {
		validStr = fmt.Sprintf("'%s'", valid[0])
	} else {
		quoted := make([]string, len(valid))
		for i, v := range valid {
			quoted[i] = fmt.Sprintf("'%s'", v)
		}
		validStr = fmt.Sprintf("one of %d choices: %s", len(quoted), strings.Join(quoted, " or "))
	}

	return fmt.Sprintf("Wrong Display Name '%s' for %s#%s. Valid display is %s", display, system, code, validStr)
}

// Verify interface compliance.
var _ Service = (*MockService)(nil)
