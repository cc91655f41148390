package terminology

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// countingService wraps a Service and counts how many calls reach it.
type countingService struct {
	Service
	mu    sync.Mutex
	calls map[string]int
}

func newCountingService(inner Service) *countingService {
	return &countingService{Service: inner, calls: make(map[string]int)}
}

func (s *countingService) count(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *countingService) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *countingService) ValidateCodeInCodeSystem(system, code, display string) (*ValidateResult, error) {
	s.count("cs")
	return s.Service.ValidateCodeInCodeSystem(system, code, display)
}

func (s *countingService) ValidateCodeInValueSet(valueSetURL, system, code, display string) (*ValidateResult, error) {
	s.count("vs")
	return s.Service.ValidateCodeInValueSet(valueSetURL, system, code, display)
}

func (s *countingService) LookupCode(system, code string) (*LookupResult, error) {
	s.count("lookup")
	return s.Service.LookupCode(system, code)
}

func TestCachedServiceHitMissAccounting(t *testing.T) {
	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithoutPersistence())

	for i := 0; i < 2; i++ {
		result, err := cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "Male")
		if err != nil {
			t.Fatalf("ValidateCodeInCodeSystem: %v", err)
		}
		if !result.Result {
			t.Fatalf("expected valid result, got %q", result.Message)
		}
	}

	if got := inner.callCount("cs"); got != 1 {
		t.Errorf("inner service called %d times, want 1", got)
	}
	hits, misses, rate := cache.CacheMetrics()
	if hits != 1 || misses != 1 || rate != 0.5 {
		t.Errorf("metrics = (%d, %d, %v), want (1, 1, 0.5)", hits, misses, rate)
	}
}

func TestCachedServiceDistinctKeys(t *testing.T) {
	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithoutPersistence())

	// Different display means a different key.
	cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "")
	cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "Male")
	cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "Masculine")

	if got := inner.callCount("cs"); got != 3 {
		t.Errorf("inner service called %d times, want 3", got)
	}

	// The mismatch result is cached too; it is a successful operation.
	result, _ := cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "Masculine")
	if result.Result {
		t.Error("expected cached mismatch")
	}
	if got := inner.callCount("cs"); got != 3 {
		t.Errorf("inner service called %d times after repeat, want 3", got)
	}
}

func TestCachedServiceErrorsNotCached(t *testing.T) {
	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithoutPersistence())

	for i := 0; i < 3; i++ {
		_, err := cache.LookupCode("http://example.org/unknown", "x")
		if !IsNotFound(err) {
			t.Fatalf("expected not-found error, got %v", err)
		}
	}
	if got := inner.callCount("lookup"); got != 3 {
		t.Errorf("failed lookups must reach the inner service every time, got %d calls", got)
	}

	cs, _, lookup := cache.Len()
	if cs != 0 || lookup != 0 {
		t.Errorf("failures must not be stored, got %d/%d entries", cs, lookup)
	}
}

func TestCachedServiceValueSetCaching(t *testing.T) {
	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithoutPersistence())

	for i := 0; i < 2; i++ {
		result, err := cache.ValidateCodeInValueSet(ValueSetAgeUnits, SystemUCUM, "mo", "")
		if err != nil {
			t.Fatalf("ValidateCodeInValueSet: %v", err)
		}
		if !result.Result {
			t.Fatalf("expected member, got %q", result.Message)
		}
	}
	if got := inner.callCount("vs"); got != 1 {
		t.Errorf("inner service called %d times, want 1", got)
	}
}

func TestCachedServicePersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inner := NewMockServiceWithCommonCodes()

	cache := NewCachedService(inner, WithCacheDir(dir))
	if _, err := cache.ValidateCodeInCodeSystem(SystemLOINC, "8867-4", "Heart rate"); err != nil {
		t.Fatalf("ValidateCodeInCodeSystem: %v", err)
	}
	if _, err := cache.ValidateCodeInValueSet(ValueSetAgeUnits, SystemUCUM, "a", ""); err != nil {
		t.Fatalf("ValidateCodeInValueSet: %v", err)
	}
	if _, err := cache.LookupCode(SystemLOINC, "8867-4"); err != nil {
		t.Fatalf("LookupCode: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{codeSystemCacheFile, valueSetCacheFile, lookupCacheFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected cache file %s: %v", name, err)
		}
	}

	// A fresh cache over an empty inner service must answer from disk.
	empty := newCountingService(NewMockService())
	reloaded := NewCachedService(empty, WithCacheDir(dir))

	result, err := reloaded.ValidateCodeInCodeSystem(SystemLOINC, "8867-4", "Heart rate")
	if err != nil {
		t.Fatalf("ValidateCodeInCodeSystem after reload: %v", err)
	}
	if !result.Result || result.Display != "Heart rate" {
		t.Errorf("reloaded result = %+v", result)
	}

	lookup, err := reloaded.LookupCode(SystemLOINC, "8867-4")
	if err != nil {
		t.Fatalf("LookupCode after reload: %v", err)
	}
	if len(lookup.Designations) != 2 {
		t.Errorf("designations lost in round trip: %+v", lookup)
	}

	if got := empty.callCount("cs") + empty.callCount("lookup"); got != 0 {
		t.Errorf("inner service reached %d times, want 0", got)
	}
	hits, _, _ := reloaded.CacheMetrics()
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestCachedServiceCorruptedFileTolerated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, codeSystemCacheFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithCacheDir(dir))

	result, err := cache.ValidateCodeInCodeSystem(SystemAdministrativeGender, "male", "")
	if err != nil {
		t.Fatalf("ValidateCodeInCodeSystem: %v", err)
	}
	if !result.Result {
		t.Errorf("expected valid result, got %q", result.Message)
	}
	if got := inner.callCount("cs"); got != 1 {
		t.Errorf("corrupted file should mean a cold start, got %d inner calls", got)
	}
}

func TestCachedServiceSupplementDelegation(t *testing.T) {
	inner := NewMockServiceWithCommonCodes()
	cache := NewCachedService(inner, WithoutPersistence())

	cache.RegisterSupplement("http://example.org/CodeSystem/loinc-nl", SystemLOINC)
	if base, ok := inner.IsSupplement("http://example.org/CodeSystem/loinc-nl"); !ok || base != SystemLOINC {
		t.Fatalf("registration must land on the inner service, got %q, %v", base, ok)
	}

	_, err := cache.ValidateCodeInCodeSystem("http://example.org/CodeSystem/loinc-nl", "8867-4", "")
	if !IsInvalidRequest(err) {
		t.Fatalf("expected invalid-request error, got %v", err)
	}
	cs, _, _ := cache.Len()
	if cs != 0 {
		t.Errorf("supplement rejections must not be cached, got %d entries", cs)
	}
}

func TestCachedServiceClear(t *testing.T) {
	inner := newCountingService(NewMockServiceWithCommonCodes())
	cache := NewCachedService(inner, WithoutPersistence())

	cache.ValidateCodeInCodeSystem(SystemUCUM, "kg", "")
	cache.Clear()
	cache.ValidateCodeInCodeSystem(SystemUCUM, "kg", "")

	if got := inner.callCount("cs"); got != 2 {
		t.Errorf("inner service called %d times after Clear, want 2", got)
	}
}

func TestCachedServiceConcurrentAccess(t *testing.T) {
	inner := NewMockServiceWithCommonCodes()
	cache := NewCachedService(inner, WithoutPersistence())

	units := []string{"kg", "cm", "m", "a", "mo", "wk", "d", "h", "min", "s"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				unit := units[(i+j)%len(units)]
				if _, err := cache.ValidateCodeInCodeSystem(SystemUCUM, unit, ""); err != nil {
					t.Errorf("ValidateCodeInCodeSystem(%s): %v", unit, err)
					return
				}
				if _, err := cache.LookupCode(SystemUCUM, unit); err != nil {
					t.Errorf("LookupCode(%s): %v", unit, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	hits, misses, _ := cache.CacheMetrics()
	if hits+misses != 8*100*2 {
		t.Errorf("accounted %d operations, want %d", hits+misses, 8*100*2)
	}
	cs, _, lookup := cache.Len()
	if cs != len(units) || lookup != len(units) {
		t.Errorf("entries = %d/%d, want %d each", cs, lookup, len(units))
	}
}

func TestCacheKeys(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{codeSystemKey("http://loinc.org", "8867-4", "Heart rate"), "cs:http://loinc.org#8867-4:Heart rate"},
		{codeSystemKey("http://loinc.org", "8867-4", ""), "cs:http://loinc.org#8867-4:"},
		{valueSetKey("http://hl7.org/fhir/ValueSet/age-units", "http://unitsofmeasure.org", "a", ""), "vs:http://hl7.org/fhir/ValueSet/age-units|http://unitsofmeasure.org#a:"},
		{lookupKey("http://loinc.org", "8867-4"), "lookup:http://loinc.org#8867-4"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("key = %q, want %q", c.got, c.want)
		}
	}
}

func TestCacheMetricsSnapshot(t *testing.T) {
	var m CacheMetrics
	if _, _, rate := m.Snapshot(); rate != 0 {
		t.Errorf("empty metrics rate = %v, want 0", rate)
	}
	m.RecordHit()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	hits, misses, rate := m.Snapshot()
	if hits != 3 || misses != 1 || rate != 0.75 {
		t.Errorf("snapshot = (%d, %d, %v)", hits, misses, rate)
	}
	m.Reset()
	if h, ms, _ := m.Snapshot(); h != 0 || ms != 0 {
		t.Errorf("after Reset: (%d, %d)", h, ms)
	}
}

func BenchmarkCachedValidateHit(b *testing.B) {
	cache := NewCachedService(NewMockServiceWithCommonCodes(), WithoutPersistence())
	cache.ValidateCodeInCodeSystem(SystemLOINC, "8867-4", "")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.ValidateCodeInCodeSystem(SystemLOINC, "8867-4", "")
	}
}

func BenchmarkCachedValidateParallel(b *testing.B) {
	cache := NewCachedService(NewMockServiceWithCommonCodes(), WithoutPersistence())
	units := []string{"kg", "cm", "m", "a", "mo", "wk", "d", "h", "min", "s"}
	for _, u := range units {
		cache.ValidateCodeInCodeSystem(SystemUCUM, u, "")
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			cache.ValidateCodeInCodeSystem(SystemUCUM, units[i%len(units)], "")
			i++
		}
	})
}
