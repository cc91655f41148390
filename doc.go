// Package terminology provides a pluggable FHIR R4 terminology service
// with a persistent disk-backed cache.
//
// The Service interface covers the three operations validators need:
// CodeSystem/$validate-code, ValueSet/$validate-code and CodeSystem/$lookup,
// plus capability probes and CodeSystem-supplement registration. Three
// implementations ship with the package:
//
//   - MockService: deterministic in-memory tables, optionally pre-populated
//     with common FHIR codes. Intended for tests and offline validation.
//   - HTTPService: a client for a real terminology server such as
//     https://tx.fhir.org/r4.
//   - CachedService: a decorator that memoises the three operations in
//     memory and, optionally, in three JSON files on disk.
//
// # Quick Start
//
//	svc := terminology.NewCachedService(
//	    terminology.NewTxService(),
//	    terminology.WithCacheDir(dir),
//	)
//	defer svc.Close()
//
//	res, err := svc.ValidateCodeInCodeSystem("http://loinc.org", "8867-4", "Heart rate")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !res.Result {
//	    fmt.Println(res.Message)
//	}
//
// # Caching
//
// CachedService never caches failures: a NetworkError or ServerError leaves
// the cache untouched so the next call retries the inner service. Cache
// entries have no TTL; delete the cache directory to invalidate them.
//
// # Supplements
//
// A CodeSystem supplement layers designations and properties onto a base
// CodeSystem; it is not itself a valid Coding.system. Register supplements
// on the inner service before wrapping it in CachedService; the decorator
// shares the inner service and delegates registration.
//
// The companion packages ffq and modelinfo provide the FHIR FreeForm Query
// compiler and the ModelInfo XML parser.
package terminology
