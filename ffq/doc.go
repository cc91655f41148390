// Package ffq parses FHIR FreeForm Queries, a compact textual grammar
// for describing code selections, and translates them into the compose
// element of a ValueSet resource.
//
// A query is a list of @alias headers followed by one expression over
// clauses. A clause names a code system and selects codes from it:
//
//	@alias sct = http://snomed.info/sct|20250131
//	sct: << 73211009 | sct: in #dm - sct: << 44054006
//
// Parse produces the AST; Translate lowers it to a Compose ready for
// embedding in a ValueSet. TranslateQuery does both:
//
//	compose, err := ffq.TranslateQuery("http://snomed.info/sct: < 22298006")
//
// Translation never fails. Expression shapes the compose model cannot
// express (set operations between arbitrary clauses beyond union and
// difference) degrade to concatenated components rather than errors.
package ffq
