package terminology

import "testing"

func TestParseValidateCodeResponse(t *testing.T) {
	body := []byte(`{
		"resourceType": "Parameters",
		"parameter": [
			{"name": "result", "valueBoolean": true},
			{"name": "display", "valueString": "Heart rate"}
		]
	}`)

	res, err := parseValidateCodeResponse(body)
	if err != nil {
		t.Fatalf("parseValidateCodeResponse: %v", err)
	}
	if !res.Result {
		t.Error("expected result true")
	}
	if res.Display != "Heart rate" {
		t.Errorf("display = %q", res.Display)
	}
	if res.Message != "" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestParseValidateCodeResponseFailure(t *testing.T) {
	body := []byte(`{
		"resourceType": "Parameters",
		"parameter": [
			{"name": "result", "valueBoolean": false},
			{"name": "message", "valueString": "Unknown code"}
		]
	}`)

	res, err := parseValidateCodeResponse(body)
	if err != nil {
		t.Fatalf("parseValidateCodeResponse: %v", err)
	}
	if res.Result {
		t.Error("expected result false")
	}
	if res.Message != "Unknown code" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestParseValidateCodeResponseMissingResult(t *testing.T) {
	// A server that omits result means failure.
	body := []byte(`{"resourceType": "Parameters", "parameter": [{"name": "display", "valueString": "X"}]}`)

	res, err := parseValidateCodeResponse(body)
	if err != nil {
		t.Fatalf("parseValidateCodeResponse: %v", err)
	}
	if res.Result {
		t.Error("missing result must default to false")
	}
}

func TestParseValidateCodeResponseMalformed(t *testing.T) {
	for _, body := range []string{
		`{"resourceType": "Parameters"}`,
		`{"parameter": "not-an-array"}`,
		`not json`,
	} {
		if _, err := parseValidateCodeResponse([]byte(body)); !IsServerError(err) {
			t.Errorf("body %q: expected server error, got %v", body, err)
		}
	}
}

func TestParseLookupResponse(t *testing.T) {
	body := []byte(`{
		"resourceType": "Parameters",
		"parameter": [
			{"name": "display", "valueString": "Heart rate"},
			{"name": "abstract", "valueBoolean": false},
			{"name": "property", "part": [
				{"name": "code", "valueCode": "status"},
				{"name": "value", "valueString": "active"}
			]},
			{"name": "property", "part": [
				{"name": "code", "valueCode": "class"},
				{"name": "value", "valueCode": "clinical"}
			]},
			{"name": "designation", "part": [
				{"name": "language", "valueCode": "en-US"},
				{"name": "use", "valueCoding": {"system": "http://snomed.info/sct", "code": "900000000000013009"}},
				{"name": "value", "valueString": "Pulse"}
			]},
			{"name": "designation", "part": [
				{"name": "language", "valueCode": "de"}
			]}
		]
	}`)

	res, err := parseLookupResponse(body)
	if err != nil {
		t.Fatalf("parseLookupResponse: %v", err)
	}
	if res.Display != "Heart rate" {
		t.Errorf("display = %q", res.Display)
	}
	if res.Abstract {
		t.Error("abstract should be false")
	}
	if res.Properties["status"] != "active" {
		t.Errorf("properties = %v", res.Properties)
	}
	// value part coalesces valueString and valueCode
	if res.Properties["class"] != "clinical" {
		t.Errorf("properties = %v", res.Properties)
	}
	if len(res.Designations) != 1 {
		t.Fatalf("designation without a value must be dropped, got %d", len(res.Designations))
	}
	d := res.Designations[0]
	if d.Language != "en-US" || d.Use != "900000000000013009" || d.Value != "Pulse" {
		t.Errorf("designation = %+v", d)
	}
}
