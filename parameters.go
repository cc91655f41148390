package terminology

import (
	"github.com/buger/jsonparser"
)

// Readers for FHIR Parameters resources, the response shape of
// $validate-code and $lookup. Only the parameters the operations define
// are extracted; everything else in the body is ignored.

// parseValidateCodeResponse extracts result, message, and display from a
// $validate-code Parameters body. A missing result parameter means false.
func parseValidateCodeResponse(body []byte) (*ValidateResult, error) {
	res := &ValidateResult{}

	_, err := jsonparser.ArrayEach(body, func(param []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(param, "name")
		if err != nil {
			return
		}
		switch name {
		case "result":
			if v, err := jsonparser.GetBoolean(param, "valueBoolean"); err == nil {
				res.Result = v
			}
		case "message":
			if v, err := jsonparser.GetString(param, "valueString"); err == nil {
				res.Message = v
			}
		case "display":
			if v, err := jsonparser.GetString(param, "valueString"); err == nil {
				res.Display = v
			}
		}
	}, "parameter")
	if err != nil {
		return nil, serverErr("invalid Parameters response: %v", err)
	}

	return res, nil
}

// parseLookupResponse extracts display, abstract, properties, and
// designations from a $lookup Parameters body.
func parseLookupResponse(body []byte) (*LookupResult, error) {
	res := &LookupResult{}

	_, err := jsonparser.ArrayEach(body, func(param []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(param, "name")
		if err != nil {
			return
		}
		switch name {
		case "display":
			if v, err := jsonparser.GetString(param, "valueString"); err == nil {
				res.Display = v
			}
		case "abstract":
			if v, err := jsonparser.GetBoolean(param, "valueBoolean"); err == nil {
				res.Abstract = v
			}
		case "property":
			code, value := parsePropertyParts(param)
			if code != "" && value != "" {
				if res.Properties == nil {
					res.Properties = make(map[string]string)
				}
				res.Properties[code] = value
			}
		case "designation":
			if d, ok := parseDesignationParts(param); ok {
				res.Designations = append(res.Designations, d)
			}
		}
	}, "parameter")
	if err != nil {
		return nil, serverErr("invalid Parameters response: %v", err)
	}

	return res, nil
}

// parsePropertyParts reads the code and value sub-parts of a property
// parameter. The value coalesces valueString and valueCode.
func parsePropertyParts(param []byte) (code, value string) {
	_, _ = jsonparser.ArrayEach(param, func(part []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(part, "name")
		if err != nil {
			return
		}
		switch name {
		case "code":
			if v, err := jsonparser.GetString(part, "valueCode"); err == nil {
				code = v
			}
		case "value":
			if v, err := jsonparser.GetString(part, "valueString"); err == nil {
				value = v
			} else if v, err := jsonparser.GetString(part, "valueCode"); err == nil {
				value = v
			}
		}
	}, "part")
	return code, value
}

// parseDesignationParts reads a designation parameter. Designations
// without a value part are dropped.
func parseDesignationParts(param []byte) (Designation, bool) {
	var d Designation
	hasValue := false

	_, _ = jsonparser.ArrayEach(param, func(part []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(part, "name")
		if err != nil {
			return
		}
		switch name {
		case "language":
			if v, err := jsonparser.GetString(part, "valueCode"); err == nil {
				d.Language = v
			}
		case "use":
			if v, err := jsonparser.GetString(part, "valueCoding", "code"); err == nil {
				d.Use = v
			}
		case "value":
			if v, err := jsonparser.GetString(part, "valueString"); err == nil {
				d.Value = v
				hasValue = true
			}
		}
	}, "part")

	return d, hasValue
}
