package modelinfo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRoot is returned when the document contains no modelInfo element.
var ErrNoRoot = errors.New("modelinfo: missing modelInfo root element")

// Parse decodes a ModelInfo XML document from r. Unrecognised elements
// and attributes are skipped; malformed XML or a premature end of input
// returns an error carrying the decoder's position.
func Parse(r io.Reader) (*ModelInfo, error) {
	d := xml.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, ErrNoRoot
		}
		if err != nil {
			return nil, fmt.Errorf("modelinfo: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "modelInfo" {
			continue
		}
		info, err := parseModelInfo(d, start)
		if err != nil {
			return nil, fmt.Errorf("modelinfo: %w", err)
		}
		return info, nil
	}
}

// ParseString decodes a ModelInfo XML document from a string.
func ParseString(s string) (*ModelInfo, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes decodes a ModelInfo XML document from a byte slice.
func ParseBytes(data []byte) (*ModelInfo, error) {
	return Parse(bytes.NewReader(data))
}

func parseModelInfo(d *xml.Decoder, start xml.StartElement) (*ModelInfo, error) {
	info := &ModelInfo{}
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		switch attr.Name.Local {
		case "name":
			info.Name = attr.Value
		case "version":
			info.Version = attr.Value
		case "url":
			info.URL = attr.Value
		case "schemaLocation":
			info.SchemaLocation = attr.Value
		case "targetQualifier":
			info.TargetQualifier = attr.Value
		case "patientClassName":
			info.PatientClassName = attr.Value
		case "patientClassIdentifier":
			info.PatientClassIdentifier = attr.Value
		case "patientBirthDatePropertyName":
			info.PatientBirthDatePropertyName = attr.Value
		case "caseSensitive":
			info.CaseSensitive = boolAttr(attr.Value)
		case "strictRetrievable":
			info.StrictRetrievable = boolAttr(attr.Value)
		case "defaultContext":
			info.DefaultContext = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "requiredModelInfo":
				info.RequiredModelInfo = append(info.RequiredModelInfo, parseModelSpecifier(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "typeInfo":
				ti, err := parseTypeInfo(d, t)
				if err != nil {
					return nil, err
				}
				if ti != nil {
					info.TypeInfos = append(info.TypeInfos, ti)
				}
			case "conversionInfo":
				info.ConversionInfo = append(info.ConversionInfo, parseConversionInfo(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "contextInfo":
				info.ContextInfo = append(info.ContextInfo, parseContextInfo(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseModelSpecifier(e xml.StartElement) ModelSpecifier {
	var spec ModelSpecifier
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "name":
			spec.Name = attr.Value
		case "version":
			spec.Version = attr.Value
		}
	}
	return spec
}

func parseConversionInfo(e xml.StartElement) ConversionInfo {
	var conv ConversionInfo
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "fromType":
			conv.FromType = attr.Value
		case "toType":
			conv.ToType = attr.Value
		case "functionName":
			conv.FunctionName = attr.Value
		}
	}
	return conv
}

func parseContextInfo(e xml.StartElement) ContextInfo {
	var ctx ContextInfo
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "name":
			ctx.Name = attr.Value
		case "keyElement":
			ctx.KeyElement = attr.Value
		case "birthDateElement":
			ctx.BirthDateElement = attr.Value
		}
	}
	return ctx
}

// xsiType returns the value of the xsi:type discriminator. Any namespaced
// "type" attribute qualifies; a bare "type" attribute is data, not a
// discriminator.
func xsiType(e xml.StartElement) string {
	for _, attr := range e.Attr {
		if attr.Name.Local == "type" && attr.Name.Space != "" && attr.Name.Space != "xmlns" {
			return attr.Value
		}
	}
	return ""
}

func boolAttr(value string) *bool {
	b := value == "true"
	return &b
}

func parseTypeInfo(d *xml.Decoder, e xml.StartElement) (TypeInfo, error) {
	switch xsiType(e) {
	case "ClassInfo":
		return parseClassInfo(d, e)
	case "SimpleTypeInfo":
		return parseSimpleTypeInfo(d, e)
	case "ProfileInfo":
		return parseProfileInfo(d, e)
	case "IntervalTypeInfo":
		return parseIntervalTypeInfo(d, e)
	case "ListTypeInfo":
		return parseListTypeInfo(d, e)
	case "TupleTypeInfo":
		return parseTupleTypeInfo(d, e)
	case "ChoiceTypeInfo":
		return parseChoiceTypeInfo(d, e)
	default:
		// No recognised discriminator: consume and drop.
		return nil, d.Skip()
	}
}

func parseClassInfo(d *xml.Decoder, e xml.StartElement) (*ClassInfo, error) {
	info := &ClassInfo{}
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "namespace":
			info.Namespace = attr.Value
		case "name":
			info.Name = attr.Value
		case "identifier":
			info.Identifier = attr.Value
		case "label":
			info.Label = attr.Value
		case "baseType":
			info.BaseType = attr.Value
		case "retrievable":
			info.Retrievable = boolAttr(attr.Value)
		case "primaryCodePath":
			info.PrimaryCodePath = attr.Value
		case "primaryValueSetPath":
			info.PrimaryValueSetPath = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "element":
				elem, err := parseClassElement(d, t)
				if err != nil {
					return nil, err
				}
				info.Element = append(info.Element, elem)
			case "parameter":
				info.Parameter = append(info.Parameter, parseTypeParameterInfo(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "contextRelationship":
				info.ContextRelationship = append(info.ContextRelationship, parseRelationshipInfo(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "targetContextRelationship":
				info.TargetContextRelationship = append(info.TargetContextRelationship, parseRelationshipInfo(t))
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case "baseTypeSpecifier":
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return nil, err
				}
				if spec != nil {
					info.BaseTypeSpecifier = spec
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseProfileInfo(d *xml.Decoder, e xml.StartElement) (*ProfileInfo, error) {
	info := &ProfileInfo{}
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "namespace":
			info.Namespace = attr.Value
		case "name":
			info.Name = attr.Value
		case "identifier":
			info.Identifier = attr.Value
		case "label":
			info.Label = attr.Value
		case "baseType":
			info.BaseType = attr.Value
		case "retrievable":
			info.Retrievable = boolAttr(attr.Value)
		case "primaryCodePath":
			info.PrimaryCodePath = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "element":
				elem, err := parseClassElement(d, t)
				if err != nil {
					return nil, err
				}
				info.Element = append(info.Element, elem)
			case "baseTypeSpecifier":
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return nil, err
				}
				if spec != nil {
					info.BaseTypeSpecifier = spec
				}
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseSimpleTypeInfo(d *xml.Decoder, e xml.StartElement) (*SimpleTypeInfo, error) {
	info := &SimpleTypeInfo{}
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "namespace":
			info.Namespace = attr.Value
		case "name":
			info.Name = attr.Value
		case "baseType":
			info.BaseType = attr.Value
		}
	}
	return info, d.Skip()
}

func parseIntervalTypeInfo(d *xml.Decoder, e xml.StartElement) (*IntervalTypeInfo, error) {
	info := &IntervalTypeInfo{}
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "baseType":
			info.BaseType = attr.Value
		case "pointType":
			info.PointType = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "pointTypeSpecifier" {
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return nil, err
				}
				if spec != nil {
					info.PointTypeSpecifier = spec
				}
			} else if err := d.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseListTypeInfo(d *xml.Decoder, e xml.StartElement) (*ListTypeInfo, error) {
	info := &ListTypeInfo{}
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "baseType":
			info.BaseType = attr.Value
		case "elementType":
			info.ElementType = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "elementTypeSpecifier" {
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return nil, err
				}
				if spec != nil {
					info.ElementTypeSpecifier = spec
				}
			} else if err := d.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseTupleTypeInfo(d *xml.Decoder, e xml.StartElement) (*TupleTypeInfo, error) {
	info := &TupleTypeInfo{}
	for _, attr := range e.Attr {
		if attr.Name.Local == "baseType" {
			info.BaseType = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "element" {
				elem, err := parseTupleElement(d, t)
				if err != nil {
					return nil, err
				}
				info.Element = append(info.Element, elem)
			} else if err := d.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseChoiceTypeInfo(d *xml.Decoder, e xml.StartElement) (*ChoiceTypeInfo, error) {
	info := &ChoiceTypeInfo{}
	for _, attr := range e.Attr {
		if attr.Name.Local == "baseType" {
			info.BaseType = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "choice" || t.Name.Local == "type" {
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return nil, err
				}
				if spec != nil {
					info.Choice = append(info.Choice, spec)
				}
			} else if err := d.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return info, nil
		}
	}
}

func parseTypeParameterInfo(e xml.StartElement) TypeParameterInfo {
	var info TypeParameterInfo
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "name":
			info.Name = attr.Value
		case "constraint":
			info.Constraint = attr.Value
		case "constraintType":
			info.ConstraintType = attr.Value
		}
	}
	return info
}

func parseRelationshipInfo(e xml.StartElement) RelationshipInfo {
	var info RelationshipInfo
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "context":
			info.Context = attr.Value
		case "relatedKeyElement":
			info.RelatedKeyElement = attr.Value
		}
	}
	return info
}

func parseClassElement(d *xml.Decoder, e xml.StartElement) (ClassElement, error) {
	var elem ClassElement
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "name":
			elem.Name = attr.Value
		case "elementType":
			elem.ElementType = attr.Value
		case "type":
			if attr.Name.Space == "" {
				elem.TypeName = attr.Value
			}
		case "prohibited":
			elem.Prohibited = boolAttr(attr.Value)
		case "oneBased":
			elem.OneBased = boolAttr(attr.Value)
		case "target":
			elem.Target = attr.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return elem, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "elementTypeSpecifier":
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return elem, err
				}
				if spec != nil {
					elem.ElementTypeSpecifier = spec
				}
			case "typeSpecifier":
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return elem, err
				}
				if spec != nil {
					elem.TypeSpec = spec
				}
			default:
				if err := d.Skip(); err != nil {
					return elem, err
				}
			}
		case xml.EndElement:
			return elem, nil
		}
	}
}

func parseTupleElement(d *xml.Decoder, e xml.StartElement) (TupleElement, error) {
	var elem TupleElement
	for _, attr := range e.Attr {
		switch attr.Name.Local {
		case "name":
			elem.Name = attr.Value
		case "elementType":
			elem.ElementType = attr.Value
		case "type":
			if attr.Name.Space == "" {
				elem.TypeName = attr.Value
			}
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return elem, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "elementTypeSpecifier" {
				spec, err := parseTypeSpecifier(d, t)
				if err != nil {
					return elem, err
				}
				if spec != nil {
					elem.ElementTypeSpecifier = spec
				}
			} else if err := d.Skip(); err != nil {
				return elem, err
			}
		case xml.EndElement:
			return elem, nil
		}
	}
}

// parseTypeSpecifier dispatches a specifier element on its xsi:type and
// consumes the element fully. Unrecognised discriminators yield nil.
func parseTypeSpecifier(d *xml.Decoder, e xml.StartElement) (TypeSpecifier, error) {
	switch xsiType(e) {
	case "NamedTypeSpecifier":
		spec := &NamedTypeSpecifier{}
		for _, attr := range e.Attr {
			switch attr.Name.Local {
			case "modelName":
				spec.ModelName = attr.Value
			case "namespace":
				spec.Namespace = attr.Value
			case "name":
				spec.Name = attr.Value
			}
		}
		return spec, d.Skip()

	case "ListTypeSpecifier":
		spec := &ListTypeSpecifier{}
		for _, attr := range e.Attr {
			if attr.Name.Local == "elementType" {
				spec.ElementType = attr.Value
			}
		}
		for {
			tok, err := d.Token()
			if err != nil {
				return nil, err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == "elementTypeSpecifier" {
					inner, err := parseTypeSpecifier(d, t)
					if err != nil {
						return nil, err
					}
					if inner != nil {
						spec.ElementTypeSpecifier = inner
					}
				} else if err := d.Skip(); err != nil {
					return nil, err
				}
			case xml.EndElement:
				return spec, nil
			}
		}

	case "IntervalTypeSpecifier":
		spec := &IntervalTypeSpecifier{}
		for _, attr := range e.Attr {
			if attr.Name.Local == "pointType" {
				spec.PointType = attr.Value
			}
		}
		for {
			tok, err := d.Token()
			if err != nil {
				return nil, err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == "pointTypeSpecifier" {
					inner, err := parseTypeSpecifier(d, t)
					if err != nil {
						return nil, err
					}
					if inner != nil {
						spec.PointTypeSpecifier = inner
					}
				} else if err := d.Skip(); err != nil {
					return nil, err
				}
			case xml.EndElement:
				return spec, nil
			}
		}

	case "ChoiceTypeSpecifier":
		spec := &ChoiceTypeSpecifier{}
		for {
			tok, err := d.Token()
			if err != nil {
				return nil, err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == "choice" {
					inner, err := parseTypeSpecifier(d, t)
					if err != nil {
						return nil, err
					}
					if inner != nil {
						spec.Choice = append(spec.Choice, inner)
					}
				} else if err := d.Skip(); err != nil {
					return nil, err
				}
			case xml.EndElement:
				return spec, nil
			}
		}

	case "TupleTypeSpecifier":
		spec := &TupleTypeSpecifier{}
		for {
			tok, err := d.Token()
			if err != nil {
				return nil, err
			}
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == "element" {
					elem, err := parseTupleElement(d, t)
					if err != nil {
						return nil, err
					}
					spec.Element = append(spec.Element, elem)
				} else if err := d.Skip(); err != nil {
					return nil, err
				}
			case xml.EndElement:
				return spec, nil
			}
		}

	default:
		return nil, d.Skip()
	}
}
