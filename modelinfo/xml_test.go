package modelinfo

import (
	"strings"
	"testing"
)

func TestParseRootAttributes(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           name="FHIR"
           version="4.0.1"
           url="http://hl7.org/fhir"
           patientClassName="FHIR.Patient"
           patientBirthDatePropertyName="birthDate.value"
           caseSensitive="true">
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if info.Name != "FHIR" || info.Version != "4.0.1" || info.URL != "http://hl7.org/fhir" {
		t.Errorf("identity = %q/%q/%q", info.Name, info.Version, info.URL)
	}
	if info.PatientClassName != "FHIR.Patient" {
		t.Errorf("patientClassName = %q", info.PatientClassName)
	}
	if info.PatientBirthDatePropertyName != "birthDate.value" {
		t.Errorf("patientBirthDatePropertyName = %q", info.PatientBirthDatePropertyName)
	}
	if info.CaseSensitive == nil || !*info.CaseSensitive {
		t.Errorf("caseSensitive = %v", info.CaseSensitive)
	}
}

func TestParseRequiredModelInfo(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1" name="FHIR" version="4.0.1">
    <requiredModelInfo name="System" version="1.0.0"/>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(info.RequiredModelInfo) != 1 {
		t.Fatalf("requiredModelInfo = %+v", info.RequiredModelInfo)
	}
	if spec := info.RequiredModelInfo[0]; spec.Name != "System" || spec.Version != "1.0.0" {
		t.Errorf("spec = %+v", spec)
	}
}

func TestParseConversionAndContextInfo(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1" name="FHIR" version="4.0.1">
    <conversionInfo functionName="FHIRHelpers.ToCode" fromType="FHIR.Coding" toType="System.Code"/>
    <conversionInfo functionName="FHIRHelpers.ToConcept" fromType="FHIR.CodeableConcept" toType="System.Concept"/>
    <conversionInfo functionName="FHIRHelpers.ToString" fromType="FHIR.string" toType="System.String"/>
    <contextInfo name="Patient" keyElement="id" birthDateElement="birthDate.value"/>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(info.ConversionInfo) != 3 {
		t.Fatalf("conversionInfo = %+v", info.ConversionInfo)
	}
	conv := info.ConversionInfo[0]
	if conv.FunctionName != "FHIRHelpers.ToCode" || conv.FromType != "FHIR.Coding" || conv.ToType != "System.Code" {
		t.Errorf("conv = %+v", conv)
	}
	if len(info.ContextInfo) != 1 {
		t.Fatalf("contextInfo = %+v", info.ContextInfo)
	}
	ctx := info.ContextInfo[0]
	if ctx.Name != "Patient" || ctx.KeyElement != "id" || ctx.BirthDateElement != "birthDate.value" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestParseClassInfo(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="FHIR" version="4.0.1">
    <typeInfo baseType="FHIR.DomainResource"
              namespace="FHIR"
              name="Patient"
              identifier="http://hl7.org/fhir/StructureDefinition/Patient"
              label="Patient"
              retrievable="true"
              xsi:type="ClassInfo">
        <element name="identifier">
            <elementTypeSpecifier elementType="FHIR.Identifier" xsi:type="ListTypeSpecifier"/>
        </element>
        <element name="active" elementType="FHIR.boolean"/>
        <contextRelationship context="Practitioner" relatedKeyElement="generalPractitioner"/>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(info.TypeInfos) != 1 {
		t.Fatalf("typeInfo = %+v", info.TypeInfos)
	}

	class, ok := info.TypeInfos[0].(*ClassInfo)
	if !ok {
		t.Fatalf("type = %T, want *ClassInfo", info.TypeInfos[0])
	}
	if class.Name != "Patient" || class.Namespace != "FHIR" {
		t.Errorf("class = %q/%q", class.Namespace, class.Name)
	}
	if class.BaseType != "FHIR.DomainResource" {
		t.Errorf("baseType = %q", class.BaseType)
	}
	if class.Retrievable == nil || !*class.Retrievable {
		t.Errorf("retrievable = %v", class.Retrievable)
	}

	if len(class.Element) != 2 {
		t.Fatalf("elements = %+v", class.Element)
	}
	if class.Element[0].Name != "identifier" || class.Element[1].Name != "active" {
		t.Errorf("element order = %q, %q", class.Element[0].Name, class.Element[1].Name)
	}
	if class.Element[1].ElementType != "FHIR.boolean" {
		t.Errorf("elementType = %q", class.Element[1].ElementType)
	}
	list, ok := class.Element[0].ElementTypeSpecifier.(*ListTypeSpecifier)
	if !ok {
		t.Fatalf("specifier = %T, want *ListTypeSpecifier", class.Element[0].ElementTypeSpecifier)
	}
	if list.ElementType != "FHIR.Identifier" {
		t.Errorf("list elementType = %q", list.ElementType)
	}

	if len(class.ContextRelationship) != 1 || class.ContextRelationship[0].Context != "Practitioner" {
		t.Errorf("contextRelationship = %+v", class.ContextRelationship)
	}
}

func TestParseChoiceTypeSpecifier(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="FHIR" version="4.0.1">
    <typeInfo namespace="FHIR" name="ActivityDefinition" xsi:type="ClassInfo">
        <element name="subject">
            <elementTypeSpecifier xsi:type="ChoiceTypeSpecifier">
                <choice namespace="FHIR" name="CodeableConcept" xsi:type="NamedTypeSpecifier"/>
                <choice namespace="FHIR" name="Reference" xsi:type="NamedTypeSpecifier"/>
            </elementTypeSpecifier>
        </element>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	class := info.TypeInfos[0].(*ClassInfo)
	choice, ok := class.Element[0].ElementTypeSpecifier.(*ChoiceTypeSpecifier)
	if !ok {
		t.Fatalf("specifier = %T, want *ChoiceTypeSpecifier", class.Element[0].ElementTypeSpecifier)
	}
	if len(choice.Choice) != 2 {
		t.Fatalf("choice = %+v", choice.Choice)
	}
	named, ok := choice.Choice[0].(*NamedTypeSpecifier)
	if !ok {
		t.Fatalf("choice[0] = %T, want *NamedTypeSpecifier", choice.Choice[0])
	}
	if named.Namespace != "FHIR" || named.Name != "CodeableConcept" {
		t.Errorf("named = %+v", named)
	}
}

func TestParseNestedSpecifiers(t *testing.T) {
	// list of intervals of DateTime
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="Test" version="1.0">
    <typeInfo namespace="Test" name="Schedule" xsi:type="ClassInfo">
        <element name="slots">
            <elementTypeSpecifier xsi:type="ListTypeSpecifier">
                <elementTypeSpecifier pointType="System.DateTime" xsi:type="IntervalTypeSpecifier"/>
            </elementTypeSpecifier>
        </element>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	class := info.TypeInfos[0].(*ClassInfo)
	list, ok := class.Element[0].ElementTypeSpecifier.(*ListTypeSpecifier)
	if !ok {
		t.Fatalf("outer = %T", class.Element[0].ElementTypeSpecifier)
	}
	interval, ok := list.ElementTypeSpecifier.(*IntervalTypeSpecifier)
	if !ok {
		t.Fatalf("inner = %T", list.ElementTypeSpecifier)
	}
	if interval.PointType != "System.DateTime" {
		t.Errorf("pointType = %q", interval.PointType)
	}
}

func TestParseSimpleIntervalListTupleChoiceInfos(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="System" version="1.0.0">
    <typeInfo namespace="System" name="Boolean" baseType="System.Any" xsi:type="SimpleTypeInfo"/>
    <typeInfo pointType="System.DateTime" xsi:type="IntervalTypeInfo"/>
    <typeInfo elementType="FHIR.Observation" xsi:type="ListTypeInfo"/>
    <typeInfo xsi:type="TupleTypeInfo">
        <element name="id" elementType="System.String"/>
        <element name="value" elementType="System.Integer"/>
    </typeInfo>
    <typeInfo xsi:type="ChoiceTypeInfo">
        <choice namespace="FHIR" name="string" xsi:type="NamedTypeSpecifier"/>
        <choice namespace="FHIR" name="Quantity" xsi:type="NamedTypeSpecifier"/>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(info.TypeInfos) != 5 {
		t.Fatalf("typeInfo count = %d", len(info.TypeInfos))
	}

	simple := info.TypeInfos[0].(*SimpleTypeInfo)
	if simple.Namespace != "System" || simple.Name != "Boolean" || simple.BaseType != "System.Any" {
		t.Errorf("simple = %+v", simple)
	}
	interval := info.TypeInfos[1].(*IntervalTypeInfo)
	if interval.PointType != "System.DateTime" {
		t.Errorf("interval = %+v", interval)
	}
	list := info.TypeInfos[2].(*ListTypeInfo)
	if list.ElementType != "FHIR.Observation" {
		t.Errorf("list = %+v", list)
	}
	tuple := info.TypeInfos[3].(*TupleTypeInfo)
	if len(tuple.Element) != 2 || tuple.Element[0].Name != "id" || tuple.Element[1].Name != "value" {
		t.Errorf("tuple = %+v", tuple)
	}
	choice := info.TypeInfos[4].(*ChoiceTypeInfo)
	if len(choice.Choice) != 2 {
		t.Errorf("choice = %+v", choice)
	}
}

func TestParseProfileInfo(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="QICore" version="4.1.1">
    <typeInfo namespace="QICore" name="Patient"
              identifier="http://hl7.org/fhir/us/qicore/StructureDefinition/qicore-patient"
              baseType="FHIR.Patient" retrievable="true" xsi:type="ProfileInfo">
        <element name="race" elementType="QICore.Race"/>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	profile, ok := info.TypeInfos[0].(*ProfileInfo)
	if !ok {
		t.Fatalf("type = %T, want *ProfileInfo", info.TypeInfos[0])
	}
	if profile.BaseType != "FHIR.Patient" || profile.Retrievable == nil || !*profile.Retrievable {
		t.Errorf("profile = %+v", profile)
	}
	if len(profile.Element) != 1 || profile.Element[0].Name != "race" {
		t.Errorf("elements = %+v", profile.Element)
	}
}

func TestUnknownDiscriminatorSkipped(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="FHIR" version="4.0.1">
    <typeInfo name="Mystery" xsi:type="VendorTypeInfo">
        <vendorStuff><nested attr="x"/></vendorStuff>
    </typeInfo>
    <typeInfo namespace="FHIR" name="Patient" xsi:type="ClassInfo"/>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(info.TypeInfos) != 1 {
		t.Fatalf("typeInfo = %+v", info.TypeInfos)
	}
	if class := info.TypeInfos[0].(*ClassInfo); class.Name != "Patient" {
		t.Errorf("class = %+v", class)
	}
}

func TestUnknownElementsSkipped(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="FHIR" version="4.0.1">
    <vendorExtension><deep><deeper/></deep></vendorExtension>
    <typeInfo namespace="FHIR" name="Patient" xsi:type="ClassInfo">
        <annotation>free text</annotation>
        <element name="active" elementType="FHIR.boolean"/>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	class := info.TypeInfos[0].(*ClassInfo)
	if len(class.Element) != 1 || class.Element[0].Name != "active" {
		t.Errorf("elements = %+v", class.Element)
	}
}

func TestDeprecatedTypeAttribute(t *testing.T) {
	xml := `<modelInfo xmlns="urn:hl7-org:elm-modelinfo:r1"
           xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
           name="Legacy" version="1.0">
    <typeInfo namespace="Legacy" name="Thing" xsi:type="ClassInfo">
        <element name="status" type="Legacy.code"/>
    </typeInfo>
</modelInfo>`

	info, err := ParseString(xml)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	class := info.TypeInfos[0].(*ClassInfo)
	elem := class.Element[0]
	if elem.TypeName != "Legacy.code" {
		t.Errorf("typeName = %q", elem.TypeName)
	}
	if elem.ElementType != "" {
		t.Errorf("elementType = %q, want empty", elem.ElementType)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseString(""); err != ErrNoRoot {
		t.Errorf("empty input: err = %v, want ErrNoRoot", err)
	}
	if _, err := ParseString("<other/>"); err != ErrNoRoot {
		t.Errorf("wrong root: err = %v, want ErrNoRoot", err)
	}
	if _, err := ParseString(`<modelInfo name="FHIR"><typeInfo`); err == nil {
		t.Error("truncated input: want error")
	}
	if _, err := ParseString(`<modelInfo name="FHIR"><typeInfo></modelInfo>`); err == nil {
		t.Error("mismatched tags: want error")
	}
}

func TestParseReader(t *testing.T) {
	r := strings.NewReader(`<modelInfo name="FHIR" version="4.0.1"/>`)
	info, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.Name != "FHIR" {
		t.Errorf("name = %q", info.Name)
	}
}
