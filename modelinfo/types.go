package modelinfo

// ModelInfo is the top-level container describing a data model: its
// identity, patient context, type definitions, and implicit conversions.
type ModelInfo struct {
	Name                         string `json:"name,omitempty"`
	Version                      string `json:"version,omitempty"`
	URL                          string `json:"url,omitempty"`
	SchemaLocation               string `json:"schemaLocation,omitempty"`
	TargetQualifier              string `json:"targetQualifier,omitempty"`
	PatientClassName             string `json:"patientClassName,omitempty"`
	PatientClassIdentifier       string `json:"patientClassIdentifier,omitempty"`
	PatientBirthDatePropertyName string `json:"patientBirthDatePropertyName,omitempty"`
	CaseSensitive                *bool  `json:"caseSensitive,omitempty"`
	StrictRetrievable            *bool  `json:"strictRetrievable,omitempty"`
	DefaultContext               string `json:"defaultContext,omitempty"`

	RequiredModelInfo []ModelSpecifier `json:"requiredModelInfo,omitempty"`
	TypeInfos         []TypeInfo       `json:"typeInfo,omitempty"`
	ConversionInfo    []ConversionInfo `json:"conversionInfo,omitempty"`
	ContextInfo       []ContextInfo    `json:"contextInfo,omitempty"`
}

// ModelSpecifier names a model this model depends on.
type ModelSpecifier struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// ContextInfo describes an execution context such as Patient.
type ContextInfo struct {
	Name             string `json:"name,omitempty"`
	KeyElement       string `json:"keyElement,omitempty"`
	BirthDateElement string `json:"birthDateElement,omitempty"`
}

// ConversionInfo describes an implicit type conversion and the function
// that performs it.
type ConversionInfo struct {
	FromType     string `json:"fromType,omitempty"`
	ToType       string `json:"toType,omitempty"`
	FunctionName string `json:"functionName,omitempty"`
}

// TypeInfo is one of the seven type definition kinds: *ClassInfo,
// *SimpleTypeInfo, *ProfileInfo, *IntervalTypeInfo, *ListTypeInfo,
// *TupleTypeInfo, or *ChoiceTypeInfo.
type TypeInfo interface {
	isTypeInfo()
}

func (*ClassInfo) isTypeInfo()        {}
func (*SimpleTypeInfo) isTypeInfo()   {}
func (*ProfileInfo) isTypeInfo()      {}
func (*IntervalTypeInfo) isTypeInfo() {}
func (*ListTypeInfo) isTypeInfo()     {}
func (*TupleTypeInfo) isTypeInfo()    {}
func (*ChoiceTypeInfo) isTypeInfo()   {}

// SimpleTypeInfo describes a primitive type such as System.Boolean.
type SimpleTypeInfo struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
	BaseType  string `json:"baseType,omitempty"`
}

// ClassInfo describes a complex type with named elements.
type ClassInfo struct {
	Namespace           string        `json:"namespace,omitempty"`
	Name                string        `json:"name,omitempty"`
	Identifier          string        `json:"identifier,omitempty"`
	Label               string        `json:"label,omitempty"`
	BaseType            string        `json:"baseType,omitempty"`
	BaseTypeSpecifier   TypeSpecifier `json:"baseTypeSpecifier,omitempty"`
	Retrievable         *bool         `json:"retrievable,omitempty"`
	PrimaryCodePath     string        `json:"primaryCodePath,omitempty"`
	PrimaryValueSetPath string        `json:"primaryValueSetPath,omitempty"`

	Parameter                 []TypeParameterInfo `json:"parameter,omitempty"`
	Element                   []ClassElement      `json:"element,omitempty"`
	ContextRelationship       []RelationshipInfo  `json:"contextRelationship,omitempty"`
	TargetContextRelationship []RelationshipInfo  `json:"targetContextRelationship,omitempty"`
}

// ProfileInfo describes a profile of a base class. Structurally it is a
// restricted ClassInfo.
type ProfileInfo struct {
	Namespace         string        `json:"namespace,omitempty"`
	Name              string        `json:"name,omitempty"`
	Identifier        string        `json:"identifier,omitempty"`
	Label             string        `json:"label,omitempty"`
	BaseType          string        `json:"baseType,omitempty"`
	BaseTypeSpecifier TypeSpecifier `json:"baseTypeSpecifier,omitempty"`
	Retrievable       *bool         `json:"retrievable,omitempty"`
	PrimaryCodePath   string        `json:"primaryCodePath,omitempty"`

	Element []ClassElement `json:"element,omitempty"`
}

// IntervalTypeInfo describes an interval over a point type.
type IntervalTypeInfo struct {
	BaseType           string        `json:"baseType,omitempty"`
	PointType          string        `json:"pointType,omitempty"`
	PointTypeSpecifier TypeSpecifier `json:"pointTypeSpecifier,omitempty"`
}

// ListTypeInfo describes a list of an element type.
type ListTypeInfo struct {
	BaseType             string        `json:"baseType,omitempty"`
	ElementType          string        `json:"elementType,omitempty"`
	ElementTypeSpecifier TypeSpecifier `json:"elementTypeSpecifier,omitempty"`
}

// TupleTypeInfo describes a structured tuple type.
type TupleTypeInfo struct {
	BaseType string         `json:"baseType,omitempty"`
	Element  []TupleElement `json:"element,omitempty"`
}

// TupleElement is one named element of a tuple type. TypeName carries the
// deprecated plain "type" attribute still present in older documents.
type TupleElement struct {
	Name                 string        `json:"name,omitempty"`
	ElementType          string        `json:"elementType,omitempty"`
	ElementTypeSpecifier TypeSpecifier `json:"elementTypeSpecifier,omitempty"`
	TypeName             string        `json:"type,omitempty"`
}

// ChoiceTypeInfo describes a union of types.
type ChoiceTypeInfo struct {
	BaseType string          `json:"baseType,omitempty"`
	Choice   []TypeSpecifier `json:"choice,omitempty"`
}

// TypeParameterInfo describes a generic type parameter of a class.
type TypeParameterInfo struct {
	Name           string `json:"name,omitempty"`
	Constraint     string `json:"constraint,omitempty"`
	ConstraintType string `json:"constraintType,omitempty"`
}

// ClassElement is a property of a class or profile. TypeName and
// TypeSpec carry the deprecated "type"/"typeSpecifier" forms.
type ClassElement struct {
	Name                 string        `json:"name,omitempty"`
	ElementType          string        `json:"elementType,omitempty"`
	ElementTypeSpecifier TypeSpecifier `json:"elementTypeSpecifier,omitempty"`
	TypeName             string        `json:"type,omitempty"`
	TypeSpec             TypeSpecifier `json:"typeSpecifier,omitempty"`
	Prohibited           *bool         `json:"prohibited,omitempty"`
	OneBased             *bool         `json:"oneBased,omitempty"`
	Target               string        `json:"target,omitempty"`
}

// RelationshipInfo relates a class to an execution context.
type RelationshipInfo struct {
	Context           string `json:"context,omitempty"`
	RelatedKeyElement string `json:"relatedKeyElement,omitempty"`
}

// TypeSpecifier is a polymorphic type reference: *NamedTypeSpecifier,
// *ListTypeSpecifier, *IntervalTypeSpecifier, *ChoiceTypeSpecifier, or
// *TupleTypeSpecifier. Specifiers may recurse arbitrarily.
type TypeSpecifier interface {
	isTypeSpecifier()
}

func (*NamedTypeSpecifier) isTypeSpecifier()    {}
func (*ListTypeSpecifier) isTypeSpecifier()     {}
func (*IntervalTypeSpecifier) isTypeSpecifier() {}
func (*ChoiceTypeSpecifier) isTypeSpecifier()   {}
func (*TupleTypeSpecifier) isTypeSpecifier()    {}

// NamedTypeSpecifier references a type by name.
type NamedTypeSpecifier struct {
	ModelName string `json:"modelName,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
}

// ListTypeSpecifier references a list of an element type.
type ListTypeSpecifier struct {
	ElementType          string        `json:"elementType,omitempty"`
	ElementTypeSpecifier TypeSpecifier `json:"elementTypeSpecifier,omitempty"`
}

// IntervalTypeSpecifier references an interval over a point type.
type IntervalTypeSpecifier struct {
	PointType          string        `json:"pointType,omitempty"`
	PointTypeSpecifier TypeSpecifier `json:"pointTypeSpecifier,omitempty"`
}

// ChoiceTypeSpecifier references a union of types.
type ChoiceTypeSpecifier struct {
	Choice []TypeSpecifier `json:"choice,omitempty"`
}

// TupleTypeSpecifier references an anonymous tuple type.
type TupleTypeSpecifier struct {
	Element []TupleElement `json:"element,omitempty"`
}
