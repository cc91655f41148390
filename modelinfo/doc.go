// Package modelinfo decodes ModelInfo XML documents into a typed tree.
//
// ModelInfo describes the structure of a clinical data model (such as FHIR)
// so that quality-measure tooling can resolve the types and properties
// available for querying. The XML format discriminates polymorphic nodes
// with xsi:type attributes; this package streams the document and dispatches
// on those discriminators, skipping vendor extensions it does not recognise.
//
//	info, err := modelinfo.ParseString(xml)
//	if err != nil {
//		return err
//	}
//	for _, ti := range info.TypeInfos {
//		if class, ok := ti.(*modelinfo.ClassInfo); ok {
//			fmt.Println(class.Name)
//		}
//	}
package modelinfo
