package terminology

// Canonical URLs for the code systems and value sets bundled with the
// common-codes preset.
const (
	SystemAdministrativeGender = "http://hl7.org/fhir/administrative-gender"
	SystemObservationStatus    = "http://hl7.org/fhir/observation-status"
	SystemLOINC                = "http://loinc.org"
	SystemSNOMED               = "http://snomed.info/sct"
	SystemV3RoleCode           = "http://terminology.hl7.org/CodeSystem/v3-RoleCode"
	SystemV3RoleCodeLegacy     = "http://hl7.org/fhir/v3/RoleCode"
	SystemCVX                  = "http://hl7.org/fhir/sid/cvx"
	SystemUCUM                 = "http://unitsofmeasure.org"

	ValueSetAdministrativeGender = "http://hl7.org/fhir/ValueSet/administrative-gender"
	ValueSetObservationStatus    = "http://hl7.org/fhir/ValueSet/observation-status"
	ValueSetAgeUnits             = "http://hl7.org/fhir/ValueSet/age-units"
)

// addCommonCodes populates the mock with the small terminology subset that
// almost every FHIR validation run touches. It is not a substitute for a
// real terminology server; it keeps offline runs useful.
func (s *MockService) addCommonCodes() {
	s.AddCode(SystemAdministrativeGender, "male", "Male")
	s.AddCode(SystemAdministrativeGender, "female", "Female")
	s.AddCode(SystemAdministrativeGender, "other", "Other")
	s.AddCode(SystemAdministrativeGender, "unknown", "Unknown")

	s.AddCode(SystemObservationStatus, "registered", "Registered")
	s.AddCode(SystemObservationStatus, "preliminary", "Preliminary")
	s.AddCode(SystemObservationStatus, "final", "Final")
	s.AddCode(SystemObservationStatus, "amended", "Amended")

	s.AddCodeWithDesignations(SystemLOINC, "8867-4", "Heart rate",
		[2]string{"en-US", "Heart rate"},
		[2]string{"en-US", "Pulse"})
	s.AddCodeWithDesignations(SystemLOINC, "8310-5", "Body temperature",
		[2]string{"en-US", "Body temperature"},
		[2]string{"en-US", "Temp"})
	s.AddCodeWithDesignations(SystemLOINC, "59408-5", "Oxygen saturation in Arterial blood by Pulse oximetry",
		[2]string{"en-US", "Oxygen saturation in Arterial blood by Pulse oximetry"},
		[2]string{"en-US", "SaO2 % BldA PulseOx"})
	s.AddCodeWithDesignations(SystemLOINC, "85354-9", "Blood pressure panel with all children optional",
		[2]string{"en-US", "Blood pressure panel with all children optional"})

	s.AddCode(SystemSNOMED, "271649006", "Systolic blood pressure")
	s.AddCode(SystemSNOMED, "271650006", "Diastolic blood pressure")
	s.AddCode(SystemSNOMED, "386661006", "Fever")

	s.AddCode(SystemV3RoleCode, "MTH", "mother")
	s.AddCode(SystemV3RoleCode, "FTH", "father")
	s.AddCode(SystemV3RoleCode, "SIS", "sister")
	s.AddCode(SystemV3RoleCode, "BRO", "brother")
	// Pre-R4 documents still carry the old RoleCode URL.
	s.AddCode(SystemV3RoleCodeLegacy, "MTH", "mother")
	s.AddCode(SystemV3RoleCodeLegacy, "FTH", "father")

	s.AddCodeWithDesignations(SystemCVX, "207",
		"COVID-19, mRNA, LNP-S, PF, 100 mcg/0.5mL dose or 50 mcg/0.25mL dose",
		[2]string{"en-US", "COVID-19, mRNA, LNP-S, PF, 100 mcg/0.5mL dose or 50 mcg/0.25mL dose"})
	s.AddCodeWithDesignations(SystemCVX, "208",
		"COVID-19, mRNA, LNP-S, PF, 30 mcg/0.3 mL dose",
		[2]string{"en-US", "COVID-19, mRNA, LNP-S, PF, 30 mcg/0.3 mL dose"})

	s.AddCode(SystemUCUM, "mm[Hg]", "millimeter of mercury")
	s.AddCode(SystemUCUM, "/min", "per minute")
	s.AddCode(SystemUCUM, "Cel", "degree Celsius")
	s.AddCode(SystemUCUM, "%", "percent")
	s.AddCode(SystemUCUM, "kg", "kilogram")
	s.AddCode(SystemUCUM, "cm", "centimeter")
	s.AddCode(SystemUCUM, "m", "meter")
	s.AddCode(SystemUCUM, "a", "year")
	s.AddCode(SystemUCUM, "mo", "month")
	s.AddCode(SystemUCUM, "wk", "week")
	s.AddCode(SystemUCUM, "d", "day")
	s.AddCode(SystemUCUM, "h", "hour")
	s.AddCode(SystemUCUM, "min", "minute")
	s.AddCode(SystemUCUM, "s", "second")

	s.AddValueSet(ValueSetAdministrativeGender,
		Coding{System: SystemAdministrativeGender, Code: "male"},
		Coding{System: SystemAdministrativeGender, Code: "female"},
		Coding{System: SystemAdministrativeGender, Code: "other"},
		Coding{System: SystemAdministrativeGender, Code: "unknown"})

	s.AddValueSet(ValueSetObservationStatus,
		Coding{System: SystemObservationStatus, Code: "registered"},
		Coding{System: SystemObservationStatus, Code: "preliminary"},
		Coding{System: SystemObservationStatus, Code: "final"},
		Coding{System: SystemObservationStatus, Code: "amended"},
		Coding{System: SystemObservationStatus, Code: "corrected"},
		Coding{System: SystemObservationStatus, Code: "cancelled"},
		Coding{System: SystemObservationStatus, Code: "entered-in-error"},
		Coding{System: SystemObservationStatus, Code: "unknown"})

	s.AddValueSet(ValueSetAgeUnits,
		Coding{System: SystemUCUM, Code: "a"},
		Coding{System: SystemUCUM, Code: "mo"},
		Coding{System: SystemUCUM, Code: "wk"},
		Coding{System: SystemUCUM, Code: "d"},
		Coding{System: SystemUCUM, Code: "h"},
		Coding{System: SystemUCUM, Code: "min"})
}
