package claim

import "strings"

// Type discriminates accident claims from illness claims. The empty type
// is the legacy generic flow.
type Type string

const (
	TypeGeneric  Type = ""
	TypeAccident Type = "accident"
	TypeIllness  Type = "illness"
)

// AccidentType is the accident sub-type.
type AccidentType string

const (
	AccidentRoadTraffic AccidentType = "road_traffic_accident"
	AccidentDomestic    AccidentType = "domestic"
	AccidentWorkplace   AccidentType = "workplace"
	AccidentSports      AccidentType = "sports"
	AccidentOther       AccidentType = "other"
)

// CataractCause values.
const (
	CataractAgeRelated = "age_related"
	CataractTraumatic  = "traumatic"
	CataractCongenital = "congenital"
	CataractDiabetic   = "diabetic"
)

// CataractEyes values.
const (
	EyesUnilateral = "unilateral"
	EyesBilateral  = "bilateral"
)

// Treatment types.
const (
	TreatmentInpatient  = "inpatient"
	TreatmentDaycare    = "daycare"
	TreatmentOutpatient = "outpatient"
	TreatmentSurgery    = "surgery"
)

// Field names, as used by required-field lists and clarifications.
const (
	FieldPatientName         = "patient_name"
	FieldPatientAge          = "patient_age"
	FieldGender              = "gender"
	FieldPolicyStartDate     = "policy_start_date"
	FieldClaimDate           = "claim_date"
	FieldMedicalCondition    = "medical_condition"
	FieldClaimAmount         = "claim_amount"
	FieldSumInsured          = "sum_insured"
	FieldTreatmentType       = "treatment_type"
	FieldPreExistingDisease  = "pre_existing_disease"
	FieldEmergency           = "emergency"
	FieldConsumablesRequired = "consumables_required"
	FieldCongenitalCondition = "congenital_condition"
	FieldClaimType           = "claim_type"
	FieldAccidentType        = "accident_type"
	FieldAccidentDocs        = "accident_documentation"
	FieldMedicalConsultation = "medical_consultation"
	FieldMedicalRecords      = "medical_records"
	FieldIncidentDate        = "incident_date"
	FieldCataractCause       = "cataract_cause"
	FieldCataractEyes        = "cataract_eyes"
	FieldDeliveryNumber      = "delivery_number"
	FieldAyushTreatment      = "ayush_treatment"
	FieldCopayAcknowledged   = "copay_acknowledged"
)

// RequiredFields are the facts needed before an assessment can run.
var RequiredFields = []string{
	FieldPatientName,
	FieldPatientAge,
	FieldMedicalCondition,
	FieldClaimAmount,
	FieldPolicyStartDate,
}

// Accident holds the accident sub-record.
type Accident struct {
	Type                AccidentType `json:"type,omitempty" yaml:"type,omitempty"`
	Documentation       *bool        `json:"documentation_proof,omitempty" yaml:"documentation_proof,omitempty"`
	MedicalConsultation *bool        `json:"medical_consultation,omitempty" yaml:"medical_consultation,omitempty"`
	MedicalRecords      *bool        `json:"medical_records,omitempty" yaml:"medical_records,omitempty"`
	IncidentDate        *Date        `json:"incident_date,omitempty" yaml:"incident_date,omitempty"`
}

// IsZero reports whether nothing is set.
func (a *Accident) IsZero() bool {
	return a == nil || (a.Type == "" && a.Documentation == nil && a.MedicalConsultation == nil &&
		a.MedicalRecords == nil && a.IncidentDate == nil)
}

// Illness holds the illness sub-record.
type Illness struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	PreExisting *bool  `json:"pre_existing,omitempty" yaml:"pre_existing,omitempty"`
	Congenital  *bool  `json:"congenital,omitempty" yaml:"congenital,omitempty"`
}

// IsZero reports whether nothing is set.
func (i *Illness) IsZero() bool {
	return i == nil || (i.Type == "" && i.PreExisting == nil && i.Congenital == nil)
}

// Facts is the closed schema of everything known about a claim. Every field
// is optional; a nil pointer means the fact is genuinely unknown.
type Facts struct {
	PatientName         *string  `json:"patient_name,omitempty" yaml:"patient_name,omitempty"`
	PatientAge          *int     `json:"patient_age,omitempty" yaml:"patient_age,omitempty"`
	Gender              *string  `json:"gender,omitempty" yaml:"gender,omitempty"`
	PolicyStartDate     *Date    `json:"policy_start_date,omitempty" yaml:"policy_start_date,omitempty"`
	ClaimDate           *Date    `json:"claim_date,omitempty" yaml:"claim_date,omitempty"`
	MedicalCondition    *string  `json:"medical_condition,omitempty" yaml:"medical_condition,omitempty"`
	ClaimAmount         *float64 `json:"claim_amount,omitempty" yaml:"claim_amount,omitempty"`
	SumInsured          *float64 `json:"sum_insured,omitempty" yaml:"sum_insured,omitempty"`
	TreatmentType       *string  `json:"treatment_type,omitempty" yaml:"treatment_type,omitempty"`
	PreExistingDisease  *bool    `json:"pre_existing_disease,omitempty" yaml:"pre_existing_disease,omitempty"`
	Emergency           *bool    `json:"emergency,omitempty" yaml:"emergency,omitempty"`
	ConsumablesRequired *bool    `json:"consumables_required,omitempty" yaml:"consumables_required,omitempty"`
	CongenitalCondition *bool    `json:"congenital_condition,omitempty" yaml:"congenital_condition,omitempty"`

	ClaimType Type      `json:"claim_type,omitempty" yaml:"claim_type,omitempty"`
	Accident  *Accident `json:"accident,omitempty" yaml:"accident,omitempty"`
	Illness   *Illness  `json:"illness,omitempty" yaml:"illness,omitempty"`

	CataractCause     *string `json:"cataract_cause,omitempty" yaml:"cataract_cause,omitempty"`
	CataractEyes      *string `json:"cataract_eyes,omitempty" yaml:"cataract_eyes,omitempty"`
	DeliveryNumber    *int    `json:"delivery_number,omitempty" yaml:"delivery_number,omitempty"`
	AyushTreatment    *bool   `json:"ayush_treatment,omitempty" yaml:"ayush_treatment,omitempty"`
	CopayAcknowledged *bool   `json:"copay_acknowledged,omitempty" yaml:"copay_acknowledged,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Merge applies patch onto f. Only fields set in patch overwrite; the
// sub-records merge field by field.
func (f *Facts) Merge(patch Facts) {
	mergePtr(&f.PatientName, patch.PatientName)
	mergePtr(&f.PatientAge, patch.PatientAge)
	mergePtr(&f.Gender, patch.Gender)
	mergePtr(&f.PolicyStartDate, patch.PolicyStartDate)
	mergePtr(&f.ClaimDate, patch.ClaimDate)
	mergePtr(&f.MedicalCondition, patch.MedicalCondition)
	mergePtr(&f.ClaimAmount, patch.ClaimAmount)
	mergePtr(&f.SumInsured, patch.SumInsured)
	mergePtr(&f.TreatmentType, patch.TreatmentType)
	mergePtr(&f.PreExistingDisease, patch.PreExistingDisease)
	mergePtr(&f.Emergency, patch.Emergency)
	mergePtr(&f.ConsumablesRequired, patch.ConsumablesRequired)
	mergePtr(&f.CongenitalCondition, patch.CongenitalCondition)
	mergePtr(&f.CataractCause, patch.CataractCause)
	mergePtr(&f.CataractEyes, patch.CataractEyes)
	mergePtr(&f.DeliveryNumber, patch.DeliveryNumber)
	mergePtr(&f.AyushTreatment, patch.AyushTreatment)
	mergePtr(&f.CopayAcknowledged, patch.CopayAcknowledged)

	if patch.ClaimType != TypeGeneric {
		f.ClaimType = patch.ClaimType
	}

	if !patch.Accident.IsZero() {
		if f.Accident == nil {
			f.Accident = &Accident{}
		}
		if patch.Accident.Type != "" {
			f.Accident.Type = patch.Accident.Type
		}
		mergePtr(&f.Accident.Documentation, patch.Accident.Documentation)
		mergePtr(&f.Accident.MedicalConsultation, patch.Accident.MedicalConsultation)
		mergePtr(&f.Accident.MedicalRecords, patch.Accident.MedicalRecords)
		mergePtr(&f.Accident.IncidentDate, patch.Accident.IncidentDate)
	}

	if !patch.Illness.IsZero() {
		if f.Illness == nil {
			f.Illness = &Illness{}
		}
		if patch.Illness.Type != "" {
			f.Illness.Type = patch.Illness.Type
		}
		mergePtr(&f.Illness.PreExisting, patch.Illness.PreExisting)
		mergePtr(&f.Illness.Congenital, patch.Illness.Congenital)
	}
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Normalize trims strings, unsets empty ones, infers a missing claim type
// from a populated sub-record and drops the sub-record of the other type.
func (f *Facts) Normalize() {
	for _, p := range []**string{
		&f.PatientName, &f.Gender, &f.MedicalCondition, &f.TreatmentType,
		&f.CataractCause, &f.CataractEyes,
	} {
		trimPtr(p)
	}
	if f.Gender != nil {
		lower := strings.ToLower(*f.Gender)
		f.Gender = &lower
	}
	if f.TreatmentType != nil {
		lower := strings.ToLower(*f.TreatmentType)
		f.TreatmentType = &lower
	}
	if f.Illness != nil {
		f.Illness.Type = strings.TrimSpace(f.Illness.Type)
	}

	if f.ClaimType == TypeGeneric {
		switch {
		case !f.Accident.IsZero() && f.Illness.IsZero():
			f.ClaimType = TypeAccident
		case !f.Illness.IsZero() && f.Accident.IsZero():
			f.ClaimType = TypeIllness
		}
	}

	switch f.ClaimType {
	case TypeAccident:
		f.Illness = nil
		if f.Accident == nil {
			f.Accident = &Accident{}
		}
	case TypeIllness:
		f.Accident = nil
		if f.Illness == nil {
			f.Illness = &Illness{}
		}
	default:
		if f.Accident.IsZero() {
			f.Accident = nil
		}
		if f.Illness.IsZero() {
			f.Illness = nil
		}
	}
}

func trimPtr(p **string) {
	if *p == nil {
		return
	}
	s := strings.TrimSpace(**p)
	if s == "" {
		*p = nil
		return
	}
	*p = &s
}

// Missing returns the required fields that are unset, in the order given.
func (f *Facts) Missing(required []string) []string {
	var missing []string
	for _, field := range required {
		if !f.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Has reports whether the named field is set.
func (f *Facts) Has(field string) bool {
	switch field {
	case FieldPatientName:
		return f.PatientName != nil
	case FieldPatientAge:
		return f.PatientAge != nil
	case FieldGender:
		return f.Gender != nil
	case FieldPolicyStartDate:
		return f.PolicyStartDate != nil
	case FieldClaimDate:
		return f.ClaimDate != nil
	case FieldMedicalCondition:
		return f.MedicalCondition != nil
	case FieldClaimAmount:
		return f.ClaimAmount != nil
	case FieldSumInsured:
		return f.SumInsured != nil
	case FieldTreatmentType:
		return f.TreatmentType != nil
	case FieldPreExistingDisease:
		return f.PreExistingDisease != nil
	case FieldEmergency:
		return f.Emergency != nil
	case FieldConsumablesRequired:
		return f.ConsumablesRequired != nil
	case FieldCongenitalCondition:
		return f.CongenitalCondition != nil
	case FieldClaimType:
		return f.ClaimType != TypeGeneric
	case FieldAccidentType:
		return f.Accident != nil && f.Accident.Type != ""
	case FieldAccidentDocs:
		return f.Accident != nil && f.Accident.Documentation != nil
	case FieldMedicalConsultation:
		return f.Accident != nil && f.Accident.MedicalConsultation != nil
	case FieldMedicalRecords:
		return f.Accident != nil && f.Accident.MedicalRecords != nil
	case FieldIncidentDate:
		return f.Accident != nil && f.Accident.IncidentDate != nil
	case FieldCataractCause:
		return f.CataractCause != nil
	case FieldCataractEyes:
		return f.CataractEyes != nil
	case FieldDeliveryNumber:
		return f.DeliveryNumber != nil
	case FieldAyushTreatment:
		return f.AyushTreatment != nil
	case FieldCopayAcknowledged:
		return f.CopayAcknowledged != nil
	}
	return false
}

// IsEmpty reports whether no fact is set.
func (f *Facts) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.ClaimType == TypeGeneric && f.Accident.IsZero() && f.Illness.IsZero() &&
		len(f.Missing(allFields)) == len(allFields)
}

var allFields = []string{
	FieldPatientName, FieldPatientAge, FieldGender, FieldPolicyStartDate, FieldClaimDate,
	FieldMedicalCondition, FieldClaimAmount, FieldSumInsured, FieldTreatmentType,
	FieldPreExistingDisease, FieldEmergency, FieldConsumablesRequired, FieldCongenitalCondition,
	FieldCataractCause, FieldCataractEyes, FieldDeliveryNumber, FieldAyushTreatment,
	FieldCopayAcknowledged,
}

// Clone returns a deep copy.
func (f *Facts) Clone() Facts {
	var out Facts
	out.Merge(*f)
	out.ClaimType = f.ClaimType
	if f.Accident != nil && out.Accident == nil {
		out.Accident = &Accident{}
	}
	if f.Illness != nil && out.Illness == nil {
		out.Illness = &Illness{}
	}
	return out
}

// Condition returns the medical condition, or "".
func (f *Facts) Condition() string {
	if f.MedicalCondition == nil {
		return ""
	}
	return *f.MedicalCondition
}
