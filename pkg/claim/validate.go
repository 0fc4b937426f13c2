package claim

import (
	"fmt"
	"strings"
)

// MaxPatientAge is the oldest accepted patient age.
const MaxPatientAge = 120

// FieldError describes one malformed fact.
type FieldError struct {
	// Field is the fact name (e.g., "patient_age").
	Field string

	// Message is a human-readable error message, suitable for a re-ask hint.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every malformed fact found by Validate.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all field errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "claim validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("claim validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("claim validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Field returns the error for the named field, if any.
func (e ValidationError) Field(name string) (FieldError, bool) {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}

// Validate checks set facts for malformed values. Unset facts are never an
// error here; use Missing for completeness.
func (f *Facts) Validate() error {
	var errs []FieldError

	if f.PatientAge != nil {
		switch {
		case *f.PatientAge < 0:
			errs = append(errs, FieldError{Field: FieldPatientAge, Message: "age cannot be negative"})
		case *f.PatientAge > MaxPatientAge:
			errs = append(errs, FieldError{Field: FieldPatientAge, Message: fmt.Sprintf("age must be at most %d", MaxPatientAge)})
		}
	}

	if f.ClaimAmount != nil && *f.ClaimAmount < 0 {
		errs = append(errs, FieldError{Field: FieldClaimAmount, Message: "claim amount cannot be negative"})
	}

	if f.SumInsured != nil && *f.SumInsured <= 0 {
		errs = append(errs, FieldError{Field: FieldSumInsured, Message: "sum insured must be positive"})
	}

	if f.PolicyStartDate != nil && f.ClaimDate != nil && f.ClaimDate.Before(*f.PolicyStartDate) {
		errs = append(errs, FieldError{Field: FieldPolicyStartDate, Message: "policy start date is after the claim date"})
	}

	if f.DeliveryNumber != nil && *f.DeliveryNumber < 1 {
		errs = append(errs, FieldError{Field: FieldDeliveryNumber, Message: "delivery number must be 1 or more"})
	}

	if f.Gender != nil {
		switch *f.Gender {
		case "male", "female", "other":
		default:
			errs = append(errs, FieldError{Field: FieldGender, Message: "gender must be male, female or other"})
		}
	}

	if f.Accident != nil {
		switch f.Accident.Type {
		case "", AccidentRoadTraffic, AccidentDomestic, AccidentWorkplace, AccidentSports, AccidentOther:
		default:
			errs = append(errs, FieldError{Field: FieldAccidentType, Message: fmt.Sprintf("unknown accident type %q", f.Accident.Type)})
		}
	}

	switch f.ClaimType {
	case TypeGeneric, TypeAccident, TypeIllness:
	default:
		errs = append(errs, FieldError{Field: FieldClaimType, Message: fmt.Sprintf("unknown claim type %q", f.ClaimType)})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// Without returns a copy of f with the named fields unset. It is used to
// drop malformed facts after validation.
func (f *Facts) Without(fields ...string) Facts {
	out := f.Clone()
	for _, field := range fields {
		switch field {
		case FieldPatientName:
			out.PatientName = nil
		case FieldPatientAge:
			out.PatientAge = nil
		case FieldGender:
			out.Gender = nil
		case FieldPolicyStartDate:
			out.PolicyStartDate = nil
		case FieldClaimDate:
			out.ClaimDate = nil
		case FieldMedicalCondition:
			out.MedicalCondition = nil
		case FieldClaimAmount:
			out.ClaimAmount = nil
		case FieldSumInsured:
			out.SumInsured = nil
		case FieldTreatmentType:
			out.TreatmentType = nil
		case FieldDeliveryNumber:
			out.DeliveryNumber = nil
		case FieldClaimType:
			out.ClaimType = TypeGeneric
		case FieldAccidentType:
			if out.Accident != nil {
				out.Accident.Type = ""
			}
		}
	}
	return out
}
