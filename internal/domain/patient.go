package domain

import (
	"strings"

	"github.com/uptrace/bun"
)

const (
	SexMale   = "M"
	SexFemale = "F"

	MaxAge = 120
)

type Patient struct {
	bun.BaseModel `bun:"table:patients"`

	ID                int    `bun:"id,pk" json:"idPatient"`
	Name              string `bun:"name,notnull" json:"name"`
	Surname           string `bun:"surname,notnull" json:"surname"`
	NationalID        string `bun:"national_id,notnull" json:"nationalId"`
	Age               int    `bun:"age,notnull" json:"age"`
	Sex               string `bun:"sex,notnull" json:"sex"`
	InsuranceProvider string `bun:"insurance_provider,notnull" json:"insuranceProvider"`
	MemberNumber      string `bun:"member_number,notnull" json:"memberNumber"`
}

func (p Patient) Validate() error {
	var v ValidationError
	p.check(&v)
	return v.Err()
}

func (p Patient) check(v *ValidationError) {
	checkPerson(v, p.Name, p.Surname, p.NationalID)
	if p.Age < 0 || p.Age > MaxAge {
		v.Add("age", ProblemInvalid, "age must be between 0 and 120")
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		v.Add("sex", ProblemInvalid, "sex must be M or F")
	}
	if !atLeast(p.InsuranceProvider, 2) {
		v.Add("insuranceProvider", ProblemInvalid, "insuranceProvider must have at least 2 characters")
	}
	if !atLeast(p.MemberNumber, 3) {
		v.Add("memberNumber", ProblemInvalid, "memberNumber must have at least 3 characters")
	}
}

// PatientPatch carries the fields of a create or update request. Nil fields are
// left untouched by Apply.
type PatientPatch struct {
	Name              *string `json:"name"`
	Surname           *string `json:"surname"`
	NationalID        *string `json:"nationalId"`
	Age               *int    `json:"age"`
	Sex               *string `json:"sex"`
	InsuranceProvider *string `json:"insuranceProvider"`
	MemberNumber      *string `json:"memberNumber"`
}

func (pp PatientPatch) Apply(p Patient) Patient {
	if v := trimmed(pp.Name); v != nil {
		p.Name = *v
	}
	if v := trimmed(pp.Surname); v != nil {
		p.Surname = *v
	}
	if v := trimmed(pp.NationalID); v != nil {
		p.NationalID = *v
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if v := trimmed(pp.Sex); v != nil {
		p.Sex = strings.ToUpper(*v)
	}
	if v := trimmed(pp.InsuranceProvider); v != nil {
		p.InsuranceProvider = *v
	}
	if v := trimmed(pp.MemberNumber); v != nil {
		p.MemberNumber = *v
	}
	return p
}

// NewPatient builds a patient from a create request. Every field is required,
// including age, whose zero value is otherwise a valid age.
func NewPatient(in PatientPatch) (Patient, error) {
	p := in.Apply(Patient{})
	var v ValidationError
	p.check(&v)
	if in.Age == nil && !v.Has("age") {
		v.Add("age", ProblemRequired, "age is required")
	}
	return p, v.Err()
}
