package domain

import "github.com/uptrace/bun"

type Doctor struct {
	bun.BaseModel `bun:"table:doctors"`

	ID         int    `bun:"id,pk" json:"idDoctor"`
	Name       string `bun:"name,notnull" json:"name"`
	Surname    string `bun:"surname,notnull" json:"surname"`
	NationalID string `bun:"national_id,notnull" json:"nationalId"`
	Specialty  string `bun:"specialty,notnull" json:"specialty"`
}

func (d Doctor) Validate() error {
	var v ValidationError
	checkPerson(&v, d.Name, d.Surname, d.NationalID)
	if !atLeast(d.Specialty, 3) {
		v.Add("specialty", ProblemInvalid, "specialty must have at least 3 characters")
	}
	return v.Err()
}

type DoctorPatch struct {
	Name       *string `json:"name"`
	Surname    *string `json:"surname"`
	NationalID *string `json:"nationalId"`
	Specialty  *string `json:"specialty"`
}

func (dp DoctorPatch) Apply(d Doctor) Doctor {
	if v := trimmed(dp.Name); v != nil {
		d.Name = *v
	}
	if v := trimmed(dp.Surname); v != nil {
		d.Surname = *v
	}
	if v := trimmed(dp.NationalID); v != nil {
		d.NationalID = *v
	}
	if v := trimmed(dp.Specialty); v != nil {
		d.Specialty = *v
	}
	return d
}

func NewDoctor(in DoctorPatch) (Doctor, error) {
	d := in.Apply(Doctor{})
	return d, d.Validate()
}
