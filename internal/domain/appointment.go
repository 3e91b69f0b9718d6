package domain

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	UnknownPatient   = "Patient not found"
	UnknownDoctor    = "Doctor not found"
	UnknownSpecialty = "N/A"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        int    `bun:"id,pk" json:"idAppointment"`
	Date      string `bun:"date,notnull" json:"date"`
	StartTime string `bun:"start_time,notnull" json:"startTime"`
	EndTime   string `bun:"end_time,notnull" json:"endTime"`
	PatientID int    `bun:"patient_id,notnull" json:"patientId"`
	DoctorID  int    `bun:"doctor_id,notnull" json:"doctorId"`
}

// ValidateSchedule records the date and time problems of a. now is read in its
// own location, which is also the location of the appointment.
func (a Appointment) ValidateSchedule(v *ValidationError, now time.Time) {
	day, dateOK := ParseDate(a.Date, now.Location())
	if !dateOK {
		v.Add("date", ProblemInvalid, "date must be a valid YYYY-MM-DD date")
	} else if day.Before(startOfDay(now)) {
		v.Add("date", ProblemInvalid, "date cannot be in the past")
	}

	startOK := ValidClock(a.StartTime)
	if !startOK {
		v.Add("startTime", ProblemInvalid, "startTime must be HH:MM")
	}
	endOK := ValidClock(a.EndTime)
	if !endOK {
		v.Add("endTime", ProblemInvalid, "endTime must be HH:MM")
	}
	if startOK && endOK && a.StartTime >= a.EndTime {
		v.Add("endTime", ProblemInvalid, "startTime must be before endTime")
	}

	if dateOK && startOK {
		at, err := time.ParseInLocation(DateLayout+" "+ClockLayout, a.Date+" "+a.StartTime, now.Location())
		if err == nil && !at.After(now) {
			v.Add("startTime", ProblemInvalid, "appointment must start in the future")
		}
	}
}

// FindConflict returns the first appointment in existing that books the same
// doctor on the same date over an overlapping interval. excludeID skips the
// appointment being edited; 0 excludes nothing.
func FindConflict(existing []Appointment, candidate Appointment, excludeID int) (Appointment, bool) {
	for _, e := range existing {
		if excludeID != 0 && e.ID == excludeID {
			continue
		}
		if e.DoctorID != candidate.DoctorID || e.Date != candidate.Date {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, e.StartTime, e.EndTime) {
			return e, true
		}
	}
	return Appointment{}, false
}

type AppointmentPatch struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	PatientID *int    `json:"patientId"`
	DoctorID  *int    `json:"doctorId"`
}

func (ap AppointmentPatch) Apply(a Appointment) Appointment {
	if v := trimmed(ap.Date); v != nil {
		a.Date = *v
	}
	if v := trimmed(ap.StartTime); v != nil {
		a.StartTime = *v
	}
	if v := trimmed(ap.EndTime); v != nil {
		a.EndTime = *v
	}
	if ap.PatientID != nil {
		a.PatientID = *ap.PatientID
	}
	if ap.DoctorID != nil {
		a.DoctorID = *ap.DoctorID
	}
	return a
}

// FullAppointment is an appointment joined with display data of its patient
// and doctor.
type FullAppointment struct {
	Appointment
	Patient   string `json:"patient"`
	Doctor    string `json:"doctor"`
	Specialty string `json:"specialty"`
}

func JoinAppointment(a Appointment, p *Patient, d *Doctor) FullAppointment {
	full := FullAppointment{
		Appointment: a,
		Patient:     UnknownPatient,
		Doctor:      UnknownDoctor,
		Specialty:   UnknownSpecialty,
	}
	if p != nil {
		full.Patient = p.Name + " " + p.Surname
	}
	if d != nil {
		full.Doctor = d.Name + " " + d.Surname
		full.Specialty = d.Specialty
	}
	return full
}
