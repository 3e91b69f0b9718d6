package domain

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestAppointmentValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		appt    Appointment
		invalid []string
	}{
		{name: "valid", appt: Appointment{Date: "2099-01-01", StartTime: "10:00", EndTime: "10:30"}},
		{name: "later today", appt: Appointment{Date: "2024-06-01", StartTime: "10:01", EndTime: "10:30"}},
		{name: "now is not future", appt: Appointment{Date: "2024-06-01", StartTime: "10:00", EndTime: "10:30"}, invalid: []string{"startTime"}},
		{name: "past date", appt: Appointment{Date: "2024-05-31", StartTime: "10:00", EndTime: "10:30"}, invalid: []string{"date", "startTime"}},
		{name: "impossible date", appt: Appointment{Date: "2099-02-30", StartTime: "10:00", EndTime: "10:30"}, invalid: []string{"date"}},
		{name: "bad date format", appt: Appointment{Date: "01/01/2099", StartTime: "10:00", EndTime: "10:30"}, invalid: []string{"date"}},
		{name: "unpadded time", appt: Appointment{Date: "2099-01-01", StartTime: "9:00", EndTime: "10:30"}, invalid: []string{"startTime"}},
		{name: "hour out of range", appt: Appointment{Date: "2099-01-01", StartTime: "10:00", EndTime: "24:00"}, invalid: []string{"endTime"}},
		{name: "end before start", appt: Appointment{Date: "2099-01-01", StartTime: "11:00", EndTime: "10:00"}, invalid: []string{"endTime"}},
		{name: "empty interval", appt: Appointment{Date: "2099-01-01", StartTime: "10:00", EndTime: "10:00"}, invalid: []string{"endTime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v ValidationError
			tt.appt.ValidateSchedule(&v, testNow)
			if len(tt.invalid) == 0 && v.Err() != nil {
				t.Fatalf("ValidateSchedule() = %v", v.Err())
			}
			for _, f := range tt.invalid {
				if !v.Has(f) {
					t.Fatalf("problems = %+v, missing %s", v.Problems, f)
				}
			}
		})
	}
}

func TestAppointmentValidateSchedule_StartBeforeEndMessage(t *testing.T) {
	var v ValidationError
	Appointment{Date: "2099-01-01", StartTime: "11:00", EndTime: "10:00"}.ValidateSchedule(&v, testNow)
	if !strings.Contains(v.Error(), "startTime must be before endTime") {
		t.Fatalf("Error() = %q", v.Error())
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"partial", "10:00", "10:30", "10:15", "10:45", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"same", "10:00", "10:30", "10:00", "10:30", true},
		{"back to back", "10:00", "10:30", "10:30", "11:00", false},
		{"before", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Fatalf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Fatalf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []Appointment{
		{ID: 1, Date: "2099-01-01", StartTime: "10:00", EndTime: "10:30", DoctorID: 1},
		{ID: 2, Date: "2099-01-02", StartTime: "10:00", EndTime: "10:30", DoctorID: 1},
	}

	tests := []struct {
		name      string
		candidate Appointment
		excludeID int
		want      bool
	}{
		{name: "overlap", candidate: Appointment{Date: "2099-01-01", StartTime: "10:15", EndTime: "10:45", DoctorID: 1}, want: true},
		{name: "other doctor", candidate: Appointment{Date: "2099-01-01", StartTime: "10:15", EndTime: "10:45", DoctorID: 2}},
		{name: "other date", candidate: Appointment{Date: "2099-01-03", StartTime: "10:15", EndTime: "10:45", DoctorID: 1}},
		{name: "back to back", candidate: Appointment{Date: "2099-01-01", StartTime: "10:30", EndTime: "11:00", DoctorID: 1}},
		{name: "excluded self", candidate: Appointment{Date: "2099-01-01", StartTime: "10:00", EndTime: "10:45", DoctorID: 1}, excludeID: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := FindConflict(existing, tt.candidate, tt.excludeID)
			if got != tt.want {
				t.Fatalf("FindConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinAppointment_Placeholders(t *testing.T) {
	a := Appointment{ID: 1, PatientID: 9, DoctorID: 9}
	got := JoinAppointment(a, nil, nil)
	if got.Patient != UnknownPatient || got.Doctor != UnknownDoctor || got.Specialty != UnknownSpecialty {
		t.Fatalf("JoinAppointment() = %+v", got)
	}

	got = JoinAppointment(a, &Patient{Name: "Ana", Surname: "Gomez"}, &Doctor{Name: "Juan", Surname: "Perez", Specialty: "Cardiology"})
	if got.Patient != "Ana Gomez" || got.Doctor != "Juan Perez" || got.Specialty != "Cardiology" {
		t.Fatalf("JoinAppointment() = %+v", got)
	}
}
