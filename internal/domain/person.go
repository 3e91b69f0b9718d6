package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var nationalIDPattern = regexp.MustCompile(`^\d{7,8}$`)

func ValidNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}

func atLeast(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// checkPerson covers the identity fields shared by patients and doctors.
func checkPerson(v *ValidationError, name, surname, nationalID string) {
	if !atLeast(name, 2) {
		v.Add("name", ProblemInvalid, "name must have at least 2 characters")
	}
	if !atLeast(surname, 2) {
		v.Add("surname", ProblemInvalid, "surname must have at least 2 characters")
	}
	if !ValidNationalID(nationalID) {
		v.Add("nationalId", ProblemInvalid, "nationalId must have 7 or 8 digits")
	}
}
