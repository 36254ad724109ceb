package clinic

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("clinic: not found")
	ErrAlreadyExists = errors.New("clinic: already exists")
	ErrInvalidInput  = errors.New("clinic: invalid input")
)

// Specialty is the closed set of physician specialties.
type Specialty string

const (
	SpecialtyCardiology       Specialty = "CARDIOLOGY"
	SpecialtyDermatology      Specialty = "DERMATOLOGY"
	SpecialtyEndocrinology    Specialty = "ENDOCRINOLOGY"
	SpecialtyGastroenterology Specialty = "GASTROENTEROLOGY"
	SpecialtyGeriatrics       Specialty = "GERIATRICS"
	SpecialtyGynecology       Specialty = "GYNECOLOGY"
	SpecialtyHematology       Specialty = "HEMATOLOGY"
	SpecialtyNephrology       Specialty = "NEPHROLOGY"
	SpecialtyNeuroradiology   Specialty = "NEURORADIOLOGY"
	SpecialtyObstetrics       Specialty = "OBSTETRICS"
	SpecialtyPediatrics       Specialty = "PEDIATRICS"
	SpecialtyPsychiatry       Specialty = "PSYCHIATRY"
	SpecialtyRheumatology     Specialty = "RHEUMATOLOGY"
	SpecialtyUrology          Specialty = "UROLOGY"
)

var specialties = map[Specialty]struct{}{
	SpecialtyCardiology: {}, SpecialtyDermatology: {}, SpecialtyEndocrinology: {},
	SpecialtyGastroenterology: {}, SpecialtyGeriatrics: {}, SpecialtyGynecology: {},
	SpecialtyHematology: {}, SpecialtyNephrology: {}, SpecialtyNeuroradiology: {},
	SpecialtyObstetrics: {}, SpecialtyPediatrics: {}, SpecialtyPsychiatry: {},
	SpecialtyRheumatology: {}, SpecialtyUrology: {},
}

// Valid reports whether s is one of the known specialties.
func (s Specialty) Valid() bool {
	_, ok := specialties[s]
	return ok
}

// ParseSpecialty normalizes and validates a specialty name.
func ParseSpecialty(s string) (Specialty, error) {
	spec := Specialty(strings.ToUpper(strings.TrimSpace(s)))
	if !spec.Valid() {
		return "", fmt.Errorf("%w: unknown specialty %q", ErrInvalidInput, s)
	}
	return spec, nil
}

// Patient is a person receiving care. DBO is the date of birth; the field
// name follows the wire format the frontend already speaks.
type Patient struct {
	ID        string    `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	DBO       time.Time `json:"dbo"`
	Email     string    `json:"email"`
}

// Physician is a doctor offering appointments in one specialty.
type Physician struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty Specialty `json:"specialty"`
}

// Attendant is a front-desk account. Age is derived from DBO on the way
// out and never stored.
type Attendant struct {
	ID        string    `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	DBO       time.Time `json:"dbo"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
}

// AgeAt returns the attendant's age in whole years at the given instant.
func (a *Attendant) AgeAt(now time.Time) int {
	years := now.Year() - a.DBO.Year()
	anniversary := a.DBO.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Appointment links a patient and a physician at a point in time.
type Appointment struct {
	ID          string    `json:"id"`
	Annotations string    `json:"annotations"`
	Time        time.Time `json:"time"`
	PatientID   string    `json:"patient_id"`
	PhysicianID string    `json:"physician_id"`
}
