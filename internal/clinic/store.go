package clinic

import (
	"context"
	"time"
)

// PatientStore persists patients.
type PatientStore interface {
	Create(ctx context.Context, p *Patient) error
	Find(ctx context.Context, id string) (*Patient, error)
	FindByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// PhysicianStore persists physicians.
type PhysicianStore interface {
	Create(ctx context.Context, p *Physician) error
	Find(ctx context.Context, id string) (*Physician, error)
	List(ctx context.Context) ([]*Physician, error)
	Update(ctx context.Context, p *Physician) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// AttendantStore persists attendants.
type AttendantStore interface {
	Create(ctx context.Context, a *Attendant) error
	Find(ctx context.Context, id string) (*Attendant, error)
	FindByEmail(ctx context.Context, email string) (*Attendant, error)
	List(ctx context.Context) ([]*Attendant, error)
	Update(ctx context.Context, a *Attendant) error
	Delete(ctx context.Context, id string) error
}

// AppointmentStore persists appointments. All listing methods return rows
// ordered by appointment time ascending.
type AppointmentStore interface {
	Create(ctx context.Context, a *Appointment) error
	Find(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context) ([]*Appointment, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListByPatientBetween(ctx context.Context, patientID string, start, end time.Time) ([]*Appointment, error)
	ListByPhysician(ctx context.Context, physicianID string) ([]*Appointment, error)
	ListByPhysicianBetween(ctx context.Context, physicianID string, start, end time.Time) ([]*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id string) error
	DeleteByPatient(ctx context.Context, patientID string) error
	DeleteByPhysician(ctx context.Context, physicianID string) error
	Count(ctx context.Context) (int64, error)
}

// Store bundles the per-entity stores behind one handle.
type Store interface {
	Patients() PatientStore
	Physicians() PhysicianStore
	Attendants() AttendantStore
	Appointments() AppointmentStore
}
