package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service implements the clinic use cases on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("clinic: store is nil")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreatePatientInput carries the fields needed to register a patient.
type CreatePatientInput struct {
	Firstname string
	Lastname  string
	DBO       time.Time
	Email     string
}

// UpdatePatientInput carries a partial patient update. Nil fields keep
// their stored value.
type UpdatePatientInput struct {
	Firstname *string
	Lastname  *string
	DBO       *time.Time
	Email     *string
}

func (s *Service) Patients(ctx context.Context) ([]*Patient, error) {
	return s.store.Patients().List(ctx)
}

func (s *Service) Patient(ctx context.Context, id string) (*Patient, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty patient id", ErrInvalidInput)
	}
	return s.store.Patients().Find(ctx, id)
}

func (s *Service) PatientByEmail(ctx context.Context, email string) (*Patient, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", ErrInvalidInput)
	}
	return s.store.Patients().FindByEmail(ctx, email)
}

func (s *Service) CreatePatient(ctx context.Context, in CreatePatientInput) (*Patient, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Firstname == "" || in.Lastname == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: firstname, lastname and email are required", ErrInvalidInput)
	}
	if in.DBO.IsZero() {
		return nil, fmt.Errorf("%w: date of birth is required", ErrInvalidInput)
	}
	p := &Patient{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		DBO:       in.DBO,
		Email:     in.Email,
	}
	if err := s.store.Patients().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, in UpdatePatientInput) (*Patient, error) {
	p, err := s.Patient(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Firstname != nil {
		p.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		p.Lastname = *in.Lastname
	}
	if in.DBO != nil {
		p.DBO = *in.DBO
	}
	if in.Email != nil {
		p.Email = normalizeEmail(*in.Email)
	}
	if err := s.store.Patients().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePatient deletes a patient together with their appointments.
func (s *Service) RemovePatient(ctx context.Context, id string) error {
	if _, err := s.Patient(ctx, id); err != nil {
		return err
	}
	if err := s.store.Appointments().DeleteByPatient(ctx, id); err != nil {
		return err
	}
	return s.store.Patients().Delete(ctx, id)
}

// PatientAppointments returns the appointments of the patient holding the
// given email, ordered by appointment time.
func (s *Service) PatientAppointments(ctx context.Context, email string) ([]*Appointment, error) {
	p, err := s.PatientByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByPatient(ctx, p.ID)
}

// CreatePhysicianInput carries the fields needed to register a physician.
type CreatePhysicianInput struct {
	Name      string
	Email     string
	Specialty string
}

// UpdatePhysicianInput carries a partial physician update.
type UpdatePhysicianInput struct {
	Name      *string
	Email     *string
	Specialty *string
}

func (s *Service) Physicians(ctx context.Context) ([]*Physician, error) {
	return s.store.Physicians().List(ctx)
}

func (s *Service) Physician(ctx context.Context, id string) (*Physician, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty physician id", ErrInvalidInput)
	}
	return s.store.Physicians().Find(ctx, id)
}

func (s *Service) CreatePhysician(ctx context.Context, in CreatePhysicianInput) (*Physician, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	spec, err := ParseSpecialty(in.Specialty)
	if err != nil {
		return nil, err
	}
	p := &Physician{Name: in.Name, Email: in.Email, Specialty: spec}
	if err := s.store.Physicians().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePhysician(ctx context.Context, id string, in UpdatePhysicianInput) (*Physician, error) {
	p, err := s.Physician(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = normalizeEmail(*in.Email)
	}
	if in.Specialty != nil {
		spec, err := ParseSpecialty(*in.Specialty)
		if err != nil {
			return nil, err
		}
		p.Specialty = spec
	}
	if err := s.store.Physicians().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePhysician deletes a physician together with their appointments.
func (s *Service) RemovePhysician(ctx context.Context, id string) error {
	if _, err := s.Physician(ctx, id); err != nil {
		return err
	}
	if err := s.store.Appointments().DeleteByPhysician(ctx, id); err != nil {
		return err
	}
	return s.store.Physicians().Delete(ctx, id)
}

// PhysicianAppointments returns the appointments booked with a physician,
// ordered by appointment time.
func (s *Service) PhysicianAppointments(ctx context.Context, id string) ([]*Appointment, error) {
	if _, err := s.Physician(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByPhysician(ctx, id)
}

// CreateAttendantInput carries the fields needed to register an attendant.
type CreateAttendantInput struct {
	Firstname string
	Lastname  string
	DBO       time.Time
	Email     string
}

// UpdateAttendantInput carries a partial attendant update.
type UpdateAttendantInput struct {
	Firstname *string
	Lastname  *string
	DBO       *time.Time
	Email     *string
}

func (s *Service) fillAge(a *Attendant) *Attendant {
	a.Age = a.AgeAt(s.now())
	return a
}

func (s *Service) Attendants(ctx context.Context) ([]*Attendant, error) {
	list, err := s.store.Attendants().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		s.fillAge(a)
	}
	return list, nil
}

func (s *Service) Attendant(ctx context.Context, id string) (*Attendant, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty attendant id", ErrInvalidInput)
	}
	a, err := s.store.Attendants().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.fillAge(a), nil
}

func (s *Service) AttendantByEmail(ctx context.Context, email string) (*Attendant, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", ErrInvalidInput)
	}
	a, err := s.store.Attendants().FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.fillAge(a), nil
}

func (s *Service) CreateAttendant(ctx context.Context, in CreateAttendantInput) (*Attendant, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Firstname == "" || in.Lastname == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: firstname, lastname and email are required", ErrInvalidInput)
	}
	if in.DBO.IsZero() {
		return nil, fmt.Errorf("%w: date of birth is required", ErrInvalidInput)
	}
	a := &Attendant{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		DBO:       in.DBO,
		Email:     in.Email,
	}
	if err := s.store.Attendants().Create(ctx, a); err != nil {
		return nil, err
	}
	return s.fillAge(a), nil
}

func (s *Service) UpdateAttendant(ctx context.Context, id string, in UpdateAttendantInput) (*Attendant, error) {
	a, err := s.store.Attendants().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Firstname != nil {
		a.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		a.Lastname = *in.Lastname
	}
	if in.DBO != nil {
		a.DBO = *in.DBO
	}
	if in.Email != nil {
		a.Email = normalizeEmail(*in.Email)
	}
	if err := s.store.Attendants().Update(ctx, a); err != nil {
		return nil, err
	}
	return s.fillAge(a), nil
}

func (s *Service) RemoveAttendant(ctx context.Context, id string) error {
	if _, err := s.store.Attendants().Find(ctx, id); err != nil {
		return err
	}
	return s.store.Attendants().Delete(ctx, id)
}

// CreateAppointmentInput carries the fields needed to book an appointment.
type CreateAppointmentInput struct {
	Annotations string
	Time        time.Time
	PatientID   string
	PhysicianID string
}

// UpdateAppointmentInput carries a partial appointment update.
type UpdateAppointmentInput struct {
	Annotations *string
	Time        *time.Time
	PatientID   *string
	PhysicianID *string
}

func (s *Service) Appointments(ctx context.Context) ([]*Appointment, error) {
	return s.store.Appointments().List(ctx)
}

// AppointmentsBetween lists appointments with start <= time < end.
func (s *Service) AppointmentsBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must precede end", ErrInvalidInput)
	}
	return s.store.Appointments().ListBetween(ctx, start, end)
}

func (s *Service) AppointmentsByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	if _, err := s.Patient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByPatient(ctx, patientID)
}

func (s *Service) AppointmentsByPatientBetween(ctx context.Context, patientID string, start, end time.Time) ([]*Appointment, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must precede end", ErrInvalidInput)
	}
	if _, err := s.Patient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByPatientBetween(ctx, patientID, start, end)
}

func (s *Service) AppointmentsByPhysicianBetween(ctx context.Context, physicianID string, start, end time.Time) ([]*Appointment, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must precede end", ErrInvalidInput)
	}
	if _, err := s.Physician(ctx, physicianID); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByPhysicianBetween(ctx, physicianID, start, end)
}

func (s *Service) Appointment(ctx context.Context, id string) (*Appointment, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty appointment id", ErrInvalidInput)
	}
	return s.store.Appointments().Find(ctx, id)
}

func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*Appointment, error) {
	if in.Time.IsZero() {
		return nil, fmt.Errorf("%w: appointment time is required", ErrInvalidInput)
	}
	if _, err := s.Patient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.Physician(ctx, in.PhysicianID); err != nil {
		return nil, err
	}
	a := &Appointment{
		Annotations: in.Annotations,
		Time:        in.Time,
		PatientID:   in.PatientID,
		PhysicianID: in.PhysicianID,
	}
	if err := s.store.Appointments().Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id string, in UpdateAppointmentInput) (*Appointment, error) {
	a, err := s.Appointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Annotations != nil {
		a.Annotations = *in.Annotations
	}
	if in.Time != nil {
		a.Time = *in.Time
	}
	if in.PatientID != nil {
		if _, err := s.Patient(ctx, *in.PatientID); err != nil {
			return nil, err
		}
		a.PatientID = *in.PatientID
	}
	if in.PhysicianID != nil {
		if _, err := s.Physician(ctx, *in.PhysicianID); err != nil {
			return nil, err
		}
		a.PhysicianID = *in.PhysicianID
	}
	if err := s.store.Appointments().Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) RemoveAppointment(ctx context.Context, id string) error {
	if _, err := s.Appointment(ctx, id); err != nil {
		return err
	}
	return s.store.Appointments().Delete(ctx, id)
}
