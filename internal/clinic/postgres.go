package clinic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talDoFlemis/health-hub/internal/ids"
)

const pgUniqueViolation = "23505"

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db           *sql.DB
	patients     *pgPatientStore
	physicians   *pgPhysicianStore
	attendants   *pgAttendantStore
	appointments *pgAppointmentStore
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{
		db:           db,
		patients:     &pgPatientStore{db: db},
		physicians:   &pgPhysicianStore{db: db},
		attendants:   &pgAttendantStore{db: db},
		appointments: &pgAppointmentStore{db: db},
	}
}

func (s *PGStore) Patients() PatientStore         { return s.patients }
func (s *PGStore) Physicians() PhysicianStore     { return s.physicians }
func (s *PGStore) Attendants() AttendantStore     { return s.attendants }
func (s *PGStore) Appointments() AppointmentStore { return s.appointments }

type pgPatientStore struct {
	db *sql.DB
}

const patientColumns = `id, firstname, lastname, dbo, email`

func scanPatient(row interface{ Scan(...any) error }) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Firstname, &p.Lastname, &p.DBO, &p.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *pgPatientStore) Create(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (id, firstname, lastname, dbo, email) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Firstname, p.Lastname, p.DBO, p.Email,
	)
	return mapConflict(err)
}

func (s *pgPatientStore) Find(ctx context.Context, id string) (*Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

func (s *pgPatientStore) FindByEmail(ctx context.Context, email string) (*Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
	return scanPatient(row)
}

func (s *pgPatientStore) List(ctx context.Context) ([]*Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+patientColumns+` FROM patients ORDER BY lastname, firstname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgPatientStore) Update(ctx context.Context, p *Patient) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE patients SET firstname = $2, lastname = $3, dbo = $4, email = $5 WHERE id = $1`,
		p.ID, p.Firstname, p.Lastname, p.DBO, p.Email,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireAffected(res)
}

func (s *pgPatientStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *pgPatientStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM patients`).Scan(&n)
	return n, err
}

type pgPhysicianStore struct {
	db *sql.DB
}

const physicianColumns = `id, name, email, specialty`

func scanPhysician(row interface{ Scan(...any) error }) (*Physician, error) {
	var p Physician
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Specialty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *pgPhysicianStore) Create(ctx context.Context, p *Physician) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO physicians (id, name, email, specialty) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Email, p.Specialty,
	)
	return mapConflict(err)
}

func (s *pgPhysicianStore) Find(ctx context.Context, id string) (*Physician, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+physicianColumns+` FROM physicians WHERE id = $1`, id)
	return scanPhysician(row)
}

func (s *pgPhysicianStore) List(ctx context.Context) ([]*Physician, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+physicianColumns+` FROM physicians ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Physician
	for rows.Next() {
		p, err := scanPhysician(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgPhysicianStore) Update(ctx context.Context, p *Physician) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE physicians SET name = $2, email = $3, specialty = $4 WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Specialty,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireAffected(res)
}

func (s *pgPhysicianStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM physicians WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *pgPhysicianStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM physicians`).Scan(&n)
	return n, err
}

type pgAttendantStore struct {
	db *sql.DB
}

const attendantColumns = `id, firstname, lastname, dbo, email`

func scanAttendant(row interface{ Scan(...any) error }) (*Attendant, error) {
	var a Attendant
	if err := row.Scan(&a.ID, &a.Firstname, &a.Lastname, &a.DBO, &a.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *pgAttendantStore) Create(ctx context.Context, a *Attendant) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendants (id, firstname, lastname, dbo, email) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Firstname, a.Lastname, a.DBO, a.Email,
	)
	return mapConflict(err)
}

func (s *pgAttendantStore) Find(ctx context.Context, id string) (*Attendant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attendantColumns+` FROM attendants WHERE id = $1`, id)
	return scanAttendant(row)
}

func (s *pgAttendantStore) FindByEmail(ctx context.Context, email string) (*Attendant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attendantColumns+` FROM attendants WHERE email = $1`, email)
	return scanAttendant(row)
}

func (s *pgAttendantStore) List(ctx context.Context) ([]*Attendant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendantColumns+` FROM attendants ORDER BY lastname, firstname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Attendant
	for rows.Next() {
		a, err := scanAttendant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *pgAttendantStore) Update(ctx context.Context, a *Attendant) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attendants SET firstname = $2, lastname = $3, dbo = $4, email = $5 WHERE id = $1`,
		a.ID, a.Firstname, a.Lastname, a.DBO, a.Email,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireAffected(res)
}

func (s *pgAttendantStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type pgAppointmentStore struct {
	db *sql.DB
}

const appointmentColumns = `id, annotations, at, patient_id, physician_id`

func scanAppointment(row interface{ Scan(...any) error }) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.Annotations, &a.Time, &a.PatientID, &a.PhysicianID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *pgAppointmentStore) Create(ctx context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, annotations, at, patient_id, physician_id) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Annotations, a.Time, a.PatientID, a.PhysicianID,
	)
	return mapConflict(err)
}

func (s *pgAppointmentStore) Find(ctx context.Context, id string) (*Appointment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (s *pgAppointmentStore) list(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *pgAppointmentStore) List(ctx context.Context) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY at`)
}

func (s *pgAppointmentStore) ListBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE at >= $1 AND at < $2 ORDER BY at`,
		start, end)
}

func (s *pgAppointmentStore) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 ORDER BY at`,
		patientID)
}

func (s *pgAppointmentStore) ListByPatientBetween(ctx context.Context, patientID string, start, end time.Time) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 AND at >= $2 AND at < $3 ORDER BY at`,
		patientID, start, end)
}

func (s *pgAppointmentStore) ListByPhysician(ctx context.Context, physicianID string) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE physician_id = $1 ORDER BY at`,
		physicianID)
}

func (s *pgAppointmentStore) ListByPhysicianBetween(ctx context.Context, physicianID string, start, end time.Time) ([]*Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE physician_id = $1 AND at >= $2 AND at < $3 ORDER BY at`,
		physicianID, start, end)
}

func (s *pgAppointmentStore) Update(ctx context.Context, a *Appointment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET annotations = $2, at = $3, patient_id = $4, physician_id = $5 WHERE id = $1`,
		a.ID, a.Annotations, a.Time, a.PatientID, a.PhysicianID,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireAffected(res)
}

func (s *pgAppointmentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *pgAppointmentStore) DeleteByPatient(ctx context.Context, patientID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE patient_id = $1`, patientID)
	return err
}

func (s *pgAppointmentStore) DeleteByPhysician(ctx context.Context, physicianID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE physician_id = $1`, physicianID)
	return err
}

func (s *pgAppointmentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM appointments`).Scan(&n)
	return n, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
