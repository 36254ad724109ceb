// Package seed loads initial clinic data from CSV files and creates the
// bootstrap accounts used for first login.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
)

const dateLayout = "2006-01-02"

// bootstrapPassword is the well-known first-login password for the seeded
// accounts. Deployments are expected to rotate it.
const bootstrapPassword = "1234"

// Seeder populates an empty database.
type Seeder struct {
	store clinic.Store
	users auth.UserStore
	log   *log.Logger
}

func New(store clinic.Store, users auth.UserStore, logger *log.Logger) *Seeder {
	return &Seeder{store: store, users: users, log: logger}
}

// Run loads patients, physicians and appointments from CSV files in dir and
// creates the bootstrap users. Each data set is skipped when its table is
// already populated, so repeated runs are safe.
func (s *Seeder) Run(ctx context.Context, dir string) error {
	patientsEmpty, err := isEmpty(ctx, s.store.Patients().Count)
	if err != nil {
		return err
	}
	physiciansEmpty, err := isEmpty(ctx, s.store.Physicians().Count)
	if err != nil {
		return err
	}
	dbEmpty := patientsEmpty && physiciansEmpty

	if patientsEmpty {
		n, err := s.loadPatients(ctx, filepath.Join(dir, "patients.csv"))
		if err != nil {
			return fmt.Errorf("seed patients: %w", err)
		}
		s.log.Printf("seed: loaded %d patients", n)
	}
	if physiciansEmpty {
		n, err := s.loadPhysicians(ctx, filepath.Join(dir, "physicians.csv"))
		if err != nil {
			return fmt.Errorf("seed physicians: %w", err)
		}
		s.log.Printf("seed: loaded %d physicians", n)
	}
	if dbEmpty {
		n, err := s.loadAppointments(ctx, filepath.Join(dir, "appointments.csv"))
		if err != nil {
			return fmt.Errorf("seed appointments: %w", err)
		}
		s.log.Printf("seed: loaded %d appointments", n)
	}
	if err := s.bootstrapUsers(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

func isEmpty(ctx context.Context, count func(context.Context) (int64, error)) (bool, error) {
	n, err := count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// record is one CSV row with header-based field access.
type record struct {
	fields map[string]string
	line   int
}

func (r record) get(name string) string {
	return strings.TrimSpace(r.fields[name])
}

func (r record) date(name string) (time.Time, error) {
	t, err := time.Parse(dateLayout, r.get(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: bad %s: %w", r.line, name, err)
	}
	return t, nil
}

func (r record) timestamp(name string) (time.Time, error) {
	raw := r.get(name)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("line %d: bad %s: %q", r.line, name, raw)
}

// readCSV parses a CSV file whose first row names the columns.
func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var out []record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		out = append(out, record{fields: fields, line: line})
	}
	return out, nil
}

func (s *Seeder) loadPatients(ctx context.Context, path string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		dbo, err := r.date("dbo")
		if err != nil {
			return 0, err
		}
		p := &clinic.Patient{
			ID:        r.get("id"),
			Firstname: r.get("firstname"),
			Lastname:  r.get("lastname"),
			DBO:       dbo,
			Email:     strings.ToLower(r.get("email")),
		}
		if err := s.store.Patients().Create(ctx, p); err != nil {
			return 0, fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	return len(records), nil
}

func (s *Seeder) loadPhysicians(ctx context.Context, path string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		spec, err := clinic.ParseSpecialty(r.get("specialty"))
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", r.line, err)
		}
		p := &clinic.Physician{
			ID:        r.get("id"),
			Name:      r.get("name"),
			Email:     strings.ToLower(r.get("email")),
			Specialty: spec,
		}
		if err := s.store.Physicians().Create(ctx, p); err != nil {
			return 0, fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	return len(records), nil
}

func (s *Seeder) loadAppointments(ctx context.Context, path string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, r := range records {
		at, err := r.timestamp("time")
		if err != nil {
			return 0, err
		}
		patientID := r.get("patient_id")
		physicianID := r.get("physician_id")
		if _, err := s.store.Patients().Find(ctx, patientID); err != nil {
			return 0, fmt.Errorf("line %d: patient %s: %w", r.line, patientID, err)
		}
		if _, err := s.store.Physicians().Find(ctx, physicianID); err != nil {
			return 0, fmt.Errorf("line %d: physician %s: %w", r.line, physicianID, err)
		}
		a := &clinic.Appointment{
			ID:          r.get("id"),
			Annotations: r.get("annotations"),
			Time:        at,
			PatientID:   patientID,
			PhysicianID: physicianID,
		}
		if err := s.store.Appointments().Create(ctx, a); err != nil {
			return 0, fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	return len(records), nil
}

// bootstrapUsers creates one account per operator role, plus the patient
// record backing the patient account. Existing accounts are left alone.
func (s *Seeder) bootstrapUsers(ctx context.Context) error {
	bootstrap := []struct {
		firstname, lastname, email string
		role                       auth.Role
	}{
		{"Gepeto", "Souza", "gepeto@healthhub.com", auth.RoleAdmin},
		{"Gabrigas", "Carmo", "gabrigas@healthhub.com", auth.RoleAttendant},
		{"Tubias", "Nobre", "tubias@healthhub.com", auth.RolePatient},
	}

	hash, err := auth.HashPassword(bootstrapPassword)
	if err != nil {
		return err
	}

	for _, b := range bootstrap {
		exists, err := s.users.ExistsByEmail(ctx, b.email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		u := &auth.User{
			Firstname:    b.firstname,
			Lastname:     b.lastname,
			Email:        b.email,
			PasswordHash: hash,
			Role:         b.role,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		s.log.Printf("seed: created user %s (%s)", b.email, b.role)
	}

	// The patient account needs a patient record for /api/patient/me.
	if _, err := s.store.Patients().FindByEmail(ctx, "tubias@healthhub.com"); err == nil {
		return nil
	} else if !errors.Is(err, clinic.ErrNotFound) {
		return err
	}
	dbo, _ := time.Parse(dateLayout, "1999-01-01")
	return s.store.Patients().Create(ctx, &clinic.Patient{
		Firstname: "Tubias",
		Lastname:  "Nobre",
		DBO:       dbo,
		Email:     "tubias@healthhub.com",
	})
}
