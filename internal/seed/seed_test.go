package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talDoFlemis/health-hub/internal/auth"
	"github.com/talDoFlemis/health-hub/internal/clinic"
)

type fakePatientStore struct {
	byID map[string]*clinic.Patient
}

func (f *fakePatientStore) Create(_ context.Context, p *clinic.Patient) error {
	if p.ID == "" {
		p.ID = fmt.Sprintf("p-%d", len(f.byID)+1)
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePatientStore) Find(_ context.Context, id string) (*clinic.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, clinic.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientStore) FindByEmail(_ context.Context, email string) (*clinic.Patient, error) {
	for _, p := range f.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, clinic.ErrNotFound
}

func (f *fakePatientStore) List(context.Context) ([]*clinic.Patient, error) { return nil, nil }
func (f *fakePatientStore) Update(context.Context, *clinic.Patient) error  { return nil }
func (f *fakePatientStore) Delete(context.Context, string) error           { return nil }
func (f *fakePatientStore) Count(context.Context) (int64, error)           { return int64(len(f.byID)), nil }

type fakePhysicianStore struct {
	byID map[string]*clinic.Physician
}

func (f *fakePhysicianStore) Create(_ context.Context, p *clinic.Physician) error {
	if p.ID == "" {
		p.ID = fmt.Sprintf("ph-%d", len(f.byID)+1)
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePhysicianStore) Find(_ context.Context, id string) (*clinic.Physician, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, clinic.ErrNotFound
	}
	return p, nil
}

func (f *fakePhysicianStore) List(context.Context) ([]*clinic.Physician, error) { return nil, nil }
func (f *fakePhysicianStore) Update(context.Context, *clinic.Physician) error   { return nil }
func (f *fakePhysicianStore) Delete(context.Context, string) error              { return nil }
func (f *fakePhysicianStore) Count(context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

type fakeAttendantStore struct{}

func (fakeAttendantStore) Create(context.Context, *clinic.Attendant) error { return nil }
func (fakeAttendantStore) Find(context.Context, string) (*clinic.Attendant, error) {
	return nil, clinic.ErrNotFound
}
func (fakeAttendantStore) FindByEmail(context.Context, string) (*clinic.Attendant, error) {
	return nil, clinic.ErrNotFound
}
func (fakeAttendantStore) List(context.Context) ([]*clinic.Attendant, error) { return nil, nil }
func (fakeAttendantStore) Update(context.Context, *clinic.Attendant) error   { return nil }
func (fakeAttendantStore) Delete(context.Context, string) error              { return nil }

type fakeAppointmentStore struct {
	rows []*clinic.Appointment
}

func (f *fakeAppointmentStore) Create(_ context.Context, a *clinic.Appointment) error {
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeAppointmentStore) Find(context.Context, string) (*clinic.Appointment, error) {
	return nil, clinic.ErrNotFound
}
func (f *fakeAppointmentStore) List(context.Context) ([]*clinic.Appointment, error) {
	return f.rows, nil
}
func (f *fakeAppointmentStore) ListBetween(context.Context, time.Time, time.Time) ([]*clinic.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentStore) ListByPatient(context.Context, string) ([]*clinic.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentStore) ListByPatientBetween(context.Context, string, time.Time, time.Time) ([]*clinic.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentStore) ListByPhysician(context.Context, string) ([]*clinic.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentStore) ListByPhysicianBetween(context.Context, string, time.Time, time.Time) ([]*clinic.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentStore) Update(context.Context, *clinic.Appointment) error { return nil }
func (f *fakeAppointmentStore) Delete(context.Context, string) error              { return nil }
func (f *fakeAppointmentStore) DeleteByPatient(context.Context, string) error     { return nil }
func (f *fakeAppointmentStore) DeleteByPhysician(context.Context, string) error   { return nil }
func (f *fakeAppointmentStore) Count(context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

type fakeStore struct {
	patients     *fakePatientStore
	physicians   *fakePhysicianStore
	attendants   fakeAttendantStore
	appointments *fakeAppointmentStore
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients:     &fakePatientStore{byID: make(map[string]*clinic.Patient)},
		physicians:   &fakePhysicianStore{byID: make(map[string]*clinic.Physician)},
		appointments: &fakeAppointmentStore{},
	}
}

func (f *fakeStore) Patients() clinic.PatientStore         { return f.patients }
func (f *fakeStore) Physicians() clinic.PhysicianStore     { return f.physicians }
func (f *fakeStore) Attendants() clinic.AttendantStore     { return f.attendants }
func (f *fakeStore) Appointments() clinic.AppointmentStore { return f.appointments }

type fakeUserStore struct {
	byEmail map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*auth.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *auth.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return auth.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", len(f.byEmail)+1)
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) Find(context.Context, string) (*auth.User, error) {
	return nil, auth.ErrNotFound
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func writeSeedFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"patients.csv": "id,firstname,lastname,dbo,email\n" +
			"1,Joao,Silva,1990-03-15,joao@example.com\n" +
			"2,Maria,Santos,1985-11-02,maria@example.com\n",
		"physicians.csv": "id,name,email,specialty\n" +
			"1,Dr. House,house@example.com,CARDIOLOGY\n",
		"appointments.csv": "id,annotations,time,patient_id,physician_id\n" +
			"1,checkup,2026-02-10T09:30:00,1,1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func newTestSeeder() (*Seeder, *fakeStore, *fakeUserStore) {
	store := newFakeStore()
	users := newFakeUserStore()
	return New(store, users, log.New(io.Discard, "", 0)), store, users
}

func TestRunSeedsEmptyDatabase(t *testing.T) {
	dir := writeSeedFiles(t)
	seeder, store, users := newTestSeeder()

	if err := seeder.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// two CSV patients plus the bootstrap patient record
	if got := len(store.patients.byID); got != 3 {
		t.Errorf("expected 3 patients, got %d", got)
	}
	if got := len(store.physicians.byID); got != 1 {
		t.Errorf("expected 1 physician, got %d", got)
	}
	if got := len(store.appointments.rows); got != 1 {
		t.Errorf("expected 1 appointment, got %d", got)
	}

	for _, email := range []string{"gepeto@healthhub.com", "gabrigas@healthhub.com", "tubias@healthhub.com"} {
		u, err := users.FindByEmail(context.Background(), email)
		if err != nil {
			t.Fatalf("bootstrap user %s missing: %v", email, err)
		}
		if err := auth.VerifyPassword(u.PasswordHash, bootstrapPassword); err != nil {
			t.Errorf("bootstrap password does not verify for %s", email)
		}
	}

	p, err := store.patients.FindByEmail(context.Background(), "tubias@healthhub.com")
	if err != nil {
		t.Fatalf("bootstrap patient record missing: %v", err)
	}
	if p.Firstname != "Tubias" {
		t.Errorf("unexpected bootstrap patient %+v", p)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := writeSeedFiles(t)
	seeder, store, users := newTestSeeder()

	if err := seeder.Run(context.Background(), dir); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := seeder.Run(context.Background(), dir); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if got := len(store.patients.byID); got != 3 {
		t.Errorf("second run duplicated patients: %d", got)
	}
	if got := len(store.appointments.rows); got != 1 {
		t.Errorf("second run duplicated appointments: %d", got)
	}
	if got := len(users.byEmail); got != 3 {
		t.Errorf("second run duplicated users: %d", got)
	}
}

func TestRunSkipsLoadingWhenTablesPopulated(t *testing.T) {
	seeder, store, _ := newTestSeeder()
	ctx := context.Background()

	dbo, _ := time.Parse(dateLayout, "1990-01-01")
	if err := store.patients.Create(ctx, &clinic.Patient{Firstname: "Pre", Lastname: "Existing", DBO: dbo, Email: "pre@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := store.physicians.Create(ctx, &clinic.Physician{Name: "Dr. Pre", Email: "drpre@example.com", Specialty: clinic.SpecialtyCardiology}); err != nil {
		t.Fatal(err)
	}

	// no CSV files exist in the directory; populated tables are skipped
	if err := seeder.Run(ctx, t.TempDir()); err != nil {
		t.Fatalf("Run against populated tables: %v", err)
	}
}

func TestRunRejectsAppointmentWithUnknownPatient(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"patients.csv":   "id,firstname,lastname,dbo,email\n1,Joao,Silva,1990-03-15,joao@example.com\n",
		"physicians.csv": "id,name,email,specialty\n1,Dr. House,house@example.com,CARDIOLOGY\n",
		"appointments.csv": "id,annotations,time,patient_id,physician_id\n" +
			"1,checkup,2026-02-10T09:30:00,999,1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	seeder, _, _ := newTestSeeder()
	err := seeder.Run(context.Background(), dir)
	if err == nil {
		t.Fatal("expected an error for an appointment pointing at a missing patient")
	}
	if !errors.Is(err, clinic.ErrNotFound) {
		t.Errorf("expected ErrNotFound in chain, got %v", err)
	}
}

func TestParseCSVNormalizesHeader(t *testing.T) {
	in := " ID , FirstName ,Email\n7,Ana,ana@example.com\n"
	records, err := parseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.get("id") != "7" || r.get("firstname") != "Ana" || r.get("email") != "ana@example.com" {
		t.Errorf("unexpected fields: %+v", r.fields)
	}
	if r.line != 2 {
		t.Errorf("expected line 2, got %d", r.line)
	}
}

func TestParseCSVShortRow(t *testing.T) {
	// csv.Reader enforces a constant field count per record
	in := "id,name,email\n1,Ana\n"
	if _, err := parseCSV(strings.NewReader(in)); err == nil {
		t.Fatal("expected an error for a short row")
	}
}

func TestRecordTimestampFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2026-02-10T09:30:00Z", time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)},
		{"2026-02-10T09:30:00", time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)},
		{"2026-02-10 09:30:00", time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		r := record{fields: map[string]string{"time": tt.raw}, line: 2}
		got, err := r.timestamp("time")
		if err != nil {
			t.Errorf("timestamp(%q): %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("timestamp(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	r := record{fields: map[string]string{"time": "10/02/2026"}, line: 4}
	if _, err := r.timestamp("time"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}
