package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/google/go-cmp/cmp"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleRows() []models.WorkoutSet {
	return []models.WorkoutSet{
		{Cycle: 1, Week: 1, Session: "Push", Exercise: "Bench (Barre)", SetIndex: 1, Reps: 8, Weight: 80, MuscleGroup: "Pecs", Date: "2026-01-05"},
		{Cycle: 1, Week: 1, Session: "Push", Exercise: "Bench (Barre)", SetIndex: 2, Reps: 7, Weight: 82.5},
		{Cycle: 1, Week: 0, Session: "Pull", Exercise: "Row", SetIndex: 1, Note: models.NoteSkipped},
		{Cycle: 2, Week: 3, Session: "Légs", Exercise: "Squat", SetIndex: 1, Reps: 5, Weight: 140, Note: "dur, mais ok"},
	}
}

func sampleProgram() models.Program {
	return models.Program{Sessions: []models.ProgramSession{
		{Name: "Push", Exercises: []models.ExerciseDefinition{{Name: "Bench", PlannedSets: 4, MuscleGroup: "Pecs"}}},
		{Name: "Pull", Exercises: []models.ExerciseDefinition{{Name: "Row", PlannedSets: 3}}},
	}}
}

// exerciseStore runs the shared contract against any backend: empty load,
// full rewrite on save, program round trip with order preserved.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	rows, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory on empty store: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("empty store returned %d rows", len(rows))
	}
	p, err := s.LoadProgram(ctx)
	if err != nil {
		t.Fatalf("LoadProgram on empty store: %v", err)
	}
	if len(p.Sessions) != 0 {
		t.Errorf("empty store returned %d sessions", len(p.Sessions))
	}

	if err := s.SaveHistory(ctx, sampleRows()); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if diff := cmp.Diff(sampleRows(), got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	// A shorter save must not leave stale rows behind.
	if err := s.SaveHistory(ctx, sampleRows()[:1]); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got, _ = s.LoadHistory(ctx)
	if len(got) != 1 {
		t.Errorf("after rewrite rows = %d, want 1", len(got))
	}

	if err := s.SaveProgram(ctx, sampleProgram()); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}
	gotP, err := s.LoadProgram(ctx)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if diff := cmp.Diff(sampleProgram(), gotP); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

// TestMemoryStore verifies the in-process backend honours the store contract.
func TestMemoryStore(t *testing.T) {
	m := NewMemory(nil, models.Program{})
	exerciseStore(t, m)
	if m.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", m.Saves())
	}
}

// TestMemoryStoreFailure verifies injected failures surface as StoreError.
func TestMemoryStoreFailure(t *testing.T) {
	m := NewMemory(nil, models.Program{})
	m.FailWith = errors.New("disk full")
	err := m.SaveHistory(context.Background(), sampleRows())
	if !IsStoreError(err) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	var se *StoreError
	errors.As(err, &se)
	if se.Op != "save history" {
		t.Errorf("Op = %q, want %q", se.Op, "save history")
	}
}

// TestSQLiteStore verifies the sqlite backend against a temp database file,
// including reopening the same file.
func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "liftlog.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseStore(t, s)
	s.Close()

	reopened, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	rows, err := reopened.LoadHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Exercise != "Bench (Barre)" {
		t.Errorf("reopened rows = %+v", rows)
	}
}

// TestSQLiteLegacyProgram verifies a legacy blob written by an older version
// is migrated on load.
func TestSQLiteLegacyProgram(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "l.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.db.Exec(`INSERT INTO program_blob (id, data) VALUES (1, ?)`, `{"Push": ["Bench", "Dips"]}`); err != nil {
		t.Fatal(err)
	}
	p, err := s.LoadProgram(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Sessions) != 1 || p.Sessions[0].Exercises[1].PlannedSets != models.DefaultPlannedSets {
		t.Errorf("migrated program = %+v", p)
	}
}

// TestSQLiteMalformedProgram verifies an unreadable blob loads its readable
// part and is not reported as a store failure.
func TestSQLiteMalformedProgram(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.db.Exec(`INSERT INTO program_blob (id, data) VALUES (1, ?)`, `{"Push": "Bench", "Pull": ["Row"]}`); err != nil {
		t.Fatal(err)
	}
	p, err := s.LoadProgram(context.Background())
	if !errors.Is(err, program.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if IsStoreError(err) {
		t.Errorf("err = %v, should not be a StoreError", err)
	}
	if diff := cmp.Diff([]string{"Push", "Pull"}, p.SessionNames()); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

// mockS3 is a tiny fake S3 subset (path-style GET/PUT) for exercising the
// adapter without network access.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func (m *mockS3) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.objects[key] = body
		m.puts++
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	case http.MethodGet:
		if body, ok := m.objects[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
				"Content-Length": {strconv.Itoa(len(body))},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

// decodeChunked unwraps a single-chunk aws-chunked payload: <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockS3Store(prefix string) (*S3, *mockS3) {
	rt := &mockS3{objects: make(map[string][]byte)}
	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		Credentials:                credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		HTTPClient:                 &http.Client{Transport: rt},
		UsePathStyle:               true,
		BaseEndpoint:               aws.String("https://mock.s3.local"),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})
	return newS3WithClient(client, "liftlog-bucket", prefix), rt
}

// TestS3Store verifies the S3 backend against the mock transport.
func TestS3Store(t *testing.T) {
	s, rt := newMockS3Store("/athlete/")
	exerciseStore(t, s)

	if rt.puts != 3 {
		t.Errorf("puts = %d, want 3", rt.puts)
	}
	csv := string(rt.objects["athlete/history.csv"])
	if !strings.HasPrefix(csv, "Cycle,Semaine,Séance,Exercice,Série,Reps,Poids,Remarque,Muscle,Date") {
		t.Errorf("history.csv header = %q", csv)
	}
	if _, ok := rt.objects["athlete/program.json"]; !ok {
		t.Error("program.json not written under prefix")
	}
}

// TestS3MalformedProgram verifies a program object that is not JSON loads
// as an empty program flagged ErrMalformed.
func TestS3MalformedProgram(t *testing.T) {
	s, rt := newMockS3Store("")
	rt.objects["program.json"] = []byte("not json")
	p, err := s.LoadProgram(context.Background())
	if !errors.Is(err, program.ErrMalformed) || IsStoreError(err) {
		t.Fatalf("err = %v, want ErrMalformed only", err)
	}
	if len(p.Sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(p.Sessions))
	}
}

type flakyStore struct {
	*Memory
	failures int
	calls    int
}

func (f *flakyStore) SaveHistory(ctx context.Context, rows []models.WorkoutSet) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return f.Memory.SaveHistory(ctx, rows)
}

// malformedStore serves a program blob that only partly decodes.
type malformedStore struct {
	*Memory
	calls int
}

func (m *malformedStore) LoadProgram(ctx context.Context) (models.Program, error) {
	m.calls++
	return program.Decode([]byte(`{"Push": [{"name": 5, "sets": 3}, "Dips"]}`))
}

// TestRetryingSkipsMalformedProgram verifies a malformed blob is returned
// after one read, with its readable part and without a StoreError.
func TestRetryingSkipsMalformedProgram(t *testing.T) {
	m := &malformedStore{Memory: NewMemory(nil, models.Program{})}
	s := Retrying(m, 3, time.Millisecond, testLog)
	p, err := s.LoadProgram(context.Background())
	if !errors.Is(err, program.ErrMalformed) || IsStoreError(err) {
		t.Fatalf("err = %v, want ErrMalformed only", err)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
	if len(p.Sessions) != 1 || len(p.Sessions[0].Exercises) != 1 || p.Sessions[0].Exercises[0].Name != "Dips" {
		t.Errorf("program = %+v, want Push with Dips", p)
	}
}

// TestRetryingRecovers verifies transient failures are retried until success.
func TestRetryingRecovers(t *testing.T) {
	f := &flakyStore{Memory: NewMemory(nil, models.Program{}), failures: 2}
	s := Retrying(f, 3, time.Millisecond, testLog)
	if err := s.SaveHistory(context.Background(), sampleRows()); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

// TestRetryingGivesUp verifies the last error is reported as a StoreError.
func TestRetryingGivesUp(t *testing.T) {
	f := &flakyStore{Memory: NewMemory(nil, models.Program{}), failures: 10}
	s := Retrying(f, 3, time.Millisecond, testLog)
	err := s.SaveHistory(context.Background(), sampleRows())
	if !IsStoreError(err) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("err = %v, want last cause", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}

// TestRetryingHonoursCancel verifies a cancelled context stops retrying.
func TestRetryingHonoursCancel(t *testing.T) {
	f := &flakyStore{Memory: NewMemory(nil, models.Program{}), failures: 10}
	s := Retrying(f, 5, time.Hour, testLog)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SaveHistory(ctx, sampleRows())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1", f.calls)
	}
}

// TestOpenMemory verifies the factory picks the configured driver.
func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory, Retry: config.RetryConfig{Attempts: 2, Backoff: time.Millisecond}}, testLog, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*retrying); !ok {
		t.Errorf("store = %T, want retrying wrapper", s)
	}
	if _, err := Open(context.Background(), config.StoreConfig{Driver: "csv"}, testLog, nil); err == nil {
		t.Error("expected error for unknown driver")
	}
}
