package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeHub/internal/config"
	"resumeHub/internal/database"
	"resumeHub/internal/identity"
	"resumeHub/internal/match"
	"resumeHub/internal/resume"
)

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://example.invalid/" + objectKey
}

func (s *fakeStorage) ObjectExists(_ context.Context, objectKey string) (bool, error) {
	_, ok := s.uploaded[objectKey]
	return ok, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

type fakeProfiles struct {
	flags map[string]bool
}

func (p *fakeProfiles) SetOnboardingComplete(_ context.Context, subject string, complete bool) error {
	p.flags[subject] = complete
	return nil
}

func (p *fakeProfiles) OnboardingComplete(_ context.Context, subject string) (bool, error) {
	return p.flags[subject], nil
}

// bearerVerifier treats the bearer token itself as the subject.
type bearerVerifier struct{}

func (bearerVerifier) Verify(r *http.Request) identity.State {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		return identity.State{Reason: "no credential"}
	}
	if token == "anonymous" {
		return identity.State{SignedIn: true}
	}
	return identity.State{SignedIn: true, Subject: token}
}

type fakeAnalyzer struct {
	analysis match.Analysis
	err      error
	calls    int
}

func (a *fakeAnalyzer) Analyze(context.Context, string, string) (match.Analysis, error) {
	a.calls++
	return a.analysis, a.err
}

type fakeScanner struct {
	err error
}

func (s fakeScanner) Scan(_ context.Context, r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	storage  *fakeStorage
	analyzer *fakeAnalyzer
}

type serverOption func(*Dependencies, *config.Config)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared&_foreign_keys=on", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	storage := newFakeStorage()
	manager := resume.NewManager(db, storage, &fakeProfiles{flags: map[string]bool{}}, zap.NewNop())
	analyzer := &fakeAnalyzer{analysis: match.Analysis{Summary: "85% match", ResumeChars: 42}}

	cfg := &config.Config{API: config.APIConfig{StaticDir: t.TempDir()}}
	deps := Dependencies{
		Manager:        manager,
		Analyzer:       analyzer,
		Model:          "gemini-test",
		Verifier:       bearerVerifier{},
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&deps, cfg)
	}

	router := NewRouter(cfg, zap.NewNop())
	RegisterRoutes(router, deps)
	return &testServer{router: router, db: db, storage: storage, analyzer: analyzer}
}

func (s *testServer) do(t *testing.T, method, path, subject string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+subject)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, subject, field, filename string, content []byte, categoryID string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if categoryID != "" {
		if err := writer.WriteField("categoryId", categoryID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume-upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+subject)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d got %d body=%s", status, w.Code, w.Body.String())
	}
}
