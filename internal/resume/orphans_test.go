package resume

import (
	"context"
	"strconv"
	"testing"
	"time"

	"resumeHub/internal/errcode"
)

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestJanitorFindsAndSweepsOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept := f.upload(t, "user_a", "kept.pdf", "")
	f.files.uploaded["user_a/lost_20240101000000.pdf"] = []byte("x")
	f.files.modified["user_a/lost_20240101000000.pdf"] = time.Now().Add(-2 * time.Hour)
	f.files.uploaded["user_a/fresh_20240101000000.pdf"] = []byte("x")
	f.files.modified["user_a/fresh_20240101000000.pdf"] = time.Now()

	j := NewJanitor(f.db, f.files)
	orphans, err := j.FindOrphans(ctx, "user_a/", 10*time.Minute)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(orphans) != 1 || orphans[0].Key != "user_a/lost_20240101000000.pdf" {
		t.Fatalf("unexpected orphans %+v", orphans)
	}

	if err := j.Sweep(ctx, orphans); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, ok := f.files.uploaded["user_a/lost_20240101000000.pdf"]; ok {
		t.Fatalf("orphan should be deleted")
	}
	if _, ok := f.files.uploaded[kept.ObjectKey]; !ok {
		t.Fatalf("referenced file must survive")
	}
	if _, ok := f.files.uploaded["user_a/fresh_20240101000000.pdf"]; !ok {
		t.Fatalf("fresh file must survive")
	}
}

func TestRecordAndListAnalyses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := AnalysisRecord{
		ResumeLink:     "https://files.example.invalid/user_a/cv.pdf",
		JobDescription: "Go engineer",
		Result:         "Strong match",
		Model:          "gemini-2.0-flash",
		ResumeChars:    1200,
	}
	if _, err := f.manager.RecordAnalysis(ctx, "user_a", rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := f.manager.RecordAnalysis(ctx, "user_b", rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := f.manager.ListAnalyses(ctx, "user_a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Result != "Strong match" {
		t.Fatalf("unexpected analyses %+v", got)
	}
	if string(got[0].Meta) != `{"model":"gemini-2.0-flash","resume_chars":1200}` {
		t.Fatalf("unexpected meta %s", got[0].Meta)
	}
}

func TestCheckResumeLink(t *testing.T) {
	f := newFixture(t)
	r := f.upload(t, "user_a", "cv.pdf", "")

	if err := f.manager.CheckResumeLink("user_a", r.Link); err != nil {
		t.Fatalf("own link rejected: %v", err)
	}

	tests := []struct {
		name    string
		subject string
		link    string
	}{
		{name: "other user", subject: "user_b", link: r.Link},
		{name: "internal address", subject: "user_a", link: "http://10.0.0.1/user_a/cv.pdf"},
		{name: "folder only", subject: "user_a", link: "https://files.example.invalid/user_a/"},
		{name: "dot segments", subject: "user_a", link: "https://files.example.invalid/user_a/../user_b/cv.pdf"},
		{name: "query", subject: "user_a", link: r.Link + "?x=1"},
		{name: "no subject", subject: "", link: "https://files.example.invalid//cv.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.manager.CheckResumeLink(tt.subject, tt.link); !errcode.Is(err, errcode.Validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
