package match

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"resumeHub/internal/errcode"
)

type fakeCompleter struct {
	reply string
	err   error

	calls  int
	system string
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	return f.reply, f.err
}

// buildPDF writes a minimal uncompressed PDF with one text line per page.
// An empty string produces a page without content.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	write := func(obj string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	write("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	write(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(pages)))
	write("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>\nendobj\n")
	for i, text := range pages {
		pageObj := 4 + 2*i
		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		}
		write(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n", pageObj, pageObj+1))
		write(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", pageObj+1, len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtractTextPageOrderSkipsEmptyPages(t *testing.T) {
	text := ExtractText(buildPDF("Senior Go Engineer", "", "Kubernetes and PostgreSQL"), mimePDF, zap.NewNop())

	first := strings.Index(text, "Senior Go Engineer")
	second := strings.Index(text, "Kubernetes and PostgreSQL")
	if first < 0 || second < 0 {
		t.Fatalf("missing page text in %q", text)
	}
	if first > second {
		t.Fatalf("pages out of order: %q", text)
	}
	if strings.Contains(text, "\n\n") {
		t.Fatalf("empty page should be skipped: %q", text)
	}
	if want := "Senior Go Engineer\nKubernetes and PostgreSQL"; text != want {
		t.Fatalf("pages should be joined by a single newline, got %q want %q", text, want)
	}
}

func TestExtractTextAdjacentPages(t *testing.T) {
	text := ExtractText(buildPDF("A line", "B line"), mimePDF, zap.NewNop())
	if text != "A line\nB line" {
		t.Fatalf("unexpected join %q", text)
	}
}

func TestExtractTextUnreadableDocument(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("hello world")},
		{name: "truncated pdf", data: buildPDF("text")[:40]},
		{name: "broken zip", data: []byte("PK\x03\x04garbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.data, "", zap.NewNop()); got != "" {
				t.Fatalf("expected empty text, got %q", got)
			}
		})
	}
}

func TestFetchAndExtractText(t *testing.T) {
	doc := buildPDF("Data engineer resume")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resume.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(doc)
	}))
	defer server.Close()

	engine := NewEngine(server.Client(), &fakeCompleter{}, zap.NewNop(), 0)

	text, err := engine.FetchAndExtractText(context.Background(), server.URL+"/resume.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(text, "Data engineer resume") {
		t.Fatalf("unexpected text %q", text)
	}

	_, err = engine.FetchAndExtractText(context.Background(), server.URL+"/missing.pdf")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if !errcode.Is(err, errcode.UpstreamFailure) {
		t.Fatalf("expected upstream code, got %d", errcode.CodeOf(err))
	}
}

func TestAnalyzeUnreachableLinkStillCompletes(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	link := server.URL + "/gone.pdf"
	server.Close()

	completer := &fakeCompleter{reply: "Match: 10%"}
	engine := NewEngine(nil, completer, zap.NewNop(), 0)

	result, err := engine.Analyze(context.Background(), link, "Go developer wanted")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if completer.calls != 1 {
		t.Fatalf("completion should be issued once, got %d", completer.calls)
	}
	if !strings.HasSuffix(completer.prompt, "Here is the resume in text form: ") {
		t.Fatalf("expected empty resume body, prompt=%q", completer.prompt)
	}
	if !strings.Contains(completer.prompt, "Go developer wanted") {
		t.Fatalf("job description missing from prompt")
	}
	if completer.system != systemInstruction {
		t.Fatalf("fixed instruction not used")
	}
	if result.Summary != "Match: 10%" || result.ResumeChars != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCompareCompletionError(t *testing.T) {
	engine := NewEngine(nil, &fakeCompleter{err: errors.New("quota exceeded")}, zap.NewNop(), 0)

	_, err := engine.CompareResumeToJobDescription(context.Background(), "jd", "resume")
	if !errors.Is(err, ErrCompletion) {
		t.Fatalf("expected ErrCompletion, got %v", err)
	}
	if !errcode.Is(err, errcode.UpstreamFailure) {
		t.Fatalf("expected upstream code")
	}
}
