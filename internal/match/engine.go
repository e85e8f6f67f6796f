package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"resumeHub/internal/errcode"
	"resumeHub/internal/logger"
	"resumeHub/internal/metrics"
)

const systemInstruction = "You are a human who sees if resumes and job descriptions match. " +
	"Do not use any markdown and just use text. " +
	"Return a percentage for the match along with feedback. " +
	"Use specific keywords highlighted in both."

var (
	// ErrFetch marks a resume download that did not succeed.
	ErrFetch = errors.New("fetch resume")
	// ErrCompletion marks a failed completion round trip.
	ErrCompletion = errors.New("completion")
)

// Completer is the text-generation service.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Engine downloads stored resumes and scores them against job descriptions.
type Engine struct {
	httpClient *http.Client
	completer  Completer
	logger     *zap.Logger
	maxBytes   int64
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	Summary     string
	ResumeChars int
}

// NewEngine wires the engine. maxBytes caps downloaded documents.
func NewEngine(httpClient *http.Client, completer Completer, logger *zap.Logger, maxBytes int64) *Engine {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Engine{
		httpClient: httpClient,
		completer:  completer,
		logger:     logger,
		maxBytes:   maxBytes,
	}
}

// FetchAndExtractText downloads fileURL and returns its text in page order.
// Only the download can fail; parse problems yield an empty string.
func (e *Engine) FetchAndExtractText(ctx context.Context, fileURL string) (string, error) {
	data, contentType, err := e.fetch(ctx, fileURL)
	if err != nil {
		return "", errcode.Upstream("failed to fetch resume", err)
	}
	return ExtractText(data, contentType, e.logger), nil
}

func (e *Engine) fetch(ctx context.Context, fileURL string) ([]byte, string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("storage", "fetch_resume", start, err)
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
		metrics.ObserveUpstream("storage", "fetch_resume", start, err)
		return nil, "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	metrics.ObserveUpstream("storage", "fetch_resume", start, err)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// CompareResumeToJobDescription asks the completion service for a match
// summary and returns its reply untouched.
func (e *Engine) CompareResumeToJobDescription(ctx context.Context, jobDescription, resumeText string) (string, error) {
	prompt := fmt.Sprintf("Here is the job description: %s\n Here is the resume in text form: %s", jobDescription, resumeText)

	reply, err := e.completer.Complete(ctx, systemInstruction, prompt)
	if err != nil {
		e.logger.Error("completion failed",
			zap.Error(err),
			zap.String("prompt_preview", logger.Truncate(prompt, 200)),
		)
		return "", errcode.Upstream("failed to contact completion service", fmt.Errorf("%w: %v", ErrCompletion, err))
	}
	return reply, nil
}

// Analyze fetches the resume behind resumeLink and compares it. A failed
// download degrades to an empty resume body; the completion call still happens.
func (e *Engine) Analyze(ctx context.Context, resumeLink, jobDescription string) (Analysis, error) {
	text, err := e.FetchAndExtractText(ctx, resumeLink)
	if err != nil {
		e.logger.Warn("resume text unavailable, comparing without it",
			zap.String("resume_link", resumeLink),
			zap.Error(err),
		)
		text = ""
	}

	summary, err := e.CompareResumeToJobDescription(ctx, jobDescription, text)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Summary: summary, ResumeChars: len([]rune(text))}, nil
}
