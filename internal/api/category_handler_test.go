package api

import (
	"net/http"
	"testing"

	"resumeHub/internal/resume"
)

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/categories", "user_a", map[string]string{"name": "Engineering"})
	expectStatus(t, w, http.StatusCreated)
	var created struct {
		Category resume.CategorySummary `json:"category"`
	}
	decode(t, w, &created)
	id := created.Category.ID

	expectStatus(t, s.do(t, http.MethodPost, "/api/categories", "user_a", map[string]string{"name": "  "}), http.StatusBadRequest)

	w = s.do(t, http.MethodGet, "/api/categories", "user_a", nil)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Categories []resume.CategorySummary `json:"categories"`
	}
	decode(t, w, &list)
	if len(list.Categories) != 2 || list.Categories[0].ID != "all" || list.Categories[1].Name != "Engineering" {
		t.Fatalf("unexpected categories %+v", list.Categories)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/api/categories/"+id, "user_a", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/api/categories/"+id, "user_b", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPut, "/api/categories/"+id, "user_a", map[string]string{"name": "Eng"}), http.StatusOK)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := s.do(t, method, "/api/categories/all", "user_a", map[string]string{"name": "x"})
		expectStatus(t, w, http.StatusBadRequest)
	}
	expectStatus(t, s.do(t, http.MethodDelete, "/api/categories/abc", "user_a", nil), http.StatusBadRequest)

	expectStatus(t, s.do(t, http.MethodDelete, "/api/categories/"+id, "user_b", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodDelete, "/api/categories/"+id, "user_a", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodDelete, "/api/categories/"+id, "user_a", nil), http.StatusNotFound)
}

func TestCategoryResumesListing(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.upload(t, "user_a", "pdf", "cv.pdf", []byte("%PDF-1.4"), ""), http.StatusOK)

	for _, id := range []string{"all", "null"} {
		w := s.do(t, http.MethodGet, "/api/categories/"+id+"/resumes", "user_a", nil)
		expectStatus(t, w, http.StatusOK)
		var body struct {
			Resumes []map[string]any `json:"resumes"`
		}
		decode(t, w, &body)
		if len(body.Resumes) != 1 {
			t.Fatalf("%s: expected one resume, got %d", id, len(body.Resumes))
		}
		if _, leaked := body.Resumes[0]["ObjectKey"]; leaked {
			t.Fatalf("object key must not be serialized")
		}
	}
	expectStatus(t, s.do(t, http.MethodGet, "/api/categories/xyz/resumes", "user_a", nil), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/api/categories/all/resumes", "", nil), http.StatusUnauthorized)
}
