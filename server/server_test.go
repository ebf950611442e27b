package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/convertd/convert"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	engine := convert.New(convert.Config{Scope: convert.ScopeFull})
	return New(Config{}, engine, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postConvert(t *testing.T, h http.Handler, filename string, data []byte, target string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.WriteField("format", target)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConvertTxtToPDF(t *testing.T) {
	h := testServer(t).Router()
	rec := postConvert(t, h, "notes.txt", []byte("hello world\nsecond line"), "pdf")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "notes.pdf") {
		t.Errorf("Content-Disposition = %q, want notes.pdf", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestConvertImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	h := testServer(t).Router()
	rec := postConvert(t, h, "photo.png", buf.Bytes(), "jpg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestConvertUnsupportedPair(t *testing.T) {
	h := testServer(t).Router()
	rec := postConvert(t, h, "notes.txt", []byte("hello"), "docx")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("error payload is not JSON: %v", err)
	}
	if payload["error"] == "" {
		t.Error("empty error message")
	}
}

func TestConvertUnknownInput(t *testing.T) {
	h := testServer(t).Router()
	rec := postConvert(t, h, "data.xyz", []byte("hello"), "pdf")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConvertCorruptImage(t *testing.T) {
	h := testServer(t).Router()
	rec := postConvert(t, h, "photo.png", []byte("not a png"), "jpg")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestConvertMissingFields(t *testing.T) {
	h := testServer(t).Router()

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}

	rec = postConvert(t, h, "notes.txt", []byte("hello"), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing format: status = %d, want 400", rec.Code)
	}
}

func TestFormats(t *testing.T) {
	h := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	outputs, ok := m["png"]
	if !ok {
		t.Fatal("png missing from formats map")
	}
	found := false
	for _, o := range outputs {
		if o == "pdf" {
			found = true
		}
	}
	if !found {
		t.Errorf("png outputs = %v, want pdf included", outputs)
	}
	if _, ok := m["pptx"]; !ok {
		t.Error("pptx should be listed even with no outputs")
	}
}

func TestHealthz(t *testing.T) {
	h := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["status"] != "ok" {
		t.Errorf("status = %q", payload["status"])
	}
}
