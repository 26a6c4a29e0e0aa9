package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/hawktesters/portal/internal/models"
)

// doUpload posts a multipart file with the given form fields.
func (e *testEnv) doUpload(t *testing.T, token, fileName, contents string, fields map[string]string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", "application/pdf")
	part, errPart := writer.CreatePart(header)
	if errPart != nil {
		t.Fatalf("create multipart part: %v", errPart)
	}
	if _, errWrite := part.Write([]byte(contents)); errWrite != nil {
		t.Fatalf("write multipart part: %v", errWrite)
	}
	for key, value := range fields {
		if errField := writer.WriteField(key, value); errField != nil {
			t.Fatalf("write form field: %v", errField)
		}
	}
	if errClose := writer.Close(); errClose != nil {
		t.Fatalf("close multipart writer: %v", errClose)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), errDecode)
		}
	}
	return rec.Code, out
}

func uploadEnv(t *testing.T) (*testEnv, string, *models.Assessment, *models.User) {
	t.Helper()
	env := newTestEnv(t)
	token := env.adminToken(t)
	client := env.createClient(t, "Acme")
	assessment := env.createAssessment(t, "Perimeter", client.ID, models.AssessmentStatusActive)
	uploader := env.createUser(t, models.User{Email: "uploader@example.com", UserType: models.UserTypeTeam}, "pw-123456")
	return env, token, assessment, uploader
}

func TestUploadStoresFileAndMetadata(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)

	code, body := env.doUpload(t, token, "report.pdf", "pdf bytes", map[string]string{
		"category":     "TECHNICAL_REPORT",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", code, body)
	}

	var record models.UploadedFile
	if errFind := env.db.First(&record).Error; errFind != nil {
		t.Fatalf("load file record: %v", errFind)
	}
	if record.FileName != "report.pdf" || record.Category != models.FileCategoryTechnicalReport {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.IsPublic {
		t.Fatalf("uploads must default to private")
	}
	data, errRead := os.ReadFile(record.FilePath)
	if errRead != nil {
		t.Fatalf("read stored file: %v", errRead)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("unexpected stored contents %q", data)
	}
}

func TestUploadValidation(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)

	code, _ := env.doUpload(t, token, "x.pdf", "x", map[string]string{
		"category":     "MEETING_NOTES",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid category, got %d", code)
	}

	code, _ = env.doUpload(t, token, "x.pdf", "x", map[string]string{
		"category": "ADDITIONAL_FILE",
		"userId":   fmt.Sprint(uploader.ID),
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing assessmentId, got %d", code)
	}

	code, _ = env.doUpload(t, token, "x.pdf", "x", map[string]string{
		"category":     "ADDITIONAL_FILE",
		"assessmentId": "9999",
		"userId":       fmt.Sprint(uploader.ID),
	})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown assessment, got %d", code)
	}
}

func TestSingletonCategoryReplacesPreviousFile(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)
	fields := map[string]string{
		"category":     "EXECUTIVE_REPORT",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	}

	if code, _ := env.doUpload(t, token, "v1.pdf", "first", fields); code != http.StatusCreated {
		t.Fatalf("first upload failed: %d", code)
	}
	var old models.UploadedFile
	if errFind := env.db.First(&old).Error; errFind != nil {
		t.Fatalf("load first record: %v", errFind)
	}

	if code, _ := env.doUpload(t, token, "v2.pdf", "second", fields); code != http.StatusCreated {
		t.Fatalf("second upload failed: %d", code)
	}

	var count int64
	env.db.Model(&models.UploadedFile{}).
		Where("assessment_id = ? AND category = ?", assessment.ID, models.FileCategoryExecutiveReport).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected one EXECUTIVE_REPORT row, got %d", count)
	}
	if _, errStat := os.Stat(old.FilePath); !os.IsNotExist(errStat) {
		t.Fatalf("expected replaced file to be unlinked")
	}
}

func TestAdditionalFilesAccumulate(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)
	fields := map[string]string{
		"category":     "ADDITIONAL_FILE",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	}
	env.doUpload(t, token, "a.txt", "a", fields)
	env.doUpload(t, token, "b.txt", "b", fields)

	var count int64
	env.db.Model(&models.UploadedFile{}).
		Where("category = ?", models.FileCategoryAdditionalFile).
		Count(&count)
	if count != 2 {
		t.Fatalf("expected ADDITIONAL_FILE to accumulate, got %d", count)
	}
}

func TestDownloadRespectsPublicFlag(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)
	code, body := env.doUpload(t, token, "cert.pdf", "certificate", map[string]string{
		"category":     "CERTIFICATE",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	})
	if code != http.StatusCreated {
		t.Fatalf("upload failed: %d (%v)", code, body)
	}
	fileID := fmt.Sprint(int64(body["id"].(float64)))

	code, _ = env.doJSON(t, http.MethodGet, "/api/upload/"+fileID, "", nil)
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for private file, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodPut, "/api/upload/"+fileID, token, map[string]any{"isPublic": true})
	if code != http.StatusOK {
		t.Fatalf("expected 200 toggling visibility, got %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/upload/"+fileID, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for public download, got %d", rec.Code)
	}
	if rec.Body.String() != "certificate" {
		t.Fatalf("unexpected download body %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected stored MIME type, got %q", got)
	}
}

func TestDeleteUploadSurvivesMissingDiskFile(t *testing.T) {
	env, token, assessment, uploader := uploadEnv(t)
	code, body := env.doUpload(t, token, "gone.pdf", "x", map[string]string{
		"category":     "ADDITIONAL_FILE",
		"assessmentId": fmt.Sprint(assessment.ID),
		"userId":       fmt.Sprint(uploader.ID),
	})
	if code != http.StatusCreated {
		t.Fatalf("upload failed: %d", code)
	}
	fileID := fmt.Sprint(int64(body["id"].(float64)))

	var record models.UploadedFile
	if errFind := env.db.First(&record).Error; errFind != nil {
		t.Fatalf("load record: %v", errFind)
	}
	if errRemove := os.Remove(record.FilePath); errRemove != nil {
		t.Fatalf("remove stored file: %v", errRemove)
	}

	code, _ = env.doJSON(t, http.MethodDelete, "/api/upload/"+fileID, token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204 despite missing disk file, got %d", code)
	}
	var count int64
	env.db.Model(&models.UploadedFile{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected metadata row removed")
	}
}
