package portal

import (
	"net/http"
	"testing"

	"github.com/hawktesters/portal/internal/models"
)

func TestClientCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	code, _ := env.doJSON(t, http.MethodPost, "/api/clients", token, map[string]any{"name": ""})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", code)
	}

	code, body := env.doJSON(t, http.MethodPost, "/api/clients", token, map[string]any{
		"name": "Acme", "email": "contact@acme.example",
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", code, body)
	}
	env.doJSON(t, http.MethodPost, "/api/clients", token, map[string]any{"name": "Beta Corp"})

	code, body = env.doJSON(t, http.MethodGet, "/api/clients", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	rows, _ := body["clients"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected two clients, got %d", len(rows))
	}
	first, _ := rows[0].(map[string]any)
	if first["name"] != "Acme" {
		t.Fatalf("expected name ordering, got %v", first["name"])
	}

	code, _ = env.doJSON(t, http.MethodPut, "/api/clients/1", token, map[string]any{"email": "new@acme.example"})
	if code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", code)
	}
	code, _ = env.doJSON(t, http.MethodPut, "/api/clients/999", token, map[string]any{"email": "x@x.example"})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown client, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodDelete, "/api/clients/1", token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
}

func TestGetClientPreloadsRelations(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	client := env.createClient(t, "Acme")
	env.createUser(t, models.User{
		Email: "user@acme.example", UserType: models.UserTypeClient, ClientID: &client.ID,
	}, "pw-123456")
	env.createAssessment(t, "Perimeter", client.ID, models.AssessmentStatusActive)

	code, body := env.doJSON(t, http.MethodGet, "/api/clients/1", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	users, _ := body["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("expected client users preloaded, got %v", body["users"])
	}
	assessments, _ := body["assessments"].([]any)
	if len(assessments) != 1 {
		t.Fatalf("expected client assessments preloaded, got %v", body["assessments"])
	}
}

func TestRemoveClientUserChecksOwnership(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	owner := env.createClient(t, "Acme")
	other := env.createClient(t, "Beta")
	owned := env.createUser(t, models.User{
		Email: "owned@acme.example", UserType: models.UserTypeClient, ClientID: &owner.ID,
	}, "pw-123456")
	foreign := env.createUser(t, models.User{
		Email: "foreign@beta.example", UserType: models.UserTypeClient, ClientID: &other.ID,
	}, "pw-123456")

	code, _ := env.doJSON(t, http.MethodDelete, "/api/clients/1/users/999", token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodDelete, "/api/clients/1/users/"+itoa(foreign.ID), token, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for user of another client, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodDelete, "/api/clients/1/users/"+itoa(owned.ID), token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204 for owned user, got %d", code)
	}
	var count int64
	env.db.Model(&models.User{}).Where("id = ?", owned.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected account removed")
	}
}

func TestDeleteClientDetachesUsers(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	client := env.createClient(t, "Acme")
	user := env.createUser(t, models.User{
		Email: "keep@acme.example", UserType: models.UserTypeClient, ClientID: &client.ID,
	}, "pw-123456")

	code, _ := env.doJSON(t, http.MethodDelete, "/api/clients/1", token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	var reloaded models.User
	if errFind := env.db.First(&reloaded, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if reloaded.ClientID != nil {
		t.Fatalf("expected account detached from removed client")
	}
}
