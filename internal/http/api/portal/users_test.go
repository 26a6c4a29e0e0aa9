package portal

import (
	"net/http"
	"strings"
	"testing"

	"github.com/hawktesters/portal/internal/models"
	"github.com/hawktesters/portal/internal/security"
)

func TestCreateUserProvisionsCredentials(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	client := env.createClient(t, "Acme")

	code, body := env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"name": "Casey", "email": "Casey@Acme.Example", "userType": "CLIENT", "clientId": client.ID,
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", code, body)
	}
	if body["email"] != "casey@acme.example" {
		t.Fatalf("expected lowercased email, got %v", body["email"])
	}
	avatar, _ := body["avatarUrl"].(string)
	if !strings.HasPrefix(avatar, "https://www.gravatar.com/avatar/") || !strings.HasSuffix(avatar, "?d=identicon") {
		t.Fatalf("unexpected avatar url %q", avatar)
	}

	// The temporary password is shared once and stored only as a hash.
	if len(env.sharer.shared) != 1 {
		t.Fatalf("expected one shared secret, got %d", len(env.sharer.shared))
	}
	tempPassword := env.sharer.shared[0]
	var user models.User
	if errFind := env.db.Where("email = ?", "casey@acme.example").First(&user).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if user.Password == nil || !security.CheckPassword(*user.Password, tempPassword) {
		t.Fatalf("expected bcrypt hash of the temporary password")
	}
	if *user.Password == tempPassword {
		t.Fatalf("password must not be stored in plain text")
	}
	if !user.FirstTimeLogin {
		t.Fatalf("expected first-time login flag set")
	}

	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected one welcome email, got %d", len(env.mailer.sent))
	}
	if env.mailer.sent[0].link != env.sharer.link {
		t.Fatalf("welcome email must carry the one-time link")
	}
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	code, _ := env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"email": "", "userType": "TEAM",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"email": "x@example.com", "userType": "WIZARD",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid userType, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"email": "x@example.com", "userType": "CLIENT",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for CLIENT without clientId, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"email": "x@example.com", "userType": "CLIENT", "clientId": 999,
	})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown client, got %d", code)
	}

	code, _ = env.doJSON(t, http.MethodPost, "/api/users", token, map[string]any{
		"email": "admin@example.com", "userType": "TEAM",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", code)
	}
}

func TestGetAndDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	user := env.createUser(t, models.User{
		Name: "Remove Me", Email: "remove@example.com", UserType: models.UserTypeTeam,
	}, "pw-123456")

	code, body := env.doJSON(t, http.MethodGet, "/api/users/"+itoa(user.ID), token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["email"] != "remove@example.com" {
		t.Fatalf("unexpected payload %v", body)
	}

	code, _ = env.doJSON(t, http.MethodDelete, "/api/users/"+itoa(user.ID), token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	code, _ = env.doJSON(t, http.MethodGet, "/api/users/"+itoa(user.ID), token, nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
}

func TestDeleteUserRemovesCVTreeAndAssignments(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	client := env.createClient(t, "Acme")
	assessment := env.createAssessment(t, "Perimeter", client.ID, models.AssessmentStatusActive)
	user, cv := env.createTeamMemberWithCV(t, "full@example.com")

	if errAssign := env.db.Model(assessment).Association("TeamMembers").Append(user); errAssign != nil {
		t.Fatalf("assign member: %v", errAssign)
	}

	code, _ := env.doJSON(t, http.MethodDelete, "/api/users/"+itoa(user.ID), token, nil)
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}

	var cvCount, educationCount int64
	env.db.Model(&models.CV{}).Where("id = ?", cv.ID).Count(&cvCount)
	env.db.Model(&models.Education{}).Where("cv_id = ?", cv.ID).Count(&educationCount)
	if cvCount != 0 || educationCount != 0 {
		t.Fatalf("expected CV tree removed, cv=%d education=%d", cvCount, educationCount)
	}

	var reloaded models.Assessment
	if errFind := env.db.Preload("TeamMembers").First(&reloaded, assessment.ID).Error; errFind != nil {
		t.Fatalf("reload assessment: %v", errFind)
	}
	if len(reloaded.TeamMembers) != 0 {
		t.Fatalf("expected assignment rows cleared")
	}
}
