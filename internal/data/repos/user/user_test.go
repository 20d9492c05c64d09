package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/trustlens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/trustlens-backend/internal/domain"
	"github.com/yungbote/trustlens-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:    "userrepo@example.com",
			Password: "pw",
			Name:     "A B",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 user with id, got %+v", created)
	}
	if created[0].Role != "user" {
		t.Fatalf("Create: default role not applied: %q", created[0].Role)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists(missing): exists=%v err=%v", exists, err)
	}

	if err := repo.UpdateRole(dbc, created[0].ID, "admin"); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if err := repo.UpdateVerified(dbc, created[0].ID, true); err != nil {
		t.Fatalf("UpdateVerified: %v", err)
	}
	got, _ := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if !got[0].IsAdmin() || !got[0].Verified {
		t.Fatalf("updates not persisted: %+v", got[0])
	}

	if rows, err := repo.GetByIDs(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(nil): err=%v len=%d", err, len(rows))
	}
}
