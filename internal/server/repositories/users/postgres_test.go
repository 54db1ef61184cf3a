package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronov/accountd/internal/common"
	"github.com/avoronov/accountd/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleUser() *models.User {
	return &models.User{
		ID:       "11111111-2222-3333-4444-555555555555",
		Username: "johndoe",
		Email:    "john@example.com",
		Credential: models.Credential{
			Salt:           []byte("salt"),
			PasswordDigest: []byte("digest"),
		},
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*salt,\s*password_digest\)`

	u := sampleUser()
	created := time.Now()
	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(created)
	mock.ExpectQuery(q).
		WithArgs(u.ID, u.Username, u.Email, u.Credential.Salt, u.Credential.PasswordDigest).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != u.ID || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs(u.ID, u.Username, u.Email, u.Credential.Salt, u.Credential.PasswordDigest).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), u)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs(u.ID, u.Username, u.Email, u.Credential.Salt, u.Credential.PasswordDigest).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), u)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_ExcludesCredential(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
		AddRow("u-1", "johndoe", "john@example.com", time.Now())
	mock.ExpectQuery(q).WithArgs("john@example.com").WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.Username != "johndoe" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.Credential.Salt != nil || got.Credential.PasswordDigest != nil {
		t.Fatalf("default projection leaked credential fields: %+v", got.Credential)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*username,\s*email,\s*created_at\s+FROM\s+users`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByEmailWithCredential_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*salt,\s*password_digest,\s*session_token,\s*created_at`

	rows := sqlmock.NewRows([]string{"id", "username", "email", "salt", "password_digest", "session_token", "created_at"}).
		AddRow("u-1", "johndoe", "john@example.com", []byte("salt"), []byte("digest"), nil, time.Now())
	mock.ExpectQuery(q).WithArgs("john@example.com").WillReturnRows(rows)

	got, err := repo.FindByEmailWithCredential(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("FindByEmailWithCredential error: %v", err)
	}
	if string(got.Credential.Salt) != "salt" || string(got.Credential.PasswordDigest) != "digest" {
		t.Fatalf("credential not populated: %+v", got.Credential)
	}
	if got.Credential.SessionToken != "" {
		t.Fatalf("expected empty session token, got %q", got.Credential.SessionToken)
	}
}

func TestFindBySessionToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*created_at\s+FROM\s+users\s+WHERE\s+session_token\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
		AddRow("u-1", "johndoe", "john@example.com", time.Now())
	mock.ExpectQuery(q).WithArgs("tok-1").WillReturnRows(rows)

	got, err := repo.FindBySessionToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("FindBySessionToken error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	username := "newname"
	mock.ExpectExec(`UPDATE\s+users`).
		WithArgs("ghost", &username, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "ghost", models.UserUpdate{Username: &username})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	email := "taken@example.com"
	mock.ExpectExec(`UPDATE\s+users`).
		WithArgs("u-1", nil, &email).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), "u-1", models.UserUpdate{Email: &email})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestSetSessionToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+session_token\s*=\s*\$2`).
		WithArgs("u-1", "tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetSessionToken(context.Background(), "u-1", "tok-1"); err != nil {
		t.Fatalf("SetSessionToken error: %v", err)
	}
}

func TestClearSessionToken_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+session_token\s*=\s*NULL`).
		WithArgs("unknown-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.ClearSessionToken(context.Background(), "unknown-token"); err != nil {
		t.Fatalf("ClearSessionToken should not fail on missing token: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+users`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
