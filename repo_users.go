package acadbond

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeVerifyTokenSQL is the compare-and-clear for email verification:
// the row only updates while the token is still set and unexpired, so of two
// concurrent consumers exactly one sees RETURNING rows.
var ConsumeVerifyTokenSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"verify_token" = NULL,
	"verify_token_expiry" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."verify_token" = ?
AND "usr"."verify_token_expiry" > ?
RETURNING *;`

// ConsumeResetTokenSQL is the compare-and-clear for password reset; the new
// hash lands in the same statement that clears the token.
var ConsumeResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_expiry" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."reset_token" = ?
AND "usr"."reset_token_expiry" > ?
RETURNING *;`

var setVerifyTokenSQL = `UPDATE "users" AS "usr"
SET
	"verify_token" = ?,
	"verify_token_expiry" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."id" = ?
RETURNING *;`

var setResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token" = ?,
	"reset_token_expiry" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."email" = ?
RETURNING *;`

// Users is the credential store surface.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	SetVerifyToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) (*User, error)
	SetVerifyTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiry time.Time) (*User, error)
	SetResetToken(ctx context.Context, email, token string, expiry time.Time) (*User, error)
	SetResetTokenTx(ctx context.Context, tx bun.IDB, email, token string, expiry time.Time) (*User, error)

	ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (*User, error)
	ConsumeVerifyTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*User, error)
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error)
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, passwordHash string, now time.Time) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository builds the Users repository on top of the generic
// bun-backed repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, user)
}

// GetByIdentifier accepts either an email address or a user id.
func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *users) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	column := "id"
	value := strings.TrimSpace(identifier)

	if _, err := mail.ParseAddress(value); err == nil {
		column = "email"
		value = strings.ToLower(value)
	}

	record := &User{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"identifier": identifier})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	loggedInAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	return a.TrackAttemptedLoginTx(ctx, a.db, user)
}

func (a *users) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	now := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"login_attempts" = ?,
			"login_attempt_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, user.LoginAttempts+1, now, user.ID).Exec(ctx)

	return err
}

func (a *users) SetVerifyToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) (*User, error) {
	return a.SetVerifyTokenTx(ctx, a.db, id, token, expiry)
}

// SetVerifyTokenTx installs a fresh verification token, replacing any
// pending one.
func (a *users) SetVerifyTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiry time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, setVerifyTokenSQL, token, expiry, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func (a *users) SetResetToken(ctx context.Context, email, token string, expiry time.Time) (*User, error) {
	return a.SetResetTokenTx(ctx, a.db, email, token, expiry)
}

// SetResetTokenTx installs a fresh password-reset token, replacing any
// pending one.
func (a *users) SetResetTokenTx(ctx context.Context, tx bun.IDB, email, token string, expiry time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, setResetTokenSQL, token, expiry, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"email": email})
	}

	return res[0], nil
}

func (a *users) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return a.ConsumeVerifyTokenTx(ctx, a.db, token, now)
}

// ConsumeVerifyTokenTx marks the matching user verified and clears the
// token in one conditional update. Zero rows means the token was never
// issued, already consumed, or expired.
func (a *users) ConsumeVerifyTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	res, err := a.Repository.RawTx(ctx, tx, ConsumeVerifyTokenSQL, token, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, ErrInvalidOrExpiredToken
	}

	return res[0], nil
}

func (a *users) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error) {
	return a.ConsumeResetTokenTx(ctx, a.db, token, passwordHash, now)
}

// ConsumeResetTokenTx replaces the password hash and clears the reset token
// in one conditional update.
func (a *users) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, token, passwordHash string, now time.Time) (*User, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	res, err := a.Repository.RawTx(ctx, tx, ConsumeResetTokenSQL, passwordHash, token, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, ErrInvalidOrExpiredToken
	}

	return res[0], nil
}
