package acadbond

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories plus transaction control. Each
// operation takes the manager as an explicit dependency; there is no ambient
// global store handle.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	ResearchPapers() ResearchPapers
}

type mngr struct {
	db     *bun.DB
	users  Users
	papers ResearchPapers
}

// NewRepositoryManager wires the repositories over one bun handle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:     db,
		users:  NewUsersRepository(db),
		papers: NewResearchPapersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.papers == nil {
		return errors.New("repository researchPapers should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) ResearchPapers() ResearchPapers {
	return m.papers
}
