package acadbond

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResearchPapers is the read surface over the paper store. Papers are
// created by an external admin/seed process; the dashboard only projects.
type ResearchPapers interface {
	repository.Repository[*ResearchPaper]

	ListSummaries(ctx context.Context) ([]PaperSummary, error)
	ListSummariesTx(ctx context.Context, tx bun.IDB) ([]PaperSummary, error)
	GetByDOI(ctx context.Context, doi string) (*ResearchPaper, error)
}

type papers struct {
	repository.Repository[*ResearchPaper]
	db *bun.DB
}

var (
	_ ResearchPapers                        = (*papers)(nil)
	_ repository.Repository[*ResearchPaper] = (*papers)(nil)
)

// NewResearchPapersRepository builds the papers repository.
func NewResearchPapersRepository(db *bun.DB) ResearchPapers {
	repo := repository.NewRepository[*ResearchPaper](db, repository.ModelHandlers[*ResearchPaper]{
		NewRecord: func() *ResearchPaper { return &ResearchPaper{} },
		GetID: func(p *ResearchPaper) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *ResearchPaper, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &papers{
		Repository: repo,
		db:         db,
	}
}

func (r *papers) ListSummaries(ctx context.Context) ([]PaperSummary, error) {
	return r.ListSummariesTx(ctx, r.db)
}

// ListSummariesTx is the dashboard projection: title and topics only,
// newest publications first.
func (r *papers) ListSummariesTx(ctx context.Context, tx bun.IDB) ([]PaperSummary, error) {
	var records []ResearchPaper

	err := tx.NewSelect().
		Model(&records).
		Column("id", "title", "topics").
		Order("published_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, WrapStoreError(err, "failed to list paper summaries")
	}

	summaries := make([]PaperSummary, 0, len(records))
	for _, p := range records {
		summaries = append(summaries, PaperSummary{
			ID:     p.ID,
			Title:  p.Title,
			Topics: p.Topics,
		})
	}

	return summaries, nil
}

// GetByDOI looks a paper up by its DOI; DOIs are unique when present.
func (r *papers) GetByDOI(ctx context.Context, doi string) (*ResearchPaper, error) {
	record := &ResearchPaper{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.doi = ?", strings.TrimSpace(doi)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"doi": doi})
		}
		return nil, err
	}

	return record, nil
}
