package unitofwork

import (
	"context"

	"ai-interview-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PracticeRepository() contract.PracticeRepository
	SectionAnswerRepository() contract.SectionAnswerRepository
	ReportRepository() contract.ReportRepository
}
