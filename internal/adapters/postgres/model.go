package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotes-service/internal/domain"
)

// QuoteModel is the row shape of the quotes table.
type QuoteModel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Author     string    `gorm:"column:author;not null"`
	Quote      string    `gorm:"column:quote;not null"`
	InsertedAt time.Time `gorm:"column:inserted_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

// TableName pins the table name instead of GORM's pluralised default.
func (QuoteModel) TableName() string {
	return "quotes"
}

func toModel(q *domain.Quote) *QuoteModel {
	return &QuoteModel{
		ID:         q.ID,
		Author:     q.Author,
		Quote:      q.Text,
		InsertedAt: q.InsertedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func (m *QuoteModel) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:         m.ID,
		Author:     m.Author,
		Text:       m.Quote,
		InsertedAt: m.InsertedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
