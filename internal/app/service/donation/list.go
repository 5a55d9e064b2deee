package donation

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/types"
)

type ScanDonationsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanDonationsResponse struct {
	Items []*models.Donation `json:"items"`
	Total int64              `json:"total"`
}

// filtersAnd joins the request filters into a single AND expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range w.filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}

// ScanDonations pages through donations with filters and sorting, for the
// admin surface.
func (s *Service) ScanDonations(ctx context.Context, req *ScanDonationsRequest) (*ScanDonationsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Donation{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count donations: %w", err)
	}

	var rows []*models.Donation

	q := tx.Limit(req.Size)

	if req.From > 0 {
		q = q.Offset(req.From)
	}

	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	return &ScanDonationsResponse{Items: rows, Total: total}, nil
}
