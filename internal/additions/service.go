package additions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amicofritto/orders-backend/pkg/db/models"
	"github.com/amicofritto/orders-backend/pkg/enums"
	pkgerrors "github.com/amicofritto/orders-backend/pkg/errors"
)

// Service resolves sauce policies and validates customer selections.
type Service interface {
	ListActive(ctx context.Context) ([]models.Addition, error)
	ResolveRule(ctx context.Context, categoryID uuid.UUID, categorySlug string) (Rule, error)
	ValidateSelection(ctx context.Context, rule Rule, additionIDs []uuid.UUID) (*Selection, error)
	SaveRule(ctx context.Context, categoryID uuid.UUID, mode enums.SauceMode, maxSauces int, saucePrice decimal.Decimal, active bool) (Rule, error)
}

// Selection is a validated set of additions for one line item.
type Selection struct {
	IDs       []uuid.UUID
	Label     string
	UnitPrice decimal.Decimal
}

type service struct {
	repo Repository
}

// NewService wires additions dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "additions repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Addition, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list additions")
	}
	return rows, nil
}

// ResolveRule returns the active staff rule for the category, falling back
// to the slug-based default when none exists.
func (s *service) ResolveRule(ctx context.Context, categoryID uuid.UUID, categorySlug string) (Rule, error) {
	if categoryID != uuid.Nil {
		row, err := s.repo.GetActiveRuleByCategory(ctx, categoryID)
		if err != nil {
			return Rule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category rule")
		}
		if row != nil {
			return NormalizeRule(row.SauceMode, row.MaxSauces, row.SaucePrice), nil
		}
	}
	return FallbackRuleForSlug(categorySlug), nil
}

// ValidateSelection checks the selected additions against the rule and
// returns the line-item label and unit surcharge. Sauces count against the
// rule's cap; extras are always allowed and priced individually.
func (s *service) ValidateSelection(ctx context.Context, rule Rule, additionIDs []uuid.UUID) (*Selection, error) {
	if len(additionIDs) == 0 {
		return &Selection{UnitPrice: decimal.Zero}, nil
	}

	rows, err := s.repo.GetActiveByIDs(ctx, dedupe(additionIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load additions")
	}

	byID := make(map[uuid.UUID]models.Addition, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	// Unknown and inactive ids are dropped rather than rejected; a stale
	// menu cached by the client should not block checkout.
	var sauces, extras []models.Addition
	for _, id := range dedupe(additionIDs) {
		row, ok := byID[id]
		if !ok {
			continue
		}
		switch row.Type {
		case enums.AdditionTypeSauce:
			sauces = append(sauces, row)
		case enums.AdditionTypeExtra:
			extras = append(extras, row)
		}
	}

	switch rule.Mode {
	case enums.SauceModeNone:
		if len(sauces) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sauces are not available for this category")
		}
	default:
		if len(sauces) > rule.MaxSauces {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("at most %d sauces allowed for this category", rule.MaxSauces))
		}
	}

	unitPrice := decimal.Zero
	if rule.Mode == enums.SauceModePaidMulti {
		unitPrice = rule.SaucePrice.Mul(decimal.NewFromInt(int64(len(sauces))))
	}
	for _, extra := range extras {
		unitPrice = unitPrice.Add(extra.Price)
	}

	ids := make([]uuid.UUID, 0, len(sauces)+len(extras))
	for _, row := range sauces {
		ids = append(ids, row.ID)
	}
	for _, row := range extras {
		ids = append(ids, row.ID)
	}

	return &Selection{
		IDs:       ids,
		Label:     buildLabel(sauces, extras),
		UnitPrice: unitPrice.Round(2),
	}, nil
}

func (s *service) SaveRule(ctx context.Context, categoryID uuid.UUID, mode enums.SauceMode, maxSauces int, saucePrice decimal.Decimal, active bool) (Rule, error) {
	if categoryID == uuid.Nil {
		return Rule{}, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	normalized := NormalizeRule(mode, maxSauces, saucePrice)
	row := &models.AdditionCategoryRule{
		CategoryID: categoryID,
		SauceMode:  normalized.Mode,
		MaxSauces:  normalized.MaxSauces,
		SaucePrice: normalized.SaucePrice,
		Active:     active,
	}
	if err := s.repo.UpsertRule(ctx, row); err != nil {
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category rule")
	}
	return normalized, nil
}

// buildLabel produces the line-item summary, e.g.
// "Salse: Ketchup, Maionese | Extra: Bacon".
func buildLabel(sauces, extras []models.Addition) string {
	var parts []string
	if len(sauces) > 0 {
		parts = append(parts, "Salse: "+joinNames(sauces))
	}
	if len(extras) > 0 {
		parts = append(parts, "Extra: "+joinNames(extras))
	}
	return strings.Join(parts, " | ")
}

func joinNames(rows []models.Addition) string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return strings.Join(names, ", ")
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
