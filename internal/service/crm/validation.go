package crm

import (
	"fmt"
	"strings"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

func validateLead(name string, status domain.LeadStatus, clientType domain.ClientType, score *int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if clientType != "" && !clientType.Valid() {
		return fmt.Errorf("%w: unknown client type %q", domain.ErrValidation, clientType)
	}
	if score != nil && (*score < 0 || *score > 100) {
		return fmt.Errorf("%w: score must be between 0 and 100", domain.ErrValidation)
	}
	return nil
}

func applyLeadPatch(l *domain.Lead, p ports.LeadPatch) {
	if p.Name != nil {
		l.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		l.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		l.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Budget != nil {
		l.Budget = *p.Budget
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Score != nil {
		score := *p.Score
		l.Score = &score
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	if p.NextAction != nil {
		l.NextAction = *p.NextAction
	}
	if p.ClientType != nil {
		l.ClientType = *p.ClientType
	}
	if p.InterestedProperty != nil {
		l.InterestedProperty = *p.InterestedProperty
	}
	if p.InvestmentCriteria != nil {
		ic := *p.InvestmentCriteria
		l.InvestmentCriteria = &ic
	}
}
