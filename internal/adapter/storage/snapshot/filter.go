package snapshot

import (
	"strings"

	"github.com/seu-repo/imob-crm/internal/domain"
)

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchLead(l domain.Lead, f domain.LeadFilter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Source != "" && !strings.EqualFold(l.Source, f.Source) {
		return false
	}
	if f.AssignedTo != "" && !strings.EqualFold(l.AssignedTo, f.AssignedTo) {
		return false
	}
	if f.ClientType != "" && l.ClientType != f.ClientType {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		return containsFold(l.Name, q) || containsFold(l.Email, q) || containsFold(l.Phone, q)
	}
	return true
}

func matchTask(t domain.Task, f domain.TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.LinkedTo != "" && (t.AssociatedWith == nil || t.AssociatedWith.ID != f.LinkedTo) {
		return false
	}
	return true
}

func matchUser(u domain.User, f domain.UserFilter) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		return containsFold(u.Name, q) || containsFold(u.Email, q) || containsFold(string(u.Role), q)
	}
	return true
}
