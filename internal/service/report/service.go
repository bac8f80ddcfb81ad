// Package report computes the dashboard figures and CSV exports of the back office.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

type Service struct {
	leads   ports.LeadRepository
	clients ports.ClientRepository
	tasks   ports.TaskRepository
	users   ports.UserRepository
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

var _ ports.ReportService = (*Service)(nil)

func NewService(
	leads ports.LeadRepository,
	clients ports.ClientRepository,
	tasks ports.TaskRepository,
	users ports.UserRepository,
	loc *time.Location,
	log *zap.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		leads:   leads,
		clients: clients,
		tasks:   tasks,
		users:   users,
		loc:     loc,
		now:     time.Now,
		log:     log,
	}
}

func (s *Service) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	now := s.now().In(s.loc)
	stats := &ports.DashboardStats{
		LeadsByStatus: make(map[domain.LeadStatus]int, len(domain.PipelineStatuses)),
		LeadsBySource: make(map[string]int),
		ClientsByType: make(map[domain.ClientType]int),
		GeneratedAt:   now,
	}
	for _, st := range domain.PipelineStatuses {
		stats.LeadsByStatus[st] = 0
	}

	leads, err := s.leads.FindAll(ctx, domain.LeadFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	stats.TotalLeads = len(leads)
	for _, l := range leads {
		stats.LeadsByStatus[l.Status]++
		source := l.Source
		if source == "" {
			source = "Autre"
		}
		stats.LeadsBySource[source]++
	}
	if stats.TotalLeads > 0 {
		rate := float64(stats.LeadsByStatus[domain.LeadStatusWon]) / float64(stats.TotalLeads) * 100
		stats.WonRate = math.Round(rate*10) / 10
	}

	clients, err := s.clients.FindAll(ctx, domain.LeadFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	stats.TotalClients = len(clients)
	for _, c := range clients {
		stats.ClientsByType[c.ClientType]++
	}

	tasks, err := s.tasks.FindAll(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	for _, t := range tasks {
		if domain.SameDay(t.Date, now) {
			stats.TasksToday++
		}
		if !t.Status.Open() {
			continue
		}
		stats.OpenTasks++
		if t.Date.Before(midnight) {
			stats.OverdueTasks++
		}
	}

	users, err := s.users.FindAll(ctx, domain.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		switch u.Status {
		case domain.UserStatusActive:
			stats.ActiveUsers++
		case domain.UserStatusPending:
			stats.PendingUsers++
		}
	}

	return stats, nil
}

func (s *Service) Export(ctx context.Context, kind ports.ExportKind, out io.Writer) error {
	w := csv.NewWriter(out)
	w.Comma = ';'

	var rows int
	switch kind {
	case ports.ExportLeads:
		leads, err := s.leads.FindAll(ctx, domain.LeadFilter{})
		if err != nil {
			return fmt.Errorf("failed to list leads: %w", err)
		}
		w.Write([]string{"ID", "Nom", "Email", "Téléphone", "Type de bien", "Budget", "Statut", "Source", "Score", "Assigné à", "Créé le", "Dernier contact"})
		for _, l := range leads {
			w.Write([]string{
				l.ID, l.Name, l.Email, l.Phone, l.PropertyType, l.Budget,
				string(l.Status), l.Source, score(l.Score), l.AssignedTo,
				s.date(l.CreatedAt), s.date(l.LastContact),
			})
		}
		rows = len(leads)

	case ports.ExportClients:
		clients, err := s.clients.FindAll(ctx, domain.LeadFilter{})
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		w.Write([]string{"ID", "Nom", "Email", "Téléphone", "Type", "Budget", "Gestionnaire", "Client depuis", "Transactions", "Préférences"})
		for _, c := range clients {
			w.Write([]string{
				c.ID, c.Name, c.Email, c.Phone, string(c.ClientType), c.Budget,
				c.AccountManager, s.date(c.ClientSince), strconv.Itoa(len(c.Transactions)),
				strings.Join(c.Preferences, ", "),
			})
		}
		rows = len(clients)

	case ports.ExportTasks:
		tasks, err := s.tasks.FindAll(ctx, domain.TaskFilter{})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		w.Write([]string{"ID", "Titre", "Type", "Date", "Heure", "Client", "Statut", "Lié à"})
		for _, t := range tasks {
			linked := ""
			if t.AssociatedWith != nil {
				linked = t.AssociatedWith.ID
			}
			w.Write([]string{
				t.ID, t.Title, string(t.Type), s.date(t.Date), t.Time,
				t.Client, string(t.Status), linked,
			})
		}
		rows = len(tasks)

	default:
		return fmt.Errorf("unknown export %q: %w", kind, domain.ErrValidation)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	s.log.Info("Export generated", zap.String("kind", string(kind)), zap.Int("rows", rows))
	return nil
}

func (s *Service) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02")
}

func score(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
