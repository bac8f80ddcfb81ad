package crm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/observability/telemetry"
	"github.com/seu-repo/imob-crm/internal/ports"
)

var _ ports.CRMService = (*Service)(nil)

type Service struct {
	leads   ports.LeadRepository
	clients ports.ClientRepository
	ids     ports.IDAllocator
	events  ports.EventPublisher
	log     *zap.Logger
	now     func() time.Time
}

func NewService(leads ports.LeadRepository, clients ports.ClientRepository, ids ports.IDAllocator, events ports.EventPublisher, log *zap.Logger) *Service {
	return &Service{
		leads:   leads,
		clients: clients,
		ids:     ids,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) nextID(ctx context.Context, prefix string) (string, error) {
	n, err := s.ids.Next(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to allocate id: %w", err)
	}
	return domain.FormatID(prefix, n), nil
}

// AddLead stores the lead together with its mirrored client row.
func (s *Service) AddLead(ctx context.Context, in ports.LeadInput) (*domain.Lead, error) {
	if in.Status == "" {
		in.Status = domain.LeadStatusNew
	}
	if err := validateLead(in.Name, in.Status, in.ClientType, in.Score); err != nil {
		return nil, err
	}

	leadID, err := s.nextID(ctx, domain.PrefixLead)
	if err != nil {
		return nil, err
	}
	clientID, err := s.nextID(ctx, domain.PrefixClient)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lead := domain.Lead{
		ID:                 leadID,
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.TrimSpace(in.Email),
		Phone:              strings.TrimSpace(in.Phone),
		PropertyType:       in.PropertyType,
		Budget:             in.Budget,
		Status:             in.Status,
		Source:             in.Source,
		CreatedAt:          now,
		LastContact:        now,
		Score:              in.Score,
		AssignedTo:         in.AssignedTo,
		NextAction:         in.NextAction,
		ClientType:         in.ClientType,
		InterestedProperty: in.InterestedProperty,
		InvestmentCriteria: in.InvestmentCriteria,
	}

	mirror := domain.Client{Lead: lead.Clone(), ClientSince: now}
	mirror.ID = clientID
	if mirror.ClientType == "" {
		mirror.ClientType = domain.ClientTypeProspect
	}

	if err := s.leads.CreateWithClient(ctx, &lead, &mirror); err != nil {
		return nil, err
	}

	telemetry.LeadsCreatedTotal.WithLabelValues(sourceLabel(lead.Source)).Inc()
	s.log.Info("Lead created", zap.String("lead_id", lead.ID), zap.String("client_id", mirror.ID))
	s.emit(ctx, domain.EventLeadCreated, lead.ID, map[string]string{
		"name":     lead.Name,
		"source":   lead.Source,
		"clientId": mirror.ID,
	})
	return &lead, nil
}

func (s *Service) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	return s.leads.FindAll(ctx, filter)
}

func (s *Service) UpdateLead(ctx context.Context, id string, patch ports.LeadPatch) (*domain.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := lead.Status

	applyLeadPatch(lead, patch)
	if err := validateLead(lead.Name, lead.Status, lead.ClientType, lead.Score); err != nil {
		return nil, err
	}
	lead.LastContact = s.now()

	found, err := s.leads.Update(ctx, lead)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}

	if previous != lead.Status {
		telemetry.LeadTransitionsTotal.WithLabelValues(string(previous), string(lead.Status)).Inc()
	}
	s.emit(ctx, domain.EventLeadUpdated, lead.ID, map[string]string{"name": lead.Name})
	return lead, nil
}

func (s *Service) DeleteLead(ctx context.Context, id string) error {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return err
	}
	found, err := s.leads.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}
	s.emit(ctx, domain.EventLeadDeleted, id, map[string]string{"name": lead.Name})
	return nil
}

// MoveLead sets any of the pipeline statuses, whatever the current one is.
// A missing lead is not an error: it returns nil, nil.
func (s *Service) MoveLead(ctx context.Context, id string, status domain.LeadStatus) (*domain.Lead, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		s.log.Debug("Move ignored, lead not found", zap.String("lead_id", id))
		return nil, nil
	}

	previous := lead.Status
	lead.Status = status
	lead.LastContact = s.now()

	found, err := s.leads.Update(ctx, lead)
	if err != nil {
		return nil, err
	}
	if !found {
		s.log.Debug("Move ignored, lead removed meanwhile", zap.String("lead_id", id))
		return nil, nil
	}

	telemetry.LeadTransitionsTotal.WithLabelValues(string(previous), string(status)).Inc()
	s.emit(ctx, domain.EventLeadMoved, lead.ID, map[string]string{
		"name":   lead.Name,
		"from":   string(previous),
		"status": string(status),
	})
	return lead, nil
}

// ConvertToClient turns the lead into a client with a fresh id and removes the lead.
// An empty clientType keeps the lead's own. A missing lead returns nil, nil.
func (s *Service) ConvertToClient(ctx context.Context, id string, clientType domain.ClientType) (*domain.Client, error) {
	if clientType != "" && !clientType.Valid() {
		return nil, fmt.Errorf("%w: unknown client type %q", domain.ErrValidation, clientType)
	}

	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		s.log.Debug("Conversion ignored, lead not found", zap.String("lead_id", id))
		return nil, nil
	}

	clientID, err := s.nextID(ctx, domain.PrefixClient)
	if err != nil {
		return nil, err
	}

	client := domain.Client{Lead: lead.Clone(), ClientSince: s.now()}
	client.ID = clientID
	client.Status = domain.LeadStatusWon
	if clientType != "" {
		client.ClientType = clientType
	}

	found, err := s.leads.Convert(ctx, id, &client)
	if err != nil {
		return nil, err
	}
	if !found {
		s.log.Debug("Conversion ignored, lead removed concurrently", zap.String("lead_id", id))
		return nil, nil
	}

	telemetry.LeadConversionsTotal.WithLabelValues(string(client.ClientType)).Inc()
	s.log.Info("Lead converted", zap.String("lead_id", id), zap.String("client_id", client.ID))
	s.emit(ctx, domain.EventLeadConverted, client.ID, map[string]string{
		"leadId":     id,
		"name":       client.Name,
		"clientType": string(client.ClientType),
		"assignedTo": client.AssignedTo,
	})
	return &client, nil
}

// Pipeline groups leads by status in pipeline order, most recently contacted first.
func (s *Service) Pipeline(ctx context.Context) ([]ports.PipelineColumn, error) {
	leads, err := s.leads.FindAll(ctx, domain.LeadFilter{})
	if err != nil {
		return nil, err
	}

	columns := make([]ports.PipelineColumn, len(domain.PipelineStatuses))
	index := make(map[domain.LeadStatus]int, len(domain.PipelineStatuses))
	for i, st := range domain.PipelineStatuses {
		columns[i] = ports.PipelineColumn{Status: st, Leads: []domain.Lead{}}
		index[st] = i
	}
	for _, l := range leads {
		if i, ok := index[l.Status]; ok {
			columns[i].Leads = append(columns[i].Leads, l)
		}
	}
	for i := range columns {
		sort.SliceStable(columns[i].Leads, func(a, b int) bool {
			return columns[i].Leads[a].LastContact.After(columns[i].Leads[b].LastContact)
		})
		columns[i].Count = len(columns[i].Leads)
	}
	return columns, nil
}

func (s *Service) ListClients(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error) {
	return s.clients.FindAll(ctx, filter)
}

func (s *Service) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, id string, patch ports.ClientPatch) (*domain.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	applyLeadPatch(&client.Lead, patch.LeadPatch)
	if patch.AccountManager != nil {
		client.AccountManager = *patch.AccountManager
	}
	if patch.Preferences != nil {
		client.Preferences = append([]string(nil), (*patch.Preferences)...)
	}
	if patch.Transactions != nil {
		client.Transactions = append([]domain.ClientTransaction(nil), (*patch.Transactions)...)
	}
	if err := validateLead(client.Name, client.Status, client.ClientType, client.Score); err != nil {
		return nil, err
	}
	client.LastContact = s.now()

	found, err := s.clients.Update(ctx, client)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	s.emit(ctx, domain.EventClientUpdated, client.ID, map[string]string{"name": client.Name})
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return err
	}
	found, err := s.clients.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	s.emit(ctx, domain.EventClientDeleted, id, map[string]string{"name": client.Name})
	return nil
}

func (s *Service) emit(ctx context.Context, typ domain.EventType, subjectID string, payload map[string]string) {
	s.events.Publish(ctx, domain.NewEvent(typ, domain.ActorID(ctx), subjectID, payload))
}

func sourceLabel(source string) string {
	if source == "" {
		return "inconnue"
	}
	return strings.ToLower(source)
}
