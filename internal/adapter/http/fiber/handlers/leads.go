package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/i18n"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// LeadHandler serves leads and the clients they become.
type LeadHandler struct {
	notifier
	service ports.CRMService
	log     *zap.Logger
}

func NewLeadHandler(service ports.CRMService, tr *i18n.Translator, log *zap.Logger) *LeadHandler {
	return &LeadHandler{
		notifier: notifier{tr: tr},
		service:  service,
		log:      log,
	}
}

func leadFilter(c *fiber.Ctx) domain.LeadFilter {
	return domain.LeadFilter{
		Status:     domain.LeadStatus(c.Query("status")),
		Source:     c.Query("source"),
		AssignedTo: c.Query("assignedTo"),
		ClientType: domain.ClientType(c.Query("clientType")),
		Search:     c.Query("search"),
	}
}

func (h *LeadHandler) List(c *fiber.Ctx) error {
	leads, err := h.service.ListLeads(c.UserContext(), leadFilter(c))
	if err != nil {
		return err
	}
	return list(c, leads, len(leads))
}

func (h *LeadHandler) Pipeline(c *fiber.Ctx) error {
	columns, err := h.service.Pipeline(c.UserContext())
	if err != nil {
		return err
	}
	return one(c, columns)
}

func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var in ports.LeadInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	lead, err := h.service.AddLead(c.UserContext(), in)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusCreated, lead, domain.EventLeadCreated, map[string]string{"name": lead.Name})
}

func (h *LeadHandler) Get(c *fiber.Ctx) error {
	lead, err := h.service.GetLead(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return one(c, lead)
}

func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var patch ports.LeadPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	lead, err := h.service.UpdateLead(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, lead, domain.EventLeadUpdated, map[string]string{"name": lead.Name})
}

func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	lead, err := h.service.GetLead(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := h.service.DeleteLead(c.UserContext(), id); err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, nil, domain.EventLeadDeleted, map[string]string{"name": lead.Name})
}

type MoveLeadRequest struct {
	Status domain.LeadStatus `json:"status"`
}

func (h *LeadHandler) Move(c *fiber.Ctx) error {
	var req MoveLeadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	id := c.Params("id")
	lead, err := h.service.MoveLead(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	if err := orNotFound("lead", id, lead != nil); err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, lead, domain.EventLeadMoved, map[string]string{
		"name":   lead.Name,
		"status": string(lead.Status),
	})
}

type ConvertLeadRequest struct {
	ClientType domain.ClientType `json:"clientType"`
}

func (h *LeadHandler) Convert(c *fiber.Ctx) error {
	var req ConvertLeadRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	id := c.Params("id")
	client, err := h.service.ConvertToClient(c.UserContext(), id, req.ClientType)
	if err != nil {
		return err
	}
	if err := orNotFound("lead", id, client != nil); err != nil {
		return err
	}
	return h.done(c, fiber.StatusCreated, client, domain.EventLeadConverted, map[string]string{"name": client.Name})
}

func (h *LeadHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.service.ListClients(c.UserContext(), leadFilter(c))
	if err != nil {
		return err
	}
	return list(c, clients, len(clients))
}

func (h *LeadHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.service.GetClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return one(c, client)
}

func (h *LeadHandler) UpdateClient(c *fiber.Ctx) error {
	var patch ports.ClientPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	client, err := h.service.UpdateClient(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, client, domain.EventClientUpdated, map[string]string{"name": client.Name})
}

func (h *LeadHandler) DeleteClient(c *fiber.Ctx) error {
	id := c.Params("id")
	client, err := h.service.GetClient(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := h.service.DeleteClient(c.UserContext(), id); err != nil {
		return err
	}
	return h.done(c, fiber.StatusOK, nil, domain.EventClientDeleted, map[string]string{"name": client.Name})
}
