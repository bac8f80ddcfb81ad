package domain

import "time"

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "Nouveau lead"
	LeadStatusContacted   LeadStatus = "Contacté"
	LeadStatusQualified   LeadStatus = "Qualifié"
	LeadStatusNegotiation LeadStatus = "En négociation"
	LeadStatusWon         LeadStatus = "Vendu"
	LeadStatusLost        LeadStatus = "Perdu"
)

// PipelineStatuses lists the lead statuses in the order the pipeline board shows them.
// The order is a suggestion for the UI only; any status may move to any other.
var PipelineStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusNegotiation,
	LeadStatusWon,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, st := range PipelineStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type ClientType string

const (
	ClientTypeInvestor ClientType = "Investisseur"
	ClientTypeBuyer    ClientType = "Acheteur"
	ClientTypeProspect ClientType = "Prospect"
)

func (t ClientType) Valid() bool {
	switch t {
	case ClientTypeInvestor, ClientTypeBuyer, ClientTypeProspect:
		return true
	}
	return false
}

// InvestmentCriteria is free text captured for investor leads.
type InvestmentCriteria struct {
	Budget        string   `json:"budget,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	PropertyTypes []string `json:"propertyTypes,omitempty"`
	ExpectedYield string   `json:"expectedYield,omitempty"`
	Horizon       string   `json:"horizon,omitempty"`
}

// Lead is a prospective customer. Budget and PropertyType are display strings.
type Lead struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Email              string              `json:"email,omitempty"`
	Phone              string              `json:"phone,omitempty"`
	PropertyType       string              `json:"propertyType,omitempty"`
	Budget             string              `json:"budget,omitempty"`
	Status             LeadStatus          `json:"status"`
	Source             string              `json:"source"`
	CreatedAt          time.Time           `json:"createdAt"`
	LastContact        time.Time           `json:"lastContact"`
	Score              *int                `json:"score,omitempty"`
	AssignedTo         string              `json:"assignedTo,omitempty"`
	NextAction         string              `json:"nextAction,omitempty"`
	ClientType         ClientType          `json:"clientType,omitempty"`
	InterestedProperty string              `json:"interestedProperty,omitempty"`
	InvestmentCriteria *InvestmentCriteria `json:"investmentCriteria,omitempty"`
}

// Clone returns a deep copy of the lead.
func (l Lead) Clone() Lead {
	out := l
	if l.Score != nil {
		score := *l.Score
		out.Score = &score
	}
	if l.InvestmentCriteria != nil {
		ic := *l.InvestmentCriteria
		ic.Locations = append([]string(nil), l.InvestmentCriteria.Locations...)
		ic.PropertyTypes = append([]string(nil), l.InvestmentCriteria.PropertyTypes...)
		out.InvestmentCriteria = &ic
	}
	return out
}

// ClientTransaction records a sale or rental closed with a client.
type ClientTransaction struct {
	ID       string    `json:"id"`
	Property string    `json:"property"`
	Type     string    `json:"type"`
	Amount   string    `json:"amount"`
	Date     time.Time `json:"date"`
}

// Client is a converted lead. It is an independent copy with no link back to the lead.
type Client struct {
	Lead
	ClientSince    time.Time           `json:"clientSince"`
	Transactions   []ClientTransaction `json:"transactions,omitempty"`
	AccountManager string              `json:"accountManager,omitempty"`
	Preferences    []string            `json:"preferences,omitempty"`
}

func (c Client) Clone() Client {
	out := c
	out.Lead = c.Lead.Clone()
	out.Transactions = append([]ClientTransaction(nil), c.Transactions...)
	out.Preferences = append([]string(nil), c.Preferences...)
	return out
}

// LeadFilter narrows lead and client listings. Zero values match everything.
type LeadFilter struct {
	Status     LeadStatus
	Source     string
	AssignedTo string
	ClientType ClientType
	Search     string
}
