package main

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

// seedFile is the YAML layout read by `crmctl seed`:
//
//	users:
//	  - name: Marie Dupont
//	    email: marie@agence.fr
//	    role: Agent immobilier
//	leads:
//	  - name: Jean Moreau
//	    source: Site web
//	    assignedTo: marie@agence.fr
//	tasks:
//	  - title: Visite T3 Bastille
//	    date: 2024-06-12
//	    time: "14:30"
//	    type: visit
type seedFile struct {
	Users []seedUser `yaml:"users"`
	Leads []seedLead `yaml:"leads"`
	Tasks []seedTask `yaml:"tasks"`

	loc *time.Location
}

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Status   string `yaml:"status"`
	Password string `yaml:"password"`
}

type seedLead struct {
	Name               string `yaml:"name"`
	Email              string `yaml:"email"`
	Phone              string `yaml:"phone"`
	PropertyType       string `yaml:"propertyType"`
	Budget             string `yaml:"budget"`
	Status             string `yaml:"status"`
	Source             string `yaml:"source"`
	Score              *int   `yaml:"score"`
	AssignedTo         string `yaml:"assignedTo"`
	NextAction         string `yaml:"nextAction"`
	ClientType         string `yaml:"clientType"`
	InterestedProperty string `yaml:"interestedProperty"`
}

type seedTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Type        string `yaml:"type"`
	Client      string `yaml:"client"`
	Status      string `yaml:"status"`
}

type seedResult struct {
	users, leads, tasks int
}

func parseSeedFile(data []byte, loc *time.Location) (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	f.loc = loc
	return &f, nil
}

func (f *seedFile) userInputs() []ports.UserInput {
	out := make([]ports.UserInput, 0, len(f.Users))
	for _, u := range f.Users {
		out = append(out, ports.UserInput{
			Name:     u.Name,
			Email:    u.Email,
			Role:     domain.RoleName(u.Role),
			Status:   domain.UserStatus(u.Status),
			Password: u.Password,
		})
	}
	return out
}

func (f *seedFile) leadInputs() []ports.LeadInput {
	out := make([]ports.LeadInput, 0, len(f.Leads))
	for _, l := range f.Leads {
		out = append(out, ports.LeadInput{
			Name:               l.Name,
			Email:              l.Email,
			Phone:              l.Phone,
			PropertyType:       l.PropertyType,
			Budget:             l.Budget,
			Status:             domain.LeadStatus(l.Status),
			Source:             l.Source,
			Score:              l.Score,
			AssignedTo:         l.AssignedTo,
			NextAction:         l.NextAction,
			ClientType:         domain.ClientType(l.ClientType),
			InterestedProperty: l.InterestedProperty,
		})
	}
	return out
}

// taskInputs parses dates as YYYY-MM-DD in the agency timezone.
func (f *seedFile) taskInputs() ([]ports.TaskInput, error) {
	out := make([]ports.TaskInput, 0, len(f.Tasks))
	for i, t := range f.Tasks {
		date, err := time.ParseInLocation("2006-01-02", t.Date, f.loc)
		if err != nil {
			return nil, fmt.Errorf("task %d (%q): date must be YYYY-MM-DD: %w", i+1, t.Title, domain.ErrValidation)
		}
		out = append(out, ports.TaskInput{
			Title:       t.Title,
			Description: t.Description,
			Date:        date,
			Time:        t.Time,
			Type:        domain.TaskType(t.Type),
			Client:      t.Client,
			Status:      domain.TaskStatus(t.Status),
		})
	}
	return out, nil
}

// apply stops at the first rejected entry; entries before it stay saved.
func (f *seedFile) apply(ctx context.Context, users ports.UserService, leads ports.CRMService, tasks ports.TaskService) (seedResult, error) {
	var res seedResult

	taskInputs, err := f.taskInputs()
	if err != nil {
		return res, err
	}

	for _, in := range f.userInputs() {
		if _, err := users.AddUser(ctx, in); err != nil {
			return res, fmt.Errorf("user %s: %w", in.Email, err)
		}
		res.users++
	}
	for _, in := range f.leadInputs() {
		if _, err := leads.AddLead(ctx, in); err != nil {
			return res, fmt.Errorf("lead %s: %w", in.Name, err)
		}
		res.leads++
	}
	for _, in := range taskInputs {
		if _, err := tasks.AddTask(ctx, in); err != nil {
			return res, fmt.Errorf("task %s: %w", in.Title, err)
		}
		res.tasks++
	}
	return res, nil
}
