package ports

import (
	"context"
	"io"
	"time"

	"github.com/seu-repo/imob-crm/internal/domain"
)

// LeadInput carries the caller-supplied fields of a new lead.
type LeadInput struct {
	Name               string                     `json:"name"`
	Email              string                     `json:"email"`
	Phone              string                     `json:"phone"`
	PropertyType       string                     `json:"propertyType"`
	Budget             string                     `json:"budget"`
	Status             domain.LeadStatus          `json:"status"`
	Source             string                     `json:"source"`
	Score              *int                       `json:"score"`
	AssignedTo         string                     `json:"assignedTo"`
	NextAction         string                     `json:"nextAction"`
	ClientType         domain.ClientType          `json:"clientType"`
	InterestedProperty string                     `json:"interestedProperty"`
	InvestmentCriteria *domain.InvestmentCriteria `json:"investmentCriteria"`
}

// LeadPatch updates only the non-nil fields.
type LeadPatch struct {
	Name               *string                    `json:"name"`
	Email              *string                    `json:"email"`
	Phone              *string                    `json:"phone"`
	PropertyType       *string                    `json:"propertyType"`
	Budget             *string                    `json:"budget"`
	Status             *domain.LeadStatus         `json:"status"`
	Source             *string                    `json:"source"`
	Score              *int                       `json:"score"`
	AssignedTo         *string                    `json:"assignedTo"`
	NextAction         *string                    `json:"nextAction"`
	ClientType         *domain.ClientType         `json:"clientType"`
	InterestedProperty *string                    `json:"interestedProperty"`
	InvestmentCriteria *domain.InvestmentCriteria `json:"investmentCriteria"`
}

type ClientPatch struct {
	LeadPatch
	AccountManager *string                     `json:"accountManager"`
	Preferences    *[]string                   `json:"preferences"`
	Transactions   *[]domain.ClientTransaction `json:"transactions"`
}

// PipelineColumn is one status column of the pipeline board.
type PipelineColumn struct {
	Status domain.LeadStatus `json:"status"`
	Count  int               `json:"count"`
	Leads  []domain.Lead     `json:"leads"`
}

type CRMService interface {
	AddLead(ctx context.Context, in LeadInput) (*domain.Lead, error)
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	UpdateLead(ctx context.Context, id string, patch LeadPatch) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error
	// MoveLead and ConvertToClient return nil, nil when the lead does not exist.
	MoveLead(ctx context.Context, id string, status domain.LeadStatus) (*domain.Lead, error)
	ConvertToClient(ctx context.Context, id string, clientType domain.ClientType) (*domain.Client, error)
	Pipeline(ctx context.Context) ([]PipelineColumn, error)

	ListClients(ctx context.Context, filter domain.LeadFilter) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, patch ClientPatch) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

type TaskInput struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Date           time.Time           `json:"date"`
	Type           domain.TaskType     `json:"type"`
	Time           string              `json:"time"`
	Client         string              `json:"client"`
	Status         domain.TaskStatus   `json:"status"`
	AssociatedWith *domain.Association `json:"associatedWith"`
}

type TaskPatch struct {
	Title          *string             `json:"title"`
	Description    *string             `json:"description"`
	Date           *time.Time          `json:"date"`
	Type           *domain.TaskType    `json:"type"`
	Time           *string             `json:"time"`
	Client         *string             `json:"client"`
	AssociatedWith *domain.Association `json:"associatedWith"`
}

type CalendarProvider string

const (
	CalendarGoogle  CalendarProvider = "google"
	CalendarOutlook CalendarProvider = "outlook"
)

type TaskService interface {
	AddTask(ctx context.Context, in TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CompleteTask(ctx context.Context, id string) (*domain.Task, error)
	CancelTask(ctx context.Context, id string) (*domain.Task, error)
	HoldTask(ctx context.Context, id string) (*domain.Task, error)
	ReopenTask(ctx context.Context, id string) (*domain.Task, error)
	GetUpcomingTasks(ctx context.Context, limit int) ([]domain.Task, error)
	GetTasksForDate(ctx context.Context, date time.Time) ([]domain.Task, error)
	CalendarLink(ctx context.Context, id string, provider CalendarProvider) (string, error)
}

// UserInput creates a user. Without Permissions the role's set is copied.
// Without Password the user waits for an invitation.
type UserInput struct {
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Role             domain.RoleName     `json:"role"`
	Status           domain.UserStatus   `json:"status"`
	Permissions      []domain.Permission `json:"permissions"`
	Password         string              `json:"password"`
	TwoFactorEnabled bool                `json:"twoFactorEnabled"`
}

type UserPatch struct {
	Name        *string              `json:"name"`
	Email       *string              `json:"email"`
	Permissions *[]domain.Permission `json:"permissions"`
}

type UserService interface {
	AddUser(ctx context.Context, in UserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.RoleName) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error)
	ResetPasswordManually(ctx context.Context, id, password string, notify bool) error
	SetTwoFactor(ctx context.Context, id string, enabled bool) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	IssueSetupToken(ctx context.Context, user *domain.User) (string, error)
	SetPassword(ctx context.Context, setupToken, password string) error
	Logout(ctx context.Context, accessToken string) error
	HashPassword(password string) (string, error)
	Invalidate(ctx context.Context, userID string)
}

type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionConvert Action = "convert"
	ActionExport  Action = "export"
)

type Resource string

const (
	ResourceDashboard Resource = "dashboard"
	ResourceUsers     Resource = "users"
	ResourceRoles     Resource = "roles"
	ResourceLeads     Resource = "leads"
	ResourceClients   Resource = "clients"
	ResourceTasks     Resource = "tasks"
	ResourceReports   Resource = "reports"
	ResourceSettings  Resource = "settings"
)

// Policy answers authorization questions with a flat permission membership test.
type Policy interface {
	Can(ctx context.Context, actor *domain.Actor, action Action, resource Resource) bool
	Require(ctx context.Context, actor *domain.Actor, action Action, resource Resource) error
	Permission(action Action, resource Resource) (domain.Permission, bool)
}

// EmailService handles email notifications
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
	SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error
	SendWelcome(ctx context.Context, user *domain.User) error
	SendInvitation(ctx context.Context, user *domain.User, setupURL string) error
	SendPasswordChanged(ctx context.Context, user *domain.User) error
	SendRoleChanged(ctx context.Context, user *domain.User) error
	SendAccountClosed(ctx context.Context, name, email string) error
	SendLeadConverted(ctx context.Context, to string, client *domain.Client) error
}

// DashboardStats summarises the pipeline for the back-office home page.
type DashboardStats struct {
	TotalLeads    int                       `json:"totalLeads"`
	LeadsByStatus map[domain.LeadStatus]int `json:"leadsByStatus"`
	LeadsBySource map[string]int            `json:"leadsBySource"`
	// WonRate is the share of leads in status Vendu, in percent.
	WonRate       float64                   `json:"wonRate"`

	TotalClients  int                       `json:"totalClients"`
	ClientsByType map[domain.ClientType]int `json:"clientsByType"`
	OpenTasks     int                       `json:"openTasks"`
	OverdueTasks  int                       `json:"overdueTasks"`
	TasksToday    int                       `json:"tasksToday"`
	ActiveUsers   int                       `json:"activeUsers"`
	PendingUsers  int                       `json:"pendingUsers"`
	GeneratedAt   time.Time                 `json:"generatedAt"`
}

type ExportKind string

const (
	ExportLeads   ExportKind = "leads"
	ExportClients ExportKind = "clients"
	ExportTasks   ExportKind = "tasks"
)

type ReportService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	// Export writes a CSV of the collection; unknown kinds are ErrValidation.
	Export(ctx context.Context, kind ExportKind, w io.Writer) error
}
