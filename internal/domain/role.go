package domain

type Permission string

const (
	PermViewDashboard      Permission = "view_dashboard"
	PermViewUsers          Permission = "view_users"
	PermCreateUsers        Permission = "create_users"
	PermEditUsers          Permission = "edit_users"
	PermDeleteUsers        Permission = "delete_users"
	PermManageRoles        Permission = "manage_roles"
	PermViewLeads          Permission = "view_leads"
	PermCreateLeads        Permission = "create_leads"
	PermEditLeads          Permission = "edit_leads"
	PermDeleteLeads        Permission = "delete_leads"
	PermConvertLeads       Permission = "convert_leads"
	PermViewClients        Permission = "view_clients"
	PermEditClients        Permission = "edit_clients"
	PermDeleteClients      Permission = "delete_clients"
	PermViewTasks          Permission = "view_tasks"
	PermCreateTasks        Permission = "create_tasks"
	PermEditTasks          Permission = "edit_tasks"
	PermDeleteTasks        Permission = "delete_tasks"
	PermViewProperties     Permission = "view_properties"
	PermManageProperties   Permission = "manage_properties"
	PermViewOffers         Permission = "view_offers"
	PermManageOffers       Permission = "manage_offers"
	PermViewBlog           Permission = "view_blog"
	PermManageBlog         Permission = "manage_blog"
	PermManageTestimonials Permission = "manage_testimonials"
	PermViewReports        Permission = "view_reports"
	PermExportData         Permission = "export_data"
	PermViewActivityLog    Permission = "view_activity_log"
	PermManageSettings     Permission = "manage_settings"
	PermManageSecurity     Permission = "manage_security"
)

// AllPermissions is the closed permission vocabulary.
var AllPermissions = []Permission{
	PermViewDashboard, PermViewUsers, PermCreateUsers, PermEditUsers, PermDeleteUsers, PermManageRoles,
	PermViewLeads, PermCreateLeads, PermEditLeads, PermDeleteLeads, PermConvertLeads,
	PermViewClients, PermEditClients, PermDeleteClients,
	PermViewTasks, PermCreateTasks, PermEditTasks, PermDeleteTasks,
	PermViewProperties, PermManageProperties, PermViewOffers, PermManageOffers,
	PermViewBlog, PermManageBlog, PermManageTestimonials,
	PermViewReports, PermExportData, PermViewActivityLog, PermManageSettings, PermManageSecurity,
}

func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

type RoleName string

const (
	RoleSuperAdmin        RoleName = "Super Admin"
	RoleAdmin             RoleName = "Administrateur"
	RoleAgencyDirector    RoleName = "Directeur d'agence"
	RoleSalesManager      RoleName = "Responsable commercial"
	RoleAgent             RoleName = "Agent immobilier"
	RoleInvestmentAdvisor RoleName = "Conseiller en investissement"
	RoleSalesAssistant    RoleName = "Assistant commercial"
	RoleMarketingManager  RoleName = "Responsable marketing"
	RoleEditor            RoleName = "Rédacteur"
	RoleAccountant        RoleName = "Comptable"
	RoleIntern            RoleName = "Stagiaire"
)

// Role is a named bundle of permissions. Roles are static configuration.
type Role struct {
	Name        RoleName     `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

func without(excluded ...Permission) []Permission {
	out := make([]Permission, 0, len(AllPermissions))
	for _, p := range AllPermissions {
		skip := false
		for _, e := range excluded {
			if p == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, p)
		}
	}
	return out
}

var defaultRoles = []Role{
	{
		Name:        RoleSuperAdmin,
		Description: "Accès complet à toutes les fonctionnalités",
		Permissions: without(),
	},
	{
		Name:        RoleAdmin,
		Description: "Gestion de l'agence hors paramètres de sécurité",
		Permissions: without(PermManageSecurity),
	},
	{
		Name:        RoleAgencyDirector,
		Description: "Pilotage commercial et suivi de l'activité",
		Permissions: []Permission{
			PermViewDashboard, PermViewUsers,
			PermViewLeads, PermCreateLeads, PermEditLeads, PermDeleteLeads, PermConvertLeads,
			PermViewClients, PermEditClients, PermDeleteClients,
			PermViewTasks, PermCreateTasks, PermEditTasks, PermDeleteTasks,
			PermViewProperties, PermManageProperties, PermViewOffers, PermManageOffers,
			PermViewReports, PermExportData, PermViewActivityLog,
		},
	},
	{
		Name:        RoleSalesManager,
		Description: "Animation de l'équipe commerciale",
		Permissions: []Permission{
			PermViewDashboard, PermViewUsers,
			PermViewLeads, PermCreateLeads, PermEditLeads, PermDeleteLeads, PermConvertLeads,
			PermViewClients, PermEditClients,
			PermViewTasks, PermCreateTasks, PermEditTasks, PermDeleteTasks,
			PermViewProperties, PermViewOffers, PermViewReports,
		},
	},
	{
		Name:        RoleAgent,
		Description: "Suivi des prospects et des visites",
		Permissions: []Permission{
			PermViewDashboard,
			PermViewLeads, PermCreateLeads, PermEditLeads, PermConvertLeads,
			PermViewClients, PermEditClients,
			PermViewTasks, PermCreateTasks, PermEditTasks,
			PermViewProperties, PermManageProperties,
		},
	},
	{
		Name:        RoleInvestmentAdvisor,
		Description: "Accompagnement des investisseurs",
		Permissions: []Permission{
			PermViewDashboard,
			PermViewLeads, PermCreateLeads, PermEditLeads, PermConvertLeads,
			PermViewClients, PermEditClients,
			PermViewTasks, PermCreateTasks, PermEditTasks,
			PermViewProperties, PermViewOffers, PermManageOffers,
		},
	},
	{
		Name:        RoleSalesAssistant,
		Description: "Saisie et planification",
		Permissions: []Permission{
			PermViewDashboard,
			PermViewLeads, PermCreateLeads, PermEditLeads,
			PermViewClients,
			PermViewTasks, PermCreateTasks, PermEditTasks,
		},
	},
	{
		Name:        RoleMarketingManager,
		Description: "Contenus, offres et acquisition",
		Permissions: []Permission{
			PermViewDashboard, PermViewLeads,
			PermViewProperties, PermViewOffers, PermManageOffers,
			PermViewBlog, PermManageBlog, PermManageTestimonials,
			PermViewReports,
		},
	},
	{
		Name:        RoleEditor,
		Description: "Rédaction du blog et des témoignages",
		Permissions: []Permission{
			PermViewDashboard, PermViewBlog, PermManageBlog, PermManageTestimonials,
		},
	},
	{
		Name:        RoleAccountant,
		Description: "Consultation des clients et exports",
		Permissions: []Permission{
			PermViewDashboard, PermViewClients, PermViewReports, PermExportData,
		},
	},
	{
		Name:        RoleIntern,
		Description: "Consultation uniquement",
		Permissions: []Permission{
			PermViewDashboard, PermViewLeads, PermViewClients, PermViewTasks, PermViewProperties,
		},
	},
}

// DefaultRoles returns a copy of the role table.
func DefaultRoles() []Role {
	out := make([]Role, len(defaultRoles))
	for i, r := range defaultRoles {
		out[i] = r.clone()
	}
	return out
}

// RoleByName looks a role up by its exact name.
func RoleByName(name RoleName) (Role, bool) {
	for _, r := range defaultRoles {
		if r.Name == name {
			return r.clone(), true
		}
	}
	return Role{}, false
}

func (r Role) clone() Role {
	r.Permissions = append([]Permission(nil), r.Permissions...)
	return r
}

// Has reports whether the role grants p.
func (r Role) Has(p Permission) bool {
	return containsPermission(r.Permissions, p)
}

func containsPermission(perms []Permission, p Permission) bool {
	for _, have := range perms {
		if have == p {
			return true
		}
	}
	return false
}
