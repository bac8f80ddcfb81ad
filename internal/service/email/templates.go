package email

// Template names understood by SendTemplate.
const (
	TemplateWelcome         = "welcome"
	TemplateInvitation      = "invitation"
	TemplatePasswordChanged = "password_changed"
	TemplateRoleChanged     = "role_changed"
	TemplateAccountClosed   = "account_closed"
	TemplateLeadConverted   = "lead_converted"
)

// layoutTemplate wraps every message; each body defines "content".
const layoutTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #0f766e, #115e59); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        .button { display: inline-block; background: #0f766e; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin: 20px 0; }
        .info-box { background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .info-value { font-weight: 600; }
        .warning { background: #fef3c7; border: 1px solid #f59e0b; padding: 15px; border-radius: 8px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Espace agence</p>
    </div>
    <div class="content">
        {{template "content" .}}
    </div>
    <div class="footer">
        <p>Ce message est envoyé automatiquement, merci de ne pas y répondre.</p>
    </div>
</body>
</html>
`

const welcomeTemplate = `
<h2>Bienvenue, {{.Name}} !</h2>
<p>Votre compte a été créé avec le rôle <strong>{{.Role}}</strong>.</p>
<p>Vous pouvez vous connecter avec votre adresse {{.Email}}.</p>
<p style="text-align: center;">
    <a href="{{.BaseURL}}/admin" class="button">Accéder à l'espace agence</a>
</p>
`

const invitationTemplate = `
<h2>Bonjour {{.Name}},</h2>
<p>Un compte <strong>{{.Role}}</strong> vient d'être créé pour vous.</p>
<p>Choisissez votre mot de passe pour l'activer :</p>
<p style="text-align: center;">
    <a href="{{.SetupURL}}" class="button">Définir mon mot de passe</a>
</p>
<div class="warning">Ce lien est personnel et expire dans {{.ExpiresIn}}.</div>
`

const passwordChangedTemplate = `
<h2>Bonjour {{.Name}},</h2>
<p>Le mot de passe de votre compte a été modifié par un administrateur.</p>
<div class="warning">Si vous n'êtes pas à l'origine de cette demande, contactez votre responsable.</div>
`

const roleChangedTemplate = `
<h2>Bonjour {{.Name}},</h2>
<p>Votre rôle a été mis à jour.</p>
<div class="info-box">
    <div class="info-row"><span class="info-label">Nouveau rôle : </span><span class="info-value">{{.Role}}</span></div>
    <div class="info-row"><span class="info-label">Permissions : </span><span class="info-value">{{len .Permissions}}</span></div>
</div>
`

const accountClosedTemplate = `
<h2>Bonjour {{.Name}},</h2>
<p>Votre compte sur l'espace agence a été supprimé.</p>
<p>Les dossiers qui vous étaient attribués restent consultables par l'agence.</p>
`

const leadConvertedTemplate = `
<h2>Nouveau client</h2>
<p>Le lead <strong>{{.ClientName}}</strong> a été converti en client.</p>
<div class="info-box">
    <div class="info-row"><span class="info-label">Référence : </span><span class="info-value">{{.ClientID}}</span></div>
    <div class="info-row"><span class="info-label">Type : </span><span class="info-value">{{.ClientType}}</span></div>
    {{if .Budget}}<div class="info-row"><span class="info-label">Budget : </span><span class="info-value">{{.Budget}}</span></div>{{end}}
</div>
<p style="text-align: center;">
    <a href="{{.BaseURL}}/admin/clients/{{.ClientID}}" class="button">Ouvrir la fiche client</a>
</p>
`

var templateBodies = map[string]string{
	TemplateWelcome:         welcomeTemplate,
	TemplateInvitation:      invitationTemplate,
	TemplatePasswordChanged: passwordChangedTemplate,
	TemplateRoleChanged:     roleChangedTemplate,
	TemplateAccountClosed:   accountClosedTemplate,
	TemplateLeadConverted:   leadConvertedTemplate,
}
