package notify

import "text/template"

// mailParams is passed as data when executing a mail template.
type mailParams struct {
	Name    string
	Service string
	URL     string
}

const confirmTemplate = `Hi {{.Name}},

Thanks for signing up for {{.Service}}. Please confirm your account by
following this link:

{{.URL}}

If you did not sign up, you can ignore this email.

Regards,

{{.Service}}
`

const existingAccountTemplate = `Hi {{.Name}},

Someone (probably you) tried to sign up for {{.Service}} with this email
address, but you already have an account. If you have forgotten your
password, you can reset it here:

{{.URL}}

Otherwise you can ignore this email.

Regards,

{{.Service}}
`

const resetTemplate = `Hi {{.Name}},

Someone (probably you) asked to reset your {{.Service}} password. You can
choose a new password by following this link:

{{.URL}}

If you did not ask for a reset, you can ignore this email and your password
will stay as it is.

Regards,

{{.Service}}
`

var mailTemplates = template.Must(template.New("confirm").Parse(confirmTemplate))

func init() {
	template.Must(mailTemplates.New("existing_account").Parse(existingAccountTemplate))
	template.Must(mailTemplates.New("reset").Parse(resetTemplate))
}
