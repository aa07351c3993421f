package model

// ConfigEntry is one row of the flat app_config key/value table. It holds
// runtime settings editable from the admin UI: messaging-provider
// credentials and message templates.
type ConfigEntry struct {
	Key         string `db:"key" json:"key"`
	Value       string `db:"value" json:"value"`
	Description string `db:"description" json:"description,omitempty"`
}

// Config keys read by the dispatcher and the welcome sender.
const (
	ConfigKeyAPIURL          = "api_url"
	ConfigKeyAPIKey          = "api_key"
	ConfigKeyInstance        = "instance"
	ConfigKeyWelcomeTemplate = "welcome_message_template"
)

type UpdateConfigRequest struct {
	Entries []ConfigEntry `json:"entries" binding:"required,dive"`
}
