package loam

// HandlerMetadata represents the frontmatter of a handler policy document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type HandlerMetadata struct {
	// Scheme the handler serves. Empty means the document filename is the
	// scheme (https.md serves https).
	Scheme string `json:"scheme" mapstructure:"scheme"`

	Command     string            `json:"command" mapstructure:"command"`
	Args        []string          `json:"args" mapstructure:"args"`
	Environment map[string]string `json:"env" mapstructure:"env"`

	// Allow restricts the handler to these hosts. Empty allows every host.
	Allow []string `json:"allow" mapstructure:"allow"`

	// Deny refuses these hosts. Deny wins over Allow.
	Deny []string `json:"deny" mapstructure:"deny"`

	// Disabled excludes the policy from listings without deleting the file.
	Disabled bool `json:"disabled" mapstructure:"disabled"`
}
