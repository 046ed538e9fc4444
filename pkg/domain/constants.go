package domain

// Field constants for JSON and mapstructure standardization.
const (
	// KeyResource is the field name carrying the resource to open across the
	// wire surfaces (HTTP payloads, MCP tool arguments).
	KeyResource = "resource"
)
