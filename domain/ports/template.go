package ports

// TemplateEngine renders a manifest template before it is parsed.
type TemplateEngine interface {
	// Render executes raw with the given variables, exposed as .config.
	Render(raw []byte, config map[string]interface{}) ([]byte, error)
}
