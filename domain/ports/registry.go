package ports

// SchemaRegistry manages JSON schemas for manifest document kinds.
type SchemaRegistry interface {
	// Register adds a schema generated from a Go struct.
	Register(kind string, model interface{}) error

	// GetSchema retrieves the JSON Schema for a document kind.
	GetSchema(kind string) (string, bool)

	// List returns all registered document kinds.
	List() []string
}
