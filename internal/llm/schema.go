package llm

// Schema is a named JSON Schema used to validate structured replies.
type Schema struct {
	// Name identifies the schema in the compile cache. Kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}
