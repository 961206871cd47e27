package query

import "fmt"

// InvalidColumnError reports a filter or sort request naming a column that
// does not exist or does not allow the requested operation. The request is
// not applied.
type InvalidColumnError struct {
	Field  string
	Reason string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column %q: %s", e.Field, e.Reason)
}

// ConfigurationError reports a schema that cannot be used.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "query configuration: " + e.Message
}
