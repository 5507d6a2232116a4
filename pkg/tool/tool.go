package tool

import "context"

// Tool is a named operation the server can dispatch. Every tool touching the
// filesystem re-derives its paths through the sandbox; nothing else hands a
// tool a path.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Descriptor is the wire form of a tool advertised to clients.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}
