package tools

import "encoding/json"

// Kind discriminates the shape of a tool result.
type Kind int

const (
	// KindText carries a guest-readable string.
	KindText Kind = iota
	// KindBoolean carries a success flag.
	KindBoolean
	// KindObject carries an arbitrary JSON object.
	KindObject
)

// Result is a tagged tool result. Handlers declare the shape of what
// they return instead of the bridge sniffing it, so adding a new shape
// is a compile-time change rather than a runtime surprise.
type Result struct {
	Kind    Kind
	Boolean bool
	Text    string
	Object  map[string]any
}

// Boolean wraps a success flag.
func Boolean(b bool) Result {
	return Result{Kind: KindBoolean, Boolean: b}
}

// Text wraps a guest-readable string.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// Object wraps a structured payload, passed through unchanged.
func Object(m map[string]any) Result {
	return Result{Kind: KindObject, Object: m}
}

// Payload renders the result as the JSON document handed back to the
// language model: {"success": b} for booleans, {"result": t} for text,
// and the object itself for structured results.
func (r Result) Payload() (string, error) {
	var doc any
	switch r.Kind {
	case KindBoolean:
		doc = map[string]any{"success": r.Boolean}
	case KindText:
		doc = map[string]any{"result": r.Text}
	case KindObject:
		doc = r.Object
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ErrorPayload renders an execution failure as {"error": message}. It
// never fails: a message that cannot be marshalled is replaced.
func ErrorPayload(err error) string {
	out, merr := json.Marshal(map[string]any{"error": err.Error()})
	if merr != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(out)
}
