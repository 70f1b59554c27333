package facebook

import "encoding/json"

// Result is the uniform outcome shape shared by publish and delete actions.
// Callers branch on Success only; Data is set on success, Error on failure.
type Result struct {
	Success  bool
	PostID   string
	Data     map[string]any
	Error    string
	Message  string
	Attempts int
}

// StoredResponse renders the payload persisted on the post record: the full
// platform response on success, the error message on failure. Both are JSON
// so the stored column always decodes.
func (r Result) StoredResponse() string {
	if r.Success {
		raw, err := json.Marshal(r.Data)
		if err != nil {
			return "{}"
		}
		return string(raw)
	}

	raw, err := json.Marshal(r.Error)
	if err != nil {
		return `""`
	}
	return string(raw)
}

func failure(message string) Result {
	return Result{Success: false, Error: message}
}
