package analysis

import "encoding/json"

// OutboundRequest is the payload for one trigger. The builder creates it,
// the relay consumes it.
type OutboundRequest struct {
	TargetURL   string
	UserID      string
	Email       string
	ExtraFields map[string]any
	FileData    string
	FileName    string
}

// Body renders the JSON sent to the remote target:
// {user_id, email, ...extraFields, file_data?, file_name?}. TargetURL is never part of it.
func (o OutboundRequest) Body() ([]byte, error) {
	m := make(map[string]any, len(o.ExtraFields)+4)
	for k, v := range o.ExtraFields {
		m[k] = v
	}
	m["user_id"] = o.UserID
	m["email"] = o.Email
	if o.FileData != "" {
		m["file_data"] = o.FileData
		m["file_name"] = o.FileName
	}
	return json.Marshal(m)
}
