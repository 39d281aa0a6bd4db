package analyses

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

// Build assembles the outbound request for one trigger. Extra fields are only
// checked for presence; the remote target validates their meaning. Same
// inputs always give the same request.
func Build(d analysis.Descriptor, s analysis.Session, extra map[string]any, file *analysis.EncodedFile) (analysis.OutboundRequest, error) {
	if d.RequiresFile && (file == nil || file.DataURI == "") {
		return analysis.OutboundRequest{}, fmt.Errorf("%w: %s needs a file", analysis.ErrMissingRequiredInput, d.ID)
	}

	req := analysis.OutboundRequest{
		TargetURL:   d.RemoteTarget,
		UserID:      s.UserID,
		Email:       s.Email,
		ExtraFields: make(map[string]any, len(d.ExtraFields)),
	}
	for name, source := range d.ExtraFields {
		v, ok := extra[name]
		if !ok || isBlank(v) {
			return analysis.OutboundRequest{}, fmt.Errorf("%w: %s needs field %q", analysis.ErrMissingRequiredInput, d.ID, name)
		}
		req.ExtraFields[name] = coerce(source, v)
	}
	if file != nil && file.DataURI != "" {
		req.FileData = file.DataURI
		req.FileName = file.Name
	}
	return req, nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// form inputs arrive as strings; numeric fields go out as JSON numbers when they parse
func coerce(source analysis.FieldSource, v any) any {
	s, ok := v.(string)
	if !ok || source != analysis.SourceNumber {
		return v
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return v
}
