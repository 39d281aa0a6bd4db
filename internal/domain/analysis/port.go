package analysis

import (
	"context"
	"encoding/json"
)

// Encoder port: turns an uploaded file into its transport form.
type Encoder interface {
	Encode(name string, data []byte, category FileCategory) (EncodedFile, error)
}

// Relayer port: performs the outbound call and returns the raw JSON body.
type Relayer interface {
	Relay(ctx context.Context, req OutboundRequest) (json.RawMessage, error)
}
