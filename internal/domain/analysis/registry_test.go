package analysis

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
)

func testDescriptors() []Descriptor {
	out := make([]Descriptor, 0, len(KnownIDs))
	for _, id := range KnownIDs {
		d := Descriptor{ID: id, Title: string(id), RemoteTarget: "https://wf.example/webhook/" + string(id)}
		switch id {
		case IDTaxProjection:
			d.ExtraFields = map[string]FieldSource{"devreden_kdv": SourceNumber}
		case IDInvoiceOCR, IDCreativeScore:
			d.RequiresFile, d.FileCategory = true, FileImage
		case IDBulkImport:
			d.RequiresFile, d.FileCategory = true, FileDocument
		}
		out = append(out, d)
	}
	return out
}

func TestLookupEverySupportedID(t *testing.T) {
	reg, err := NewRegistry(testDescriptors())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	for _, id := range KnownIDs {
		d, err := reg.Lookup(id)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", id, err)
		}
		u, err := url.Parse(d.RemoteTarget)
		if err != nil || u.Host == "" {
			t.Fatalf("Lookup(%s) remote target %q is not a URL", id, d.RemoteTarget)
		}
	}
	if got := len(reg.List()); got != len(KnownIDs) {
		t.Fatalf("List() = %d entries", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	reg, _ := NewRegistry(testDescriptors())
	if _, err := reg.Lookup("weather"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg, _ := NewRegistry(testDescriptors())
	d, _ := reg.Lookup(IDTaxProjection)
	d.ExtraFields["sneaky"] = SourceText
	again, _ := reg.Lookup(IDTaxProjection)
	if _, ok := again.ExtraFields["sneaky"]; ok {
		t.Fatalf("registry must not be mutable through Lookup")
	}
}

func TestNewRegistryRejectsBadDescriptors(t *testing.T) {
	tests := map[string][]Descriptor{
		"duplicate":      {{ID: IDCost, RemoteTarget: "https://a.example"}, {ID: IDCost, RemoteTarget: "https://b.example"}},
		"empty target":   {{ID: IDCost}},
		"bad scheme":     {{ID: IDCost, RemoteTarget: "ftp://a.example"}},
		"reserved field": {{ID: IDCost, RemoteTarget: "https://a.example", ExtraFields: map[string]FieldSource{"user_id": SourceText}}},
		"no category":    {{ID: IDCost, RemoteTarget: "https://a.example", RequiresFile: true}},
		"empty id":       {{RemoteTarget: "https://a.example"}},
	}
	for name, descs := range tests {
		if _, err := NewRegistry(descs); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestOutboundRequestBody(t *testing.T) {
	req := OutboundRequest{
		TargetURL:   "https://wf.example/tax",
		UserID:      "u1",
		Email:       "a@b.c",
		ExtraFields: map[string]any{"devreden_kdv": 10.5},
	}
	b, err := req.Body()
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 || got["user_id"] != "u1" || got["email"] != "a@b.c" || got["devreden_kdv"] != 10.5 {
		t.Fatalf("body = %s", b)
	}
}

func TestAmountJSON(t *testing.T) {
	b, _ := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: Some(0)})
	if string(b) != `{"a":0,"b":null}` {
		t.Fatalf("got %s", b)
	}
}
