package xmlrpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const statusResponse = `<?xml version="1.0" encoding="utf-8"?>
<methodResponse>
  <params>
    <param>
      <value><string>OK</string></value>
    </param>
  </params>
</methodResponse>`

const faultResponse = `<?xml version="1.0" encoding="utf-8"?>
<methodResponse>
  <fault>
    <value>
      <struct>
        <member><name>faultCode</name><value><int>623</int></value></member>
        <member><name>faultString</name><value><string>Method not found</string></value></member>
      </struct>
    </value>
  </fault>
</methodResponse>`

const recordsResponse = `<?xml version="1.0" encoding="utf-8"?>
<methodResponse>
  <params>
    <param>
      <value>
        <array>
          <data>
            <value>
              <struct>
                <member><name>type</name><value><string>A</string></value></member>
                <member><name>ttl</name><value><int>3600</int></value></member>
                <member><name>priority</name><value><int>1</int></value></member>
                <member><name>rdata</name><value><string>192.0.2.10</string></value></member>
                <member><name>record_id</name><value><int>12345</int></value></member>
              </struct>
            </value>
          </data>
        </array>
      </value>
    </param>
  </params>
</methodResponse>`

func TestClient_Call_StringResult(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
			t.Errorf("unexpected content type: %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, statusResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	v, err := client.Call(context.Background(), "addSubdomain", "user", "pass", "example.com", "lab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Kind != KindString || v.Str != "OK" {
		t.Errorf("expected string OK, got kind=%s value=%+v", v.Kind, v)
	}
	if !strings.Contains(gotBody, "<methodName>addSubdomain</methodName>") {
		t.Errorf("method name missing from request body: %s", gotBody)
	}
	if !strings.Contains(gotBody, "<value><string>user</string></value>") {
		t.Errorf("credentials not passed as leading parameters: %s", gotBody)
	}
}

func TestClient_Call_Fault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, faultResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Call(context.Background(), "noSuchMethod")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *Fault, got %T: %v", err, err)
	}
	if fault.Code != 623 {
		t.Errorf("expected fault code 623, got %d", fault.Code)
	}
	if fault.Message != "Method not found" {
		t.Errorf("unexpected fault message: %q", fault.Message)
	}
}

func TestClient_Call_StructArrayResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, recordsResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	v, err := client.Call(context.Background(), "getZoneRecords", "user", "pass", "example.com", "lab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Kind != KindArray {
		t.Fatalf("expected array, got %s", v.Kind)
	}
	if len(v.Array) != 1 {
		t.Fatalf("expected 1 element, got %d", len(v.Array))
	}

	rec := v.Array[0]
	if rec.StringMember("type") != "A" {
		t.Errorf("unexpected type: %q", rec.StringMember("type"))
	}
	if rec.IntMember("ttl") != 3600 {
		t.Errorf("unexpected ttl: %d", rec.IntMember("ttl"))
	}
	if rec.IntMember("record_id") != 12345 {
		t.Errorf("unexpected record_id: %d", rec.IntMember("record_id"))
	}
}

func TestClient_Call_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Call(context.Background(), "addSubdomain")
	if err == nil {
		t.Error("expected error for 500 response, got nil")
	}
}

func TestClient_Call_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	_, err := client.Call(ctx, "addSubdomain")
	if err == nil {
		t.Error("expected error for cancelled context, got nil")
	}
}

func TestParseResponse_BareString(t *testing.T) {
	v, err := parseResponse([]byte(`<?xml version="1.0"?>
<methodResponse><params><param><value>OK</value></param></params></methodResponse>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindString || v.Str != "OK" {
		t.Errorf("expected bare string OK, got %+v", v)
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed XML", `<methodResponse><params>`},
		{"no params", `<methodResponse></methodResponse>`},
		{"empty params", `<methodResponse><params></params></methodResponse>`},
		{"invalid int", `<methodResponse><params><param><value><int>abc</int></value></param></params></methodResponse>`},
		{"invalid boolean", `<methodResponse><params><param><value><boolean>maybe</boolean></value></param></params></methodResponse>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseResponse([]byte(tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
