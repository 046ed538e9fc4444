package domain

import (
	"encoding/json"
	"testing"
)

func TestRequestTaggedState(t *testing.T) {
	var zero Request
	if zero.IsPending() {
		t.Error("zero value must be Idle")
	}
	if zero != Idle() {
		t.Error("zero value and Idle() must be equal")
	}

	r := Pending("http://example.com")
	if !r.IsPending() {
		t.Error("Pending must report pending")
	}
	res, ok := r.Resource()
	if !ok || res != "http://example.com" {
		t.Errorf("Resource() = (%q, %v), want (http://example.com, true)", res, ok)
	}

	// A blank resource cannot be pending.
	if Pending("") != Idle() {
		t.Error("Pending(\"\") must normalize to Idle")
	}

	if _, ok := Idle().Resource(); ok {
		t.Error("Idle().Resource() must report absence")
	}
}

func TestRequestString(t *testing.T) {
	if got := Idle().String(); got != "idle" {
		t.Errorf("Idle().String() = %q", got)
	}
	if got := Pending("mailto:a@b").String(); got != "pending(mailto:a@b)" {
		t.Errorf("Pending().String() = %q", got)
	}
}

func TestRequestJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Request
		want string
	}{
		{"idle", Idle(), `{"pending":false}`},
		{"pending", Pending("https://aretw0.dev"), `{"pending":true,"resource":"https://aretw0.dev"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("marshal = %s, want %s", data, tt.want)
			}

			var out Request
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out != tt.in {
				t.Errorf("round trip = %v, want %v", out, tt.in)
			}
		})
	}
}

func TestRequestUnmarshalNormalizesBlank(t *testing.T) {
	// A pending marker without a resource is malformed input; it must land
	// on Idle rather than an ambiguous half-state.
	var r Request
	if err := json.Unmarshal([]byte(`{"pending":true,"resource":""}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != Idle() {
		t.Errorf("got %v, want Idle", r)
	}
}
