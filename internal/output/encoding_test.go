package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"rustdex/internal/flatten"
)

func TestDeterministicEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		wantJSON string
	}{
		{
			name: "simple struct with floats",
			input: struct {
				Name  string  `json:"name"`
				Ratio float64 `json:"ratio"`
				Count int     `json:"count"`
			}{
				Name:  "const",
				Ratio: 0.123456789,
				Count: 42,
			},
			wantJSON: `{"count":42,"name":"const","ratio":0.123457}`,
		},
		{
			name: "struct with omitted nil fields",
			input: struct {
				Name  string   `json:"name"`
				Ratio *float64 `json:"ratio,omitempty"`
			}{
				Name:  "const",
				Ratio: nil,
			},
			wantJSON: `{"name":"const"}`,
		},
		{
			name: "struct with zero values and omitempty",
			input: struct {
				Name  string `json:"name"`
				Count int    `json:"count,omitempty"`
			}{
				Name:  "const",
				Count: 0,
			},
			wantJSON: `{"name":"const"}`,
		},
		{
			name: "map with sorted keys",
			input: map[string]interface{}{
				"zebra": "last",
				"alpha": "first",
				"beta":  "second",
			},
			wantJSON: `{"alpha":"first","beta":"second","zebra":"last"}`,
		},
		{
			name: "record with empty trait fields omitted",
			input: flatten.Record{
				Kind:      flatten.KindFunction,
				ID:        "0:1",
				Name:      "swap",
				Path:      "core::mem",
				Decl:      "fn swap();",
				Stability: flatten.Stable,
			},
			wantJSON: `{"decl":"fn swap();","fnCount":0,"hasGenerics":false,"id":"0:1","isAsync":false,"isConst":false,"kind":"function","name":"swap","path":"core::mem","stability":"stable"}`,
		},
		{
			name: "timestamps normalize to UTC",
			input: struct {
				At time.Time `json:"at"`
			}{
				At: time.Date(2026, 8, 20, 12, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			},
			wantJSON: `{"at":"2026-08-20T10:00:00Z"}`,
		},
		{
			name:     "nil value",
			input:    nil,
			wantJSON: `null`,
		},
		{
			name:     "empty slice returns null",
			input:    []string{},
			wantJSON: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeterministicEncode(tt.input)
			if err != nil {
				t.Fatalf("DeterministicEncode() error = %v", err)
			}

			var gotObj, wantObj interface{}
			if err := json.Unmarshal(got, &gotObj); err != nil {
				t.Fatalf("Failed to unmarshal got: %v", err)
			}
			if err := json.Unmarshal([]byte(tt.wantJSON), &wantObj); err != nil {
				t.Fatalf("Failed to unmarshal want: %v", err)
			}

			gotJSON, _ := json.Marshal(gotObj)
			wantJSON, _ := json.Marshal(wantObj)

			if !bytes.Equal(gotJSON, wantJSON) {
				t.Errorf("DeterministicEncode() = %s, want %s", string(got), tt.wantJSON)
			}
		})
	}
}

func TestDeterministicEncodeConsistency(t *testing.T) {
	data := map[string]interface{}{
		"records": []flatten.Record{
			{Kind: flatten.KindTrait, ID: "0:4", Name: "Iterator", Path: "core::iter", Stability: flatten.Unstable, FnCount: 3},
			{Kind: flatten.KindFunction, ID: "0:2", Name: "swap", Path: "core::mem", Stability: flatten.Stable, IsConst: true},
		},
		"stats": map[string]interface{}{
			"matched": 120,
			"ratio":   0.123456789,
		},
	}

	var results [][]byte
	for i := 0; i < 10; i++ {
		encoded, err := DeterministicEncode(data)
		if err != nil {
			t.Fatalf("DeterministicEncode() error = %v", err)
		}
		results = append(results, encoded)
	}

	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Errorf("Encoding is not deterministic:\nrun 0: %s\nrun %d: %s", string(results[0]), i, string(results[i]))
		}
	}
}

func TestDeterministicEncodeIndented(t *testing.T) {
	data := map[string]interface{}{
		"decl":  "fn swap<T>(x: &mut T, y: &mut T)",
		"ratio": 0.123456789,
	}

	got, err := DeterministicEncodeIndented(data, "  ")
	if err != nil {
		t.Fatalf("DeterministicEncodeIndented() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}

	if !bytes.Contains(got, []byte("\n")) {
		t.Error("DeterministicEncodeIndented() should produce indented output")
	}
	if !bytes.Contains(got, []byte(`fn swap<T>(x: &mut T, y: &mut T)`)) {
		t.Errorf("Declarations should not be HTML-escaped: %s", string(got))
	}
}

func TestNestedResponseShape(t *testing.T) {
	type response struct {
		Records []flatten.Record       `json:"records,omitempty"`
		Stats   map[string]interface{} `json:"stats"`
		Errors  []string               `json:"errors,omitempty"`
	}

	r := response{
		Records: []flatten.Record{
			{Kind: flatten.KindImpl, ID: "0:9", Name: "Display", Path: "core::num", Stability: flatten.Stable, TraitPath: "core::fmt::Display", TraitForeign: true},
		},
		Stats: map[string]interface{}{
			"ratio":   0.987654321,
			"matched": 7,
		},
		Errors: nil, // should be omitted
	}

	result1, err := DeterministicEncode(r)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}
	result2, err := DeterministicEncode(r)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}

	if !bytes.Equal(result1, result2) {
		t.Errorf("nested encoding is not deterministic:\n%s\nvs\n%s", string(result1), string(result2))
	}
	if bytes.Contains(result1, []byte("errors")) {
		t.Error("Nil errors field should be omitted")
	}
	if !bytes.Contains(result1, []byte(`"traitForeign":true`)) {
		t.Errorf("trait fields lost: %s", string(result1))
	}
}
