package jsonx

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "bare object", input: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "inline fence", input: "```json{\"a\":1}```", want: `{"a":1}`},
		{name: "prose around", input: "Sure! Here it is: {\"a\":{\"b\":2}} hope it helps", want: `{"a":{"b":2}}`},
		{name: "no object", input: "I cannot help with that.", wantErr: ErrNoJSON},
		{name: "empty", input: "", wantErr: ErrNoJSON},
		{name: "reversed braces", input: "} nope {", wantErr: ErrNoJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
	}

	t.Run("strict", func(t *testing.T) {
		var p payload
		if err := Decode("```json\n{\"name\":\"x\",\"count\":2,\"tags\":[\"a\"]}\n```", &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "x" || p.Count != 2 || len(p.Tags) != 1 {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("lenient trailing comma", func(t *testing.T) {
		var p payload
		if err := Decode(`{"name": "y", "count": 3, "tags": ["a", "b",],}`, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "y" || p.Count != 3 || len(p.Tags) != 2 {
			t.Fatalf("unexpected payload: %+v", p)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		var p payload
		err := Decode(`{"name": }`, &p)
		if !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("got %v, want ErrInvalidJSON", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		var p payload
		if err := Decode("nothing here", &p); !errors.Is(err, ErrNoJSON) {
			t.Fatalf("got %v, want ErrNoJSON", err)
		}
	})
}
