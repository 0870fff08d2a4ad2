package canonicalize

import (
	"encoding/json"
	"testing"
)

func FuzzJCS(f *testing.F) {
	f.Add([]byte(`{"a":1,"b":2}`))
	f.Add([]byte(`{"z":{"y":"foo","x":"bar"},"a":1}`))
	f.Add([]byte(`{"html":"<script>alert('x')</script> &"}`))
	f.Add([]byte(`{"num":123.456,"bool":true,"null":null}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"unicode":"こんにちは"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			t.Skip("invalid JSON input")
			return
		}

		b1, err := JCS(v)
		if err != nil {
			// Some valid JSON values are not canonically representable.
			return
		}
		b2, err := JCS(v)
		if err != nil {
			t.Fatal("JCS errored on second call but not first")
		}
		if string(b1) != string(b2) {
			t.Fatalf("non-deterministic canonical form: %s vs %s", b1, b2)
		}

		var round any
		if err := json.Unmarshal(b1, &round); err != nil {
			t.Fatalf("canonical form is not valid JSON: %v", err)
		}
	})
}
