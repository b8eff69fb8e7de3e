package domnode

import (
	"bytes"
	"testing"
)

func TestTextToBinary_Deterministic(t *testing.T) {
	a, err := TextToBinary(`{"b":1,"a":"x","c":[true,null,1.5]}`)
	if err != nil {
		t.Fatal(err)
	}
	b, err := TextToBinary(`{"c":[true,null,1.5],"a":"x","b":1}`)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("key order changed encoding:\n%x\n%x", a, b)
	}
}

func TestTextToBinary_IntegralNumbers(t *testing.T) {
	bin, err := TextToBinary(`{"nodeId":3.0}`)
	if err != nil {
		t.Fatal(err)
	}
	var tree any
	if err := decMode.Unmarshal(bin, &tree); err != nil {
		t.Fatal(err)
	}
	if _, ok := tree.(map[string]any)["nodeId"].(uint64); !ok {
		t.Errorf("nodeId: got %T, want CBOR integer", tree.(map[string]any)["nodeId"])
	}
}

func TestTextToBinary_Malformed(t *testing.T) {
	for _, in := range []string{`{"nodeId":`, `{} {}`, ``} {
		if _, err := TextToBinary(in); err == nil {
			t.Errorf("TextToBinary(%q): expected error", in)
		}
	}
}
