package feed

import "testing"

func TestParamsInt(t *testing.T) {
	p := Params{"n": 5, "f": 7.0, "s": "9", "bad": "nope", "wrong": []any{1}}

	if v, err := p.Int("n", 1); err != nil || v != 5 {
		t.Errorf("Int(n) = %d, %v", v, err)
	}
	if v, err := p.Int("f", 1); err != nil || v != 7 {
		t.Errorf("Int(f) = %d, %v", v, err)
	}
	if v, err := p.Int("s", 1); err != nil || v != 9 {
		t.Errorf("Int(s) = %d, %v", v, err)
	}
	if v, err := p.Int("missing", 42); err != nil || v != 42 {
		t.Errorf("Int(missing) = %d, %v", v, err)
	}
	if _, err := p.Int("bad", 1); err == nil {
		t.Error("expected error for unparseable string")
	}
	if _, err := p.Int("wrong", 1); err == nil {
		t.Error("expected error for wrong type")
	}
}

func TestParamsStr(t *testing.T) {
	p := Params{"s": "hello", "n": 3}
	if v, err := p.Str("s", ""); err != nil || v != "hello" {
		t.Errorf("Str(s) = %q, %v", v, err)
	}
	if v, err := p.Str("missing", "dflt"); err != nil || v != "dflt" {
		t.Errorf("Str(missing) = %q, %v", v, err)
	}
	if _, err := p.Str("n", ""); err == nil {
		t.Error("expected error for int value")
	}
}

func TestParamsStrSlice(t *testing.T) {
	p := Params{
		"one":   "a",
		"many":  []any{"a", "b"},
		"mixed": []any{"a", 2},
	}
	if v, err := p.StrSlice("one"); err != nil || len(v) != 1 || v[0] != "a" {
		t.Errorf("StrSlice(one) = %v, %v", v, err)
	}
	if v, err := p.StrSlice("many"); err != nil || len(v) != 2 {
		t.Errorf("StrSlice(many) = %v, %v", v, err)
	}
	if v, err := p.StrSlice("missing"); err != nil || v != nil {
		t.Errorf("StrSlice(missing) = %v, %v", v, err)
	}
	if _, err := p.StrSlice("mixed"); err == nil {
		t.Error("expected error for mixed list")
	}
}
