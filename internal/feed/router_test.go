package feed

import (
	"context"
	"testing"
)

func TestExpandPlaceholders(t *testing.T) {
	t.Setenv("PAPERBOT_TEST_KEY", "sekrit")

	in := map[string]any{
		"api_key": "${PAPERBOT_TEST_KEY}",
		"unset":   "${PAPERBOT_TEST_UNSET_VAR}",
		"plain":   "no-vars-here",
		"mixed":   "pre-${PAPERBOT_TEST_KEY}-post",
		"num":     7,
		"nested": map[string]any{
			"inner": "${PAPERBOT_TEST_KEY}",
			"list":  []any{"${PAPERBOT_TEST_KEY}", 1},
		},
	}
	out := ExpandPlaceholders(in).(map[string]any)

	if out["api_key"] != "sekrit" {
		t.Errorf("api_key = %v", out["api_key"])
	}
	if out["unset"] != "" {
		t.Errorf("unset var should substitute empty, got %v", out["unset"])
	}
	if out["plain"] != "no-vars-here" {
		t.Errorf("plain = %v", out["plain"])
	}
	if out["mixed"] != "pre-sekrit-post" {
		t.Errorf("mixed = %v", out["mixed"])
	}
	if out["num"] != 7 {
		t.Errorf("num = %v", out["num"])
	}
	nested := out["nested"].(map[string]any)
	if nested["inner"] != "sekrit" {
		t.Errorf("nested inner = %v", nested["inner"])
	}
	list := nested["list"].([]any)
	if list[0] != "sekrit" || list[1] != 1 {
		t.Errorf("nested list = %v", list)
	}
}

func TestRouteParams(t *testing.T) {
	t.Setenv("PAPERBOT_TEST_KEY", "sekrit")

	reg := NewRegistry()
	reg.Register("alpha", func() Source { return stubSource{name: "alpha"} })
	reg.Register("beta", func() Source { return stubSource{name: "beta"} })

	routed := RouteParams(reg, map[string]map[string]any{
		"alpha":   {"api_key": "${PAPERBOT_TEST_KEY}", "per_page": 50},
		"unknown": {"ignored": true}, // not registered: dropped
	})

	if len(routed) != 2 {
		t.Fatalf("routed %d names, want 2", len(routed))
	}
	if v, _ := routed["alpha"].Str("api_key", ""); v != "sekrit" {
		t.Errorf("alpha api_key = %q", v)
	}
	// unconfigured names still get a usable empty Params
	beta, ok := routed["beta"]
	if !ok {
		t.Fatal("beta missing from routed params")
	}
	if v, err := beta.Int("per_page", 10); err != nil || v != 10 {
		t.Errorf("beta default = %d, %v", v, err)
	}
	if _, ok := routed["unknown"]; ok {
		t.Error("unknown name should not be routed")
	}
}

type stubSource struct {
	name    string
	records []Record
	status  Status
	err     error
	panics  bool
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context, win Window, params Params) (Result, error) {
	if s.panics {
		panic("stub blew up")
	}
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{Status: s.status, Records: s.records}, nil
}
