package main

import (
	"testing"
)

func Test_splitList(t *testing.T) {
	t.Parallel()

	if got := splitList(""); got != nil {
		t.Fatalf("empty input: want nil, got %v", got)
	}
	got := splitList("a, b ,,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("splitList: %v", got)
	}
}

func Test_parseVarSpecs(t *testing.T) {
	t.Parallel()

	vars, err := parseVarSpecs("otp:number:1,name:text:2")
	if err != nil {
		t.Fatalf("parseVarSpecs: %v", err)
	}
	if len(vars) != 2 || vars[0].Name != "otp" || vars[0].Position != 1 || vars[1].Type != "text" {
		t.Fatalf("mismatch: %+v", vars)
	}

	for _, bad := range []string{
		"otp:number",        // missing position
		"otp:number:x",      // non-numeric position
		"otp:number:0",      // position must be positive
		":number:1",         // empty name
		"otp:binary:1",      // unknown type
		"a:text:1,b:text:1", // duplicate position
	} {
		if _, err := parseVarSpecs(bad); err == nil {
			t.Fatalf("want error for %q", bad)
		}
	}
}

func Test_parseVarValues(t *testing.T) {
	t.Parallel()

	vals, err := parseVarValues("otp=1234,name=Ravi")
	if err != nil {
		t.Fatalf("parseVarValues: %v", err)
	}
	if vals["otp"] != "1234" || vals["name"] != "Ravi" {
		t.Fatalf("mismatch: %v", vals)
	}
	if _, err := parseVarValues("noequals"); err == nil {
		t.Fatalf("want error for missing =")
	}
	if _, err := parseVarValues("=v"); err == nil {
		t.Fatalf("want error for empty name")
	}
}

func Test_validMobile(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"+911234567890", "9876543210"} {
		if !validMobile(ok) {
			t.Fatalf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "abc", "+12", "12345678901234567890"} {
		if validMobile(bad) {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}
