package vault

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		in       string
		wantPath string
		wantKey  string
		wantErr  bool
	}{
		{"vault:secret/formrelay#db_password", "secret/formrelay", "db_password", false},
		{"vault:kv/apps/forms/prod#token", "kv/apps/forms/prod", "token", false},
		{"vault:secret#key", "", "", true},       // no relative path
		{"vault:secret/formrelay", "", "", true}, // no key
		{"vault:secret/formrelay#", "", "", true},
		{"plain-value", "", "", true},
	}
	for _, tc := range cases {
		p, k, err := ParseRef(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrBadRef) {
				t.Errorf("ParseRef(%q) err = %v; want ErrBadRef", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRef(%q) unexpected err: %v", tc.in, err)
			continue
		}
		if p != tc.wantPath || k != tc.wantKey {
			t.Errorf("ParseRef(%q) = %q, %q; want %q, %q", tc.in, p, k, tc.wantPath, tc.wantKey)
		}
	}
}

func TestIsRef(t *testing.T) {
	if !IsRef("vault:a/b#c") {
		t.Error("expected vault: prefix to be a ref")
	}
	if IsRef("mysql://vault:x@host") {
		t.Error("prefix must be at the start")
	}
}
