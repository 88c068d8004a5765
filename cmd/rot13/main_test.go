package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRotate_Roundtrip(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello, World!", "Uryyb, Jbeyq!"},
		{"uryyb", "hello"},
		{"1234 \t\n", "1234 \t\n"},
		{"naïve", "anïvr"}, // only ASCII letters rotate
	}
	for _, tc := range cases {
		var out bytes.Buffer
		if err := run(strings.NewReader(tc.in), &out); err != nil {
			t.Fatalf("run(%q): %v", tc.in, err)
		}
		if out.String() != tc.want {
			t.Errorf("rot13(%q) = %q, want %q", tc.in, out.String(), tc.want)
		}
	}
}

func TestRotate_Involution(t *testing.T) {
	in := "The Quick Brown Fox Jumps Over The Lazy Dog 0123456789"
	var once, twice bytes.Buffer
	if err := run(strings.NewReader(in), &once); err != nil {
		t.Fatal(err)
	}
	if err := run(bytes.NewReader(once.Bytes()), &twice); err != nil {
		t.Fatal(err)
	}
	if twice.String() != in {
		t.Fatalf("double rot13 = %q, want original %q", twice.String(), in)
	}
}

func TestCliMain_Version(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := cliMain([]string{"--version"}, strings.NewReader(""), &out, &errBuf); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "rot13 version") {
		t.Fatalf("version output = %q", out.String())
	}
}
