package graph

import (
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"executable", KindExecutable, true},
		{"EXECUTABLE", KindExecutable, true},
		{"static_library", KindStaticLibrary, true},
		{"static-library", KindStaticLibrary, true},
		{"STATIC_LIBRARY", KindStaticLibrary, true},
		{"Shared-Library", KindSharedLibrary, true},
		{"MODULE_LIBRARY", KindModuleLibrary, true},
		{"interface_library", KindInterfaceLibrary, true},
		{"OBJECT_LIBRARY", KindObjectLibrary, true},
		{"UNKNOWN_LIBRARY", KindUnknownLibrary, true},
		{"UTILITY", KindUtility, true},
		{"custom", KindUtility, true},
		{" shared ", KindSharedLibrary, true},
		{"unknown", KindUnknown, true},
		{"library", KindUnknown, false},
		{"", KindUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
		upper := strings.ToUpper(k.String())
		got, ok = ParseKind(upper)
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", upper, got, ok, k)
		}
	}
}

func TestKindStringOutOfRange(t *testing.T) {
	if got := Kind(99).String(); got != "unknown" {
		t.Errorf("Kind(99).String() = %q, want unknown", got)
	}
	if got := Kind(-1).String(); got != "unknown" {
		t.Errorf("Kind(-1).String() = %q, want unknown", got)
	}
}

func TestKindIsLibrary(t *testing.T) {
	libs := map[Kind]bool{
		KindStaticLibrary: true, KindSharedLibrary: true, KindModuleLibrary: true,
		KindInterfaceLibrary: true, KindObjectLibrary: true, KindUnknownLibrary: true,
	}
	for _, k := range Kinds {
		if k.IsLibrary() != libs[k] {
			t.Errorf("%v.IsLibrary() = %v", k, k.IsLibrary())
		}
	}
}

func TestKindNames(t *testing.T) {
	names := KindNames()
	if len(names) != len(Kinds) {
		t.Fatalf("KindNames() has %d entries, want %d", len(names), len(Kinds))
	}
	if names[0] != "unknown" || names[len(names)-1] != "utility" {
		t.Errorf("KindNames() = %v", names)
	}
}

func TestLinkKindString(t *testing.T) {
	tests := map[LinkKind]string{
		LinkDirect:    "direct",
		LinkInterface: "interface",
		LinkPrivate:   "private",
	}
	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", l, got, want)
		}
	}
}

func TestParseLinkKind(t *testing.T) {
	tests := []struct {
		in     string
		want   LinkKind
		wantOK bool
	}{
		{"direct", LinkDirect, true},
		{"PUBLIC", LinkDirect, true},
		{"", LinkDirect, true},
		{"interface", LinkInterface, true},
		{"Private", LinkPrivate, true},
		{"transitive", LinkDirect, false},
	}
	for _, tt := range tests {
		got, ok := ParseLinkKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLinkKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	for _, l := range []LinkKind{LinkDirect, LinkInterface, LinkPrivate} {
		if got, _ := ParseLinkKind(l.String()); got != l {
			t.Errorf("round trip of %v = %v", l, got)
		}
	}
}
