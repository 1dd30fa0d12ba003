package graph

import "strings"

// Kind is the category of a build target.
type Kind int

const (
	// KindUnknown is the fallback for targets whose attributes match no known
	// category. It is the zero value.
	KindUnknown Kind = iota
	KindExecutable
	KindStaticLibrary
	KindSharedLibrary
	KindModuleLibrary
	KindInterfaceLibrary
	KindObjectLibrary
	// KindUnknownLibrary is CMake's IMPORTED UNKNOWN library type. Unlike
	// KindUnknown it is a recognized category.
	KindUnknownLibrary
	// KindUtility is a custom target (add_custom_target).
	KindUtility
)

// Kinds lists every Kind in declaration order, KindUnknown first.
var Kinds = []Kind{
	KindUnknown,
	KindExecutable,
	KindStaticLibrary,
	KindSharedLibrary,
	KindModuleLibrary,
	KindInterfaceLibrary,
	KindObjectLibrary,
	KindUnknownLibrary,
	KindUtility,
}

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindExecutable:       "executable",
	KindStaticLibrary:    "static_library",
	KindSharedLibrary:    "shared_library",
	KindModuleLibrary:    "module_library",
	KindInterfaceLibrary: "interface_library",
	KindObjectLibrary:    "object_library",
	KindUnknownLibrary:   "unknown_library",
	KindUtility:          "utility",
}

var kindAliases = map[string]Kind{
	"custom":        KindUtility,
	"custom_target": KindUtility,
	"exe":           KindExecutable,
	"static":        KindStaticLibrary,
	"shared":        KindSharedLibrary,
	"module":        KindModuleLibrary,
	"interface":     KindInterfaceLibrary,
	"object":        KindObjectLibrary,
}

// String returns the lower snake case CMake type name (e.g. "static_library").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// IsLibrary reports whether k is one of the library categories.
func (k Kind) IsLibrary() bool {
	switch k {
	case KindStaticLibrary, KindSharedLibrary, KindModuleLibrary,
		KindInterfaceLibrary, KindObjectLibrary, KindUnknownLibrary:
		return true
	}
	return false
}

// ParseKind converts a kind name to a Kind. Matching ignores case and treats
// '-' and '_' alike, so "STATIC_LIBRARY", "static_library" and
// "static-library" are equivalent. A few short aliases such as "custom" and
// "shared" are accepted too. Returns false for unrecognized names.
func ParseKind(s string) (Kind, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range kindNames {
		if name == norm {
			return Kind(k), true
		}
	}
	if k, ok := kindAliases[norm]; ok {
		return k, true
	}
	return KindUnknown, false
}

// KindNames returns the canonical name of every Kind.
func KindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = k.String()
	}
	return names
}

// LinkKind distinguishes how a dependency was declared.
type LinkKind int

const (
	// LinkDirect is a PUBLIC (or plain) link dependency.
	LinkDirect LinkKind = iota
	// LinkInterface is an INTERFACE (usage requirement only) dependency.
	LinkInterface
	// LinkPrivate is a PRIVATE link dependency.
	LinkPrivate
)

func (l LinkKind) String() string {
	switch l {
	case LinkInterface:
		return "interface"
	case LinkPrivate:
		return "private"
	default:
		return "direct"
	}
}

// ParseLinkKind is the inverse of [LinkKind.String]. It also accepts the
// CMake keywords PUBLIC, INTERFACE and PRIVATE, case-insensitively.
func ParseLinkKind(s string) (LinkKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "public", "":
		return LinkDirect, true
	case "interface":
		return LinkInterface, true
	case "private":
		return LinkPrivate, true
	}
	return LinkDirect, false
}
