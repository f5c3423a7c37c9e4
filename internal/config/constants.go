// Package config is the single source of truth for names and numbers shared
// across the macro expander, analyzer, and emitter: the fixed special-form
// list, the built-in macro set, the invoke-dispatch threshold, and the
// built-in type-tag allowlist.
package config

// SourceFileExt is the default extension tried first when resolving a
// namespace to a file on the search path (spec.md §6).
const SourceFileExt = ".frm"

// SourceFileExtensions are all extensions the file driver tries, in order,
// for a given namespace segment.
var SourceFileExtensions = []string{".frm", ".frmx"}

// TargetFileExt is the extension appended to generated target-language files.
const TargetFileExt = ".dart"

// GeneratedSubdir is the subdirectory of the destination directory that
// holds generated artifacts (spec.md §6).
const GeneratedSubdir = "gen"

// InvokeThreshold (T) separates direct positional dispatch from packed-rest
// dispatch in invoke-style function lowering (spec.md §4.3). Fixed at 10.
const InvokeThreshold = 10

// FnDispatchInterface is the core library's function-dispatch interface
// every invoke-style object implements, and the type a runtime-unknown
// callee is tested against before dispatching by arity (spec.md §4.3, §4.4).
const FnDispatchInterface = "IFn"

// FixedSpecials is the closed set of head symbols the macro expander leaves
// untouched (spec.md §4.2). Anything not in this list and not shadowed by an
// env binding is a macro-expansion candidate.
var FixedSpecials = map[string]bool{
	".":       true,
	"set!":    true,
	"throw":   true,
	"new":     true,
	"ns":      true,
	"try":     true,
	"case*":   true,
	"quote":   true,
	"do":      true,
	"let*":    true,
	"loop*":   true,
	"recur":   true,
	"if":      true,
	"fn*":     true,
	"def":     true,
	"reify*":  true,
	"deftype*": true,
	"is?":     true,
}

// BuiltinMacros is the closed set of user-unextendable macros the expander
// ships with (spec.md §4.2). No macro outside this set is supported.
var BuiltinMacros = map[string]bool{
	"ns":             true,
	"reify":          true,
	"deftype":        true,
	"definterface":   true,
	"defprotocol":    true,
	"case":           true,
	"are":            true,
	"is":             true,
	"testing":        true,
	"deftest":        true,
	"try-expr":       true,
	"defrunner-main": true,
}

// BuiltinTypeTags is the hard-coded allowlist consulted by the type-tag
// resolver before falling back to NR lookups (spec.md §9 Open Questions).
var BuiltinTypeTags = map[string]bool{
	"Function": true,
	"void":     true,
	"dynamic":  true,
}

// CoreNamespace is the name of the namespace the registry seeds at process
// start (spec.md §3 Lifecycle).
const CoreNamespace = "core"
