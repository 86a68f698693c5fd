package dep

import "fmt"

// Kind is the closed category of a dependency-tracked computation.
//
// The kind set is fixed at compile time of the engine - it is not
// user-extensible. Capability queries (HasParams, IsEvalAlways,
// CanReconstructQueryKey) dispatch through an exhaustive table; an
// out-of-range kind is memory/logic corruption and panics.
type Kind uint16

const (
	// KindSessionOptions covers the compiler invocation's option set.
	// Options arrive from outside the tracking system, so this kind is
	// eval-always: never reused, always recomputed.
	KindSessionOptions Kind = iota

	// KindEnvVar tracks a read of a process environment variable.
	// Environment is untracked external state: eval-always.
	KindEnvVar

	// KindSourceFile tracks the contents of one input file.
	KindSourceFile

	// KindParse tracks the parse result of one module.
	KindParse

	// KindResolve tracks name resolution of one item.
	KindResolve

	// KindTypeCheck tracks the type-check result of one item.
	KindTypeCheck

	// KindCodegen tracks the generated code of one item.
	KindCodegen

	// KindModuleGraph is the whole-program module structure.
	// There is exactly one such node per session: no parameters.
	KindModuleGraph

	numKinds
)

// NumKinds is the number of defined kinds. Exposed for table-driven tests
// and for sizing per-kind statistics.
const NumKinds = int(numKinds)

type kindFlags struct {
	name               string
	hasParams          bool
	evalAlways         bool
	reconstructibleKey bool
}

var kindTable = [numKinds]kindFlags{
	KindSessionOptions: {name: "SessionOptions", hasParams: false, evalAlways: true},
	KindEnvVar:         {name: "EnvVar", hasParams: true, evalAlways: true, reconstructibleKey: true},
	KindSourceFile:     {name: "SourceFile", hasParams: true, reconstructibleKey: true},
	KindParse:          {name: "Parse", hasParams: true, reconstructibleKey: true},
	KindResolve:        {name: "Resolve", hasParams: true},
	KindTypeCheck:      {name: "TypeCheck", hasParams: true},
	KindCodegen:        {name: "Codegen", hasParams: true},
	KindModuleGraph:    {name: "ModuleGraph", hasParams: false},
}

func (k Kind) flags() kindFlags {
	if int(k) >= NumKinds {
		panic(fmt.Sprintf("dep: invalid kind %d", uint16(k)))
	}
	return kindTable[k]
}

// String returns the kind's stable name.
func (k Kind) String() string {
	return k.flags().name
}

// Valid reports whether k is a defined kind. Decoders use this to reject
// corrupt kind tags before any table dispatch can panic.
func (k Kind) Valid() bool {
	return int(k) < NumKinds
}

// HasParams reports whether nodes of this kind are parameterized by a key.
// Parameterless kinds are singletons per session and hash to the zero
// sentinel fingerprint.
func (k Kind) HasParams() bool {
	return k.flags().hasParams
}

// IsEvalAlways reports whether this kind's results depend on untracked
// external state. Eval-always nodes bypass all reuse logic: they are
// unconditionally recomputed and colored red.
func (k Kind) IsEvalAlways() bool {
	return k.flags().evalAlways
}

// CanReconstructQueryKey reports whether the original query key can be
// recovered from the node for diagnostics.
func (k Kind) CanReconstructQueryKey() bool {
	return k.flags().reconstructibleKey
}

// KindFromName resolves a stable kind name back to its Kind.
// Used by tooling and scenario fixtures.
func KindFromName(name string) (Kind, error) {
	for k := Kind(0); k < numKinds; k++ {
		if kindTable[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown dependency kind %q", name)
}
