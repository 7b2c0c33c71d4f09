// Package errs defines the fatal error taxonomy construction of a
// model.GlobalEnv can raise (spec.md §7). Every exported Err* value is a
// sentinel checkable with errors.Is; internal/loader always wraps it with
// github.com/pkg/errors for call-site context (involved ids, names, and
// ordinals) before returning it.
package errs

import "errors"

var (
	// ErrDuplicateNonFrameworkVersion: two candidate root packages share an id.
	ErrDuplicateNonFrameworkVersion = errors.New("duplicate non-framework package version")

	// ErrModuleDeserialize: raw module bytes fail format validation.
	ErrModuleDeserialize = errors.New("module deserialization failed")

	// ErrModuleNameMismatch: a module's stored name does not match its self-name.
	ErrModuleNameMismatch = errors.New("module name mismatch")

	// ErrUnknownLinkTarget: a linkage entry names an unknown package id.
	ErrUnknownLinkTarget = errors.New("unknown link target")

	// ErrMissingLinkage: a cross-package reference has no linkage entry.
	ErrMissingLinkage = errors.New("missing linkage entry")

	// ErrBackwardVersionDependency: a module depends on a prior version of
	// its own logical package.
	ErrBackwardVersionDependency = errors.New("backward version dependency")

	// ErrUnresolvedStruct: a struct handle or definition resolves to a
	// missing environment key.
	ErrUnresolvedStruct = errors.New("unresolved struct")

	// ErrUnresolvedCall: a function handle resolves to a missing
	// environment key.
	ErrUnresolvedCall = errors.New("unresolved call")

	// ErrMalformedSignature: a signature token is not a recognized kind.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrUnsupportedOpcode: a bytecode instruction is not a recognized op.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrNativeFieldNotSupported: a non-framework native struct was
	// observed where fields were required.
	ErrNativeFieldNotSupported = errors.New("native field not supported")

	// ErrVersionTopologyInvalid: a version-chain invariant failed.
	ErrVersionTopologyInvalid = errors.New("version topology invalid")
)
