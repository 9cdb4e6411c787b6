// Package model defines the value objects and entities shared across the
// Calvin pipeline: Scope, Target, AssetKind, ContentHash, SafePath,
// LockfileNamespace, SecurityMode, Asset, and OutputFile. These types serve
// as the data backbone -- parsing, layer merge, compilation, planning, and
// execution all operate on the same DTOs defined here.
//
// This package has zero dependency on any other internal package; it
// contains only data types and lightweight validation helpers, no business
// logic.
package model

import "fmt"

// Scope identifies whether an Asset or OutputFile targets the project
// directory or the invoking user's home directory.
type Scope string

const (
	// ScopeProject is the default scope: artifacts live under the project.
	ScopeProject Scope = "project"
	// ScopeUser places artifacts under the user's home directory.
	ScopeUser Scope = "user"
)

// Valid reports whether s is a recognized Scope value.
func (s Scope) Valid() bool {
	switch s {
	case ScopeProject, ScopeUser:
		return true
	default:
		return false
	}
}

// Target identifies one of the five supported AI-coding-assistant platforms.
type Target string

const (
	TargetClaudeCode  Target = "claude-code"
	TargetCursor      Target = "cursor"
	TargetVSCode      Target = "vscode"
	TargetAntigravity Target = "antigravity"
	TargetCodex       Target = "codex"
)

// AllTargets lists every concrete Target in a stable order. Used when a run
// or asset configuration says "all".
func AllTargets() []Target {
	return []Target{TargetClaudeCode, TargetCursor, TargetVSCode, TargetAntigravity, TargetCodex}
}

// Valid reports whether t is a recognized Target value.
func (t Target) Valid() bool {
	for _, v := range AllTargets() {
		if v == t {
			return true
		}
	}
	return false
}

// AssetKind identifies the category of a parsed prompt asset.
type AssetKind string

const (
	KindPolicy AssetKind = "policy"
	KindAction AssetKind = "action"
	KindAgent  AssetKind = "agent"
	KindSkill  AssetKind = "skill"
)

// Valid reports whether k is a recognized AssetKind value.
func (k AssetKind) Valid() bool {
	switch k {
	case KindPolicy, KindAction, KindAgent, KindSkill:
		return true
	default:
		return false
	}
}

// KindFromPathSegment infers an AssetKind from the top-level PromptPack
// directory a source file lives under, per spec section 4.1:
// policies/ -> policy, actions/ -> action, agents/ -> agent,
// skills/ -> skill, anything else -> action.
func KindFromPathSegment(segment string) AssetKind {
	switch segment {
	case "policies":
		return KindPolicy
	case "actions":
		return KindAction
	case "agents":
		return KindAgent
	case "skills":
		return KindSkill
	default:
		return KindAction
	}
}

// LockfileNamespace is the lockfile-key prefix identifying which deployment
// scope an entry belongs to.
type LockfileNamespace string

const (
	NamespaceProject LockfileNamespace = "project"
	NamespaceHome    LockfileNamespace = "home"
)

// Valid reports whether n is a recognized LockfileNamespace value.
func (n LockfileNamespace) Valid() bool {
	switch n {
	case NamespaceProject, NamespaceHome:
		return true
	default:
		return false
	}
}

// SecurityMode selects the strictness of the mandatory deny-pattern set
// enforced at compile time.
type SecurityMode string

const (
	SecurityYolo     SecurityMode = "yolo"
	SecurityBalanced SecurityMode = "balanced"
	SecurityStrict   SecurityMode = "strict"
)

// Valid reports whether m is a recognized SecurityMode value.
func (m SecurityMode) Valid() bool {
	switch m {
	case SecurityYolo, SecurityBalanced, SecurityStrict:
		return true
	default:
		return false
	}
}

// AssetID uniquely identifies an Asset within a layer by (kind, id).
type AssetID struct {
	Kind AssetKind
	ID   string
}

// String returns a stable "kind:id" representation, used as a map key and
// in diagnostics.
func (a AssetID) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}
