package reachability

import (
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// State is the read-only view a Rule sees during one propagation pass.
type State struct {
	Graph     *graph.Graph
	Reachable *graph.NodeSet
}

// IsReachable reports whether node idx is currently reachable.
func (s *State) IsReachable(idx uint32) bool {
	return s.Reachable.Contains(idx)
}

// parentReachable reports whether idx's parent is reachable.
func (s *State) parentReachable(idx uint32) bool {
	p, ok := s.Graph.ParentIndex(idx)
	return ok && s.Reachable.Contains(p)
}

// superTypes calls fn for every container idx inherits from.
func (s *State) superTypes(idx uint32, fn func(super uint32) bool) {
	stop := false
	s.Graph.Successors(idx, func(to uint32, ref models.Reference) {
		if stop || ref.Kind != models.RefInheritance {
			return
		}
		if !fn(to) {
			stop = true
		}
	})
}

// Rule decides whether an unreachable declaration becomes reachable given
// the current reachable set. Rules must only read the State.
type Rule interface {
	Reachable(s *State, idx uint32) bool
}

// DefaultRules is the registry of structural propagation rules, in
// evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		OverrideMember{},
		PrimaryConstructor{},
		NewSerializationMember(),
		CompanionObject{},
		SealedSubclass{},
		InterfaceImplementation{},
	}
}

// OverrideMember makes override-tagged members of reachable containers
// reachable; they are dispatch targets.
type OverrideMember struct{}

func (OverrideMember) Reachable(s *State, idx uint32) bool {
	d := s.Graph.At(idx)
	return d.IsOverride() && s.parentReachable(idx)
}

// PrimaryConstructor makes a container's primary constructor reachable iff
// the container is instantiated or called somewhere.
type PrimaryConstructor struct{}

func (PrimaryConstructor) Reachable(s *State, idx uint32) bool {
	d := s.Graph.At(idx)
	if !d.IsPrimaryConstructor() {
		return false
	}
	parent, ok := s.Graph.ParentIndex(idx)
	if !ok || !s.Reachable.Contains(parent) {
		return false
	}
	constructed := false
	s.Graph.Predecessors(parent, func(_ uint32, ref models.Reference) {
		if ref.Kind.IsConstruction() {
			constructed = true
		}
	})
	return constructed
}

// SerializationMember makes framework-invoked serialization members of
// reachable containers reachable.
type SerializationMember struct {
	Names       map[string]bool
	Annotations []string
}

// NewSerializationMember returns the rule with the built-in names and annotations.
func NewSerializationMember() SerializationMember {
	return SerializationMember{
		Names: map[string]bool{
			"serialVersionUID":       true,
			"serialPersistentFields": true,
			"readObject":             true,
			"writeObject":            true,
			"readObjectNoData":       true,
			"readResolve":            true,
			"writeReplace":           true,
			"CREATOR":                true,
			"writeToParcel":          true,
			"describeContents":       true,
			"serializer":             true,
		},
		Annotations: []string{
			"SerializedName", "Expose", "Json", "JsonProperty", "JsonCreator",
			"JsonField", "SerialName", "Serializable", "Transient",
			"ColumnInfo", "PrimaryKey", "Embedded", "TypeConverter",
		},
	}
}

func (r SerializationMember) Reachable(s *State, idx uint32) bool {
	if !s.parentReachable(idx) {
		return false
	}
	d := s.Graph.At(idx)
	if r.Names[d.Name] {
		return true
	}
	for _, a := range r.Annotations {
		if d.HasAnnotation(a) {
			return true
		}
	}
	return false
}

// CompanionObject makes companion objects nested in reachable containers reachable.
type CompanionObject struct{}

func (CompanionObject) Reachable(s *State, idx uint32) bool {
	return s.Graph.At(idx).IsCompanion() && s.parentReachable(idx)
}

// SealedSubclass makes every subclass of a reachable sealed type reachable.
type SealedSubclass struct{}

func (SealedSubclass) Reachable(s *State, idx uint32) bool {
	if !s.Graph.At(idx).Kind.IsContainer() {
		return false
	}
	found := false
	s.superTypes(idx, func(super uint32) bool {
		if s.Graph.At(super).IsSealed() && s.Reachable.Contains(super) {
			found = true
		}
		return !found
	})
	return found
}

// InterfaceImplementation makes every type implementing a reachable
// interface reachable.
type InterfaceImplementation struct{}

func (InterfaceImplementation) Reachable(s *State, idx uint32) bool {
	if !s.Graph.At(idx).Kind.IsContainer() {
		return false
	}
	found := false
	s.superTypes(idx, func(super uint32) bool {
		if s.Graph.At(super).Kind == models.KindInterface && s.Reachable.Contains(super) {
			found = true
		}
		return !found
	})
	return found
}
