package models

import (
	"fmt"
	"slices"
	"strings"
)

// DeclarationID identifies one syntactic declaration by its file and byte span.
// It is a comparable value and is used directly as a map key.
type DeclarationID struct {
	File  string `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// NewDeclarationID creates a declaration id.
func NewDeclarationID(file string, start, end uint32) DeclarationID {
	return DeclarationID{File: file, Start: start, End: end}
}

// IsZero reports whether the id is the zero value.
func (id DeclarationID) IsZero() bool {
	return id == DeclarationID{}
}

func (id DeclarationID) String() string {
	return fmt.Sprintf("%s:%d-%d", id.File, id.Start, id.End)
}

// Compare orders ids by file, then start, then end.
func (id DeclarationID) Compare(other DeclarationID) int {
	if c := strings.Compare(id.File, other.File); c != 0 {
		return c
	}
	if id.Start != other.Start {
		if id.Start < other.Start {
			return -1
		}
		return 1
	}
	if id.End != other.End {
		if id.End < other.End {
			return -1
		}
		return 1
	}
	return 0
}

// DeclarationKind classifies a declaration.
type DeclarationKind string

const (
	KindFile           DeclarationKind = "file"
	KindPackage        DeclarationKind = "package"
	KindClass          DeclarationKind = "class"
	KindInterface      DeclarationKind = "interface"
	KindObject         DeclarationKind = "object"
	KindEnum           DeclarationKind = "enum"
	KindEnumEntry      DeclarationKind = "enum_entry"
	KindAnnotationType DeclarationKind = "annotation_type"
	KindTypeAlias      DeclarationKind = "type_alias"
	KindFunction       DeclarationKind = "function"
	KindMethod         DeclarationKind = "method"
	KindConstructor    DeclarationKind = "constructor"
	KindProperty       DeclarationKind = "property"
	KindField          DeclarationKind = "field"
	KindParameter      DeclarationKind = "parameter"
	KindImport         DeclarationKind = "import"
)

var validKinds = map[DeclarationKind]bool{
	KindFile: true, KindPackage: true, KindClass: true, KindInterface: true,
	KindObject: true, KindEnum: true, KindEnumEntry: true, KindAnnotationType: true,
	KindTypeAlias: true, KindFunction: true, KindMethod: true, KindConstructor: true,
	KindProperty: true, KindField: true, KindParameter: true, KindImport: true,
}

// Valid reports whether k is a known kind.
func (k DeclarationKind) Valid() bool {
	return validKinds[k]
}

// IsContainer reports whether declarations of this kind own members.
func (k DeclarationKind) IsContainer() bool {
	switch k {
	case KindClass, KindInterface, KindObject, KindEnum, KindAnnotationType:
		return true
	}
	return false
}

// IsPseudo reports whether the kind is a structural marker rather than a symbol.
func (k DeclarationKind) IsPseudo() bool {
	return k == KindFile || k == KindPackage
}

// IsFunction reports whether the kind is callable.
func (k DeclarationKind) IsFunction() bool {
	return k == KindFunction || k == KindMethod || k == KindConstructor
}

// IsValueMember reports whether the kind holds state.
func (k DeclarationKind) IsValueMember() bool {
	return k == KindProperty || k == KindField
}

// IsSignificant reports whether the kind is worth naming in cycle reports.
func (k DeclarationKind) IsSignificant() bool {
	return k.IsContainer() || k.IsFunction()
}

// Visibility is the declared access level.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityInternal  Visibility = "internal"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Language identifies the front-end that produced a declaration.
type Language string

const (
	LanguageKotlin Language = "kotlin"
	LanguageJava   Language = "java"
)

// Location is a source position.
type Location struct {
	File      string `json:"file"`
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndColumn uint32 `json:"end_column,omitempty"`
}

// Declaration is one named program symbol.
type Declaration struct {
	ID                 DeclarationID   `json:"id"`
	Name               string          `json:"name"`
	FullyQualifiedName string          `json:"fqn,omitempty"`
	Kind               DeclarationKind `json:"kind"`
	Visibility         Visibility      `json:"visibility"`
	Location           Location        `json:"location"`
	Language           Language        `json:"language"`
	Parent             *DeclarationID  `json:"parent,omitempty"`
	IsStatic           bool            `json:"is_static,omitempty"`
	IsAbstract         bool            `json:"is_abstract,omitempty"`
	Modifiers          []string        `json:"modifiers,omitempty"`
	Annotations        []string        `json:"annotations,omitempty"`
	SuperTypes         []string        `json:"super_types,omitempty"`
}

// HasModifier reports whether mod is among the declaration's modifiers.
func (d *Declaration) HasModifier(mod string) bool {
	return slices.Contains(d.Modifiers, mod)
}

// HasAnnotation matches an annotation by simple or qualified name, with or without '@'.
func (d *Declaration) HasAnnotation(name string) bool {
	want := simpleAnnotation(name)
	for _, a := range d.Annotations {
		if simpleAnnotation(a) == want {
			return true
		}
	}
	return false
}

func simpleAnnotation(a string) string {
	a = strings.TrimPrefix(a, "@")
	if i := strings.IndexByte(a, '('); i >= 0 {
		a = a[:i]
	}
	if i := strings.LastIndexByte(a, '.'); i >= 0 {
		a = a[i+1:]
	}
	return a
}

// IsOverride reports an explicit override (Kotlin modifier or Java annotation).
func (d *Declaration) IsOverride() bool {
	return d.HasModifier("override") || d.HasAnnotation("Override")
}

// IsSealed reports a sealed (closed) type.
func (d *Declaration) IsSealed() bool {
	return d.HasModifier("sealed")
}

// IsData reports a Kotlin data class or Java record.
func (d *Declaration) IsData() bool {
	return d.HasModifier("data") || d.HasModifier("record")
}

// IsConst reports a compile-time constant property.
func (d *Declaration) IsConst() bool {
	return d.HasModifier("const")
}

// IsCompanion reports a companion object.
func (d *Declaration) IsCompanion() bool {
	return d.Kind == KindObject && d.HasModifier("companion")
}

// IsDeprecated reports a @Deprecated declaration.
func (d *Declaration) IsDeprecated() bool {
	return d.HasAnnotation("Deprecated")
}

// IsPrimaryConstructor reports a Kotlin primary constructor.
func (d *Declaration) IsPrimaryConstructor() bool {
	return d.Kind == KindConstructor && d.HasModifier("primary")
}

// DisplayName returns the fully qualified name when known.
func (d *Declaration) DisplayName() string {
	if d.FullyQualifiedName != "" {
		return d.FullyQualifiedName
	}
	return d.Name
}
