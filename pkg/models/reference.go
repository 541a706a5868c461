package models

// ReferenceKind is the type of a reference edge.
type ReferenceKind string

const (
	RefCall            ReferenceKind = "call"
	RefRead            ReferenceKind = "read"
	RefWrite           ReferenceKind = "write"
	RefType            ReferenceKind = "type"
	RefInheritance     ReferenceKind = "inheritance"
	RefInstantiation   ReferenceKind = "instantiation"
	RefReflection      ReferenceKind = "reflection"
	RefDelegation      ReferenceKind = "delegation"
	RefImport          ReferenceKind = "import"
	RefAnnotation      ReferenceKind = "annotation"
	RefMethodReference ReferenceKind = "method_reference"
)

var validRefKinds = map[ReferenceKind]bool{
	RefCall: true, RefRead: true, RefWrite: true, RefType: true, RefInheritance: true,
	RefInstantiation: true, RefReflection: true, RefDelegation: true, RefImport: true,
	RefAnnotation: true, RefMethodReference: true,
}

// Valid reports whether k is a known reference kind.
func (k ReferenceKind) Valid() bool {
	return validRefKinds[k]
}

// IsRead reports whether the reference observes the target's value.
func (k ReferenceKind) IsRead() bool {
	switch k {
	case RefRead, RefCall, RefMethodReference, RefReflection, RefDelegation:
		return true
	}
	return false
}

// IsWrite reports whether the reference only assigns the target.
func (k ReferenceKind) IsWrite() bool {
	return k == RefWrite
}

// IsConstruction reports evidence that a type is instantiated.
func (k ReferenceKind) IsConstruction() bool {
	return k == RefInstantiation || k == RefCall
}

// Reference is a resolved, typed edge payload.
type Reference struct {
	Kind     ReferenceKind `json:"kind"`
	Name     string        `json:"name"`
	Location Location      `json:"location"`
}

// UnresolvedReference is a front-end reference before name resolution.
type UnresolvedReference struct {
	From           DeclarationID `json:"from"`
	Name           string        `json:"name"`
	QualifiedName  string        `json:"qualified_name,omitempty"`
	Kind           ReferenceKind `json:"kind"`
	Location       Location      `json:"location"`
	ImportsInScope []string      `json:"imports,omitempty"`
}

// ParsedFile is the output of one front-end over one source file.
type ParsedFile struct {
	Path         string                `json:"path"`
	Language     Language              `json:"language"`
	Package      string                `json:"package,omitempty"`
	Declarations []Declaration         `json:"declarations"`
	References   []UnresolvedReference `json:"references"`
}
