package schema

// Kind classifies a declaration.
type Kind string

// Declaration kinds reported by the resolver.
const (
	KindClass    Kind = "class"
	KindEnum     Kind = "enum"
	KindFunction Kind = "function"
)

// Annotation keys understood on methods. The cast override is applied
// first and the wrap override second, so "wrap-as" wins when both are set.
const (
	AnnotationCastName = "wrap-cast"
	AnnotationWrapName = "wrap-as"
)

// Declaration is a named unit (class, enum, free function) parsed from a
// declaration file.
type Declaration struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind,omitempty"`
	// File is the path of the declaration file the resolver parsed this
	// declaration from. It is the partitioning key.
	File string `json:"file"`
	// Methods is nil for enums and free functions.
	Methods *MethodTable `json:"methods,omitempty"`
}

// HasMethods reports whether the declaration exposes a method table.
func (d *Declaration) HasMethods() bool {
	return d != nil && d.Methods != nil
}

// Argument is a single method argument.
type Argument struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Annotations holds per-method key/value annotations, used for renaming.
type Annotations map[string]string

// Method is one overload of a declared method.
type Method struct {
	Arguments   []Argument  `json:"arguments,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
}

// EffectiveName resolves the name a method is exposed under. The name it
// was declared under is overridden by the cast annotation, then by the wrap
// annotation.
func (m *Method) EffectiveName(declared string) string {
	name := declared
	if v, ok := m.Annotations[AnnotationCastName]; ok {
		name = v
	}
	if v, ok := m.Annotations[AnnotationWrapName]; ok {
		name = v
	}
	return name
}

// InstanceMap maps template instance names to the concrete types they were
// instantiated with. It is opaque to splitwrap and handed back to the
// generator unchanged.
type InstanceMap map[string]string

// Set is the resolver output: all declarations in parse order plus the
// instance map.
type Set struct {
	Declarations []*Declaration `json:"declarations"`
	Instances    InstanceMap    `json:"instances,omitempty"`
}

// DeclarationFile is a declaration file together with the declarations
// parsed from it, in resolver order.
type DeclarationFile struct {
	Path         string
	Declarations []*Declaration
}
