package schema

// Names used by the string-conversion alias.
const (
	ToStringMethod = "toString"
	StrAlias       = "__str__"
)

// AddStringAliases registers a "__str__" alias on every declaration that
// declares a zero-argument method exposed as "toString". Methods are
// scanned in table order and the first zero-argument match wins, so a
// declaration gains at most one alias. Declarations without a method table
// are skipped.
//
// The declarations that gained an alias are returned in input order.
func AddStringAliases(decls []*Declaration) []*Declaration {
	var added []*Declaration
	for _, d := range decls {
		if !d.HasMethods() {
			continue
		}
		var match *Method
		d.Methods.Range(func(name string, m *Method) bool {
			if m.EffectiveName(name) != ToStringMethod || len(m.Arguments) != 0 {
				return true
			}
			match = m
			return false
		})
		if match == nil {
			continue
		}
		d.Methods.Add(StrAlias, match)
		added = append(added, d)
	}
	return added
}

// GroupByFile groups declarations by their originating file. Files appear in
// the order their first declaration was seen, and each file keeps the
// resolver order of its declarations.
func GroupByFile(decls []*Declaration) []*DeclarationFile {
	var (
		files []*DeclarationFile
		index = make(map[string]*DeclarationFile)
	)
	for _, d := range decls {
		f, ok := index[d.File]
		if !ok {
			f = &DeclarationFile{Path: d.File}
			index[d.File] = f
			files = append(files, f)
		}
		f.Declarations = append(f.Declarations, d)
	}
	return files
}
