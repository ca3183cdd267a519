package gen

import (
	"path/filepath"
	"strings"
)

// Reserved addon names with broadcast semantics.
const (
	AddToFirst    = "ADD_TO_FIRST"
	AddToAllOther = "ADD_TO_ALL_OTHER"
	AddToAll      = "ADD_TO_ALL"
)

// Addon is a hand-written code fragment merged into the generated source of
// one or more modules. It is addressed by its file name.
type Addon struct {
	// Path is the fragment's file path. It identifies the fragment.
	Path string
	// Name is the file name without its final extension.
	Name string
	// Stem is the file name up to its first dot.
	Stem string
}

// NewAddon returns the addon stored at path.
func NewAddon(path string) *Addon {
	base := filepath.Base(path)
	return &Addon{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Stem: stem(base),
	}
}

// Marker reports whether the addon carries one of the reserved names.
func (a *Addon) Marker() bool {
	switch a.Name {
	case AddToFirst, AddToAllOther, AddToAll:
		return true
	}
	return false
}

func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Assignment is the result of matching addons against partitions.
type Assignment struct {
	// Modules holds the addons of each partition, indexed like the
	// partitions passed to AssignAddons. Broadcast fallbacks come last.
	Modules [][]*Addon
	// Claimed holds the paths of the addons matched by at least one rule.
	Claimed map[string]bool
	// Broadcast lists the unclaimed addons, which were given to every
	// partition.
	Broadcast []*Addon
}

// AssignAddons decides which partitions receive which addons. Every
// (partition, addon) pair is evaluated in partition order, addon order,
// against these rules:
//
//  1. ADD_TO_FIRST goes to the first partition.
//  2. ADD_TO_ALL_OTHER goes to every partition but the first. With a single
//     partition it is claimed and placed nowhere.
//  3. ADD_TO_ALL goes to every partition.
//  4. An addon goes to a partition owning a file with the same stem, once
//     per such file.
//  5. Unless rules 1-4 matched the pair, an addon goes to a partition owning
//     a declaration of the same name, once per such declaration.
//
// Addons no rule matched anywhere are broadcast to every partition.
//
// Reserved names are not excluded from rules 4 and 5: a file or declaration
// literally named like a marker matches as well.
//
// AssignAddons does not modify parts; see Assignment.Apply.
func AssignAddons(parts []*Partition, addons []*Addon) *Assignment {
	a := &Assignment{
		Modules: make([][]*Addon, len(parts)),
		Claimed: make(map[string]bool),
	}
	single := len(parts) == 1
	for i, p := range parts {
		stems := make([]string, len(p.Files))
		for j, f := range p.Files {
			stems[j] = stem(f)
		}
		for _, addon := range addons {
			matched := a.match(i, p, stems, addon, single)
			if matched {
				a.Claimed[addon.Path] = true
				continue
			}
			for _, d := range p.Decls {
				if d.Name == addon.Name {
					a.Modules[i] = append(a.Modules[i], addon)
					a.Claimed[addon.Path] = true
				}
			}
		}
	}
	for _, addon := range addons {
		if a.Claimed[addon.Path] {
			continue
		}
		a.Broadcast = append(a.Broadcast, addon)
		for i := range a.Modules {
			a.Modules[i] = append(a.Modules[i], addon)
		}
	}
	return a
}

// match applies rules 1-4 to a pair and reports whether any of them claimed
// the addon.
func (a *Assignment) match(i int, p *Partition, stems []string, addon *Addon, single bool) bool {
	matched := false
	if p.First() {
		if addon.Name == AddToFirst {
			a.Modules[i] = append(a.Modules[i], addon)
			matched = true
		}
	} else if addon.Name == AddToAllOther {
		a.Modules[i] = append(a.Modules[i], addon)
		matched = true
	}
	if addon.Name == AddToAll {
		a.Modules[i] = append(a.Modules[i], addon)
		matched = true
	}
	for _, s := range stems {
		if s == addon.Stem {
			a.Modules[i] = append(a.Modules[i], addon)
			matched = true
		}
	}
	if single && addon.Name == AddToAllOther {
		matched = true
	}
	return matched
}

// Apply appends the assignment to the partitions it was computed for.
func (a *Assignment) Apply(parts []*Partition) {
	for i, p := range parts {
		if i < len(a.Modules) {
			p.Addons = append(p.Addons, a.Modules[i]...)
		}
	}
}
