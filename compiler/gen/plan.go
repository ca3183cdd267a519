package gen

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syssam/splitwrap/schema"
)

// Plan is the module layout of a build run: which files, declarations and
// addons every module owns.
type Plan struct {
	// RunID identifies the run in logs and in the manifest.
	RunID      uuid.UUID
	Partitions []*Partition
	Addons     []*Addon
	// Broadcast holds the addons that matched no rule and were given to
	// every module.
	Broadcast []*Addon
	Instances schema.InstanceMap
}

// NewPlan partitions the declarations of set into cfg.NumModules modules and
// assigns addons to them.
func NewPlan(cfg *Config, set *schema.Set, addons []*Addon) (*Plan, error) {
	log := cfg.logger()
	if set == nil {
		set = &schema.Set{}
	}
	files := schema.GroupByFile(set.Declarations)
	parts, err := Partitions(files, cfg.NumModules, cfg.ModuleName)
	if err != nil {
		return nil, err
	}
	assignment := AssignAddons(parts, addons)
	assignment.Apply(parts)

	plan := &Plan{
		RunID:      uuid.New(),
		Partitions: parts,
		Addons:     addons,
		Broadcast:  assignment.Broadcast,
		Instances:  set.Instances,
	}
	for _, a := range assignment.Broadcast {
		log.Debug("addon matched no module, adding it to all modules", zap.String("addon", a.Path))
	}
	for _, p := range parts {
		log.Info("planned module",
			zap.String("module", p.Module),
			zap.Int("files", len(p.Files)),
			zap.Int("declarations", len(p.Decls)),
			zap.Int("addons", len(p.Addons)),
		)
	}
	return plan, nil
}

// Modules returns the module names in partition order.
func (p *Plan) Modules() []string {
	names := make([]string, len(p.Partitions))
	for i, part := range p.Partitions {
		names[i] = part.Module
	}
	return names
}

// FileCount returns the number of declaration files across all modules.
func (p *Plan) FileCount() int {
	n := 0
	for _, part := range p.Partitions {
		n += len(part.Files)
	}
	return n
}
