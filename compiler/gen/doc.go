// Package gen splits a set of declarations into modules and drives their
// generation and compilation.
//
// # Pipeline
//
//	schema.Set (resolver output)
//	        ↓
//	   GroupByFile: one entry per declaration file
//	        ↓
//	   Partitions: exactly K chunks, named <base> or <base>_1 .. <base>_K
//	        ↓
//	   AssignAddons: addon fragments matched to modules
//	        ↓
//	   Builder.Generate: one generator call per module, sequential
//	        ↓
//	   Builder.Compile: one compiler call per module, bounded pool
//	        ↓
//	   Writer: aggregator, version stamps, manifests
//
// # Partitioning
//
// [Chunk] uses integer floor boundaries, so for n files and K modules chunk
// i holds files [i*n/K, (i+1)*n/K). Ten files in three modules split as
// 3, 3, 4. The result is verified: a wrong chunk count or a lost file is a
// [splitwrap.ConsistencyError] and the run stops.
//
// # Addons
//
// Addon fragments are addressed by file name. Three names are reserved:
//
//   - ADD_TO_FIRST: first module only
//   - ADD_TO_ALL_OTHER: every module but the first (nowhere if K is 1)
//   - ADD_TO_ALL: every module
//
// Other fragments go to the module owning a declaration file with the same
// stem, or failing that a declaration with the same name. A fragment nothing
// claims is given to every module. See [AssignAddons] for the exact rules.
//
// # Configuration
//
// Configuration uses functional options:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithModules(4),
//	    gen.WithThreads(8),
//	    gen.WithTarget("./build/bindings"),
//	    gen.WithModuleName("_pyopenms"),
//	)
//
// # Errors
//
// Errors are the structured types of package splitwrap:
//
//   - ConsistencyError: partitioning invariants
//   - CollaboratorError: generator and compiler failures, per module
//   - ConfigError: invalid options
//
// Compile failures of several modules are joined with errors.Join once the
// whole pool has drained.
package gen
