// Package ir provides the core intermediate representation for mechanistic
// biology assertions.
//
// This package contains type definitions and the module container only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Entity types are a sealed set (EntityType interface) - proteins keyed
//     by accession, cell states by label, genes and chemicals by identifier
//   - Attributes (context, evidence) are validated structs, never open maps -
//     malformed evidence is rejected at construction, not discovered later
//   - Modules are single static assignment: every operand must be defined
//     earlier in the module (definition-before-use, no forward references)
//   - Values are immutable once defined; a Module exclusively owns its
//     values and operations
package ir
