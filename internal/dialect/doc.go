// Package dialect holds the science dialect: the registry mapping operation
// kinds and entity type names to their schemas, the builtin mechanistic
// vocabulary, and the verification algorithm that checks modules against
// registered schemas.
//
// The registry is the sole extension point of the IR. Adding a new
// mechanistic relation is a data change - a new OpSchema registered before
// parsing - not a change to the verification algorithm. Schemas can be
// registered from Go (RegisterOp) or compiled from CUE documents
// (CompileOpSchemas), in the same schema-as-data spirit either way.
//
// Lifecycle: a registry is mutable during single-threaded initialization and
// seals itself on first lookup. After sealing it is read-only and safe for
// concurrent lookup without further synchronization concerns.
package dialect
