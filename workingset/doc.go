// Package workingset provides named, deduplicated collections of resource
// references ("working sets") and a registry that tracks the working sets of a
// workspace.
//
// A [Set] is identified only by its name. A [Registry] keeps sets ordered by
// name and refuses to register two sets with the same name. Registries are
// ordinary values that are constructed at startup and passed to the code that
// needs them; there is no global registry.
//
// Renaming a registered set in place would break a registry's ordering and
// uniqueness guarantees, so [Set.SetName] refuses to rename a registered set.
// Use [Registry.Rename], or remove the set, rename it and add it again.
package workingset
