// Package deps resolves package references into the ordered set of packages
// a project needs, and classifies each package by role.
//
// # Overview
//
// Packages are published under the [Scope] npm scope and come in two forms:
//
//   - Binary packages, materialized by npm under node_modules/@loupeteam/<name>
//     with a package.json manifest.
//   - Source packages, cloned into Logical/Libraries/Loupe/<name> and
//     described by their library file (*.lby).
//
// # Resolving Dependencies
//
// [Resolver.Resolve] expands a list of root references depth-first:
//
//	r := deps.NewResolver(fs, tree, registry, deps.Options{Logger: logger.Debugf})
//	set, err := r.Resolve(ctx, roots)
//
// The result is a [Set]: every package appears once, in the order it was
// first reached. An hmi-project root stops expansion of its level. A
// dependency cycle fails with a CYCLIC_DEPENDENCY error instead of
// recursing forever, and [Options.MaxDepth] bounds the chain length.
//
// # Roles
//
// [Classifier] determines a package's [Role] from the manifest's lpm.type
// field or, failing that, from the shape of its directory. Components that
// act per role implement [RoleHandler] and call [Dispatch], so every role is
// handled in exactly one place.
//
// # Project Tree
//
// The engine never touches Automation Studio files directly. It works
// through the [Tree] capability, which package project implements on top of
// a virtual filesystem.
package deps
