// Package pkg provides the libraries behind lpm, the Loupe package manager
// for Automation Studio projects.
//
// # Overview
//
// lpm installs packages with npm and then brings them into an Automation
// Studio project: libraries land in the logical tree, and the build
// configurations chosen by the user reference them in their software
// tables. The pkg directory is organized into these areas:
//
//  1. [deps] - Package references, roles and dependency resolution
//  2. [project] - The project tree: package files, libraries, configurations
//  3. [syncer] and [deploy] - Placing packages and registering them in CPUs
//  4. [manifest] - package.json, lpmConfig and library manifests
//  5. [npm], [git] and [registry] - External tools and the package registry
//  6. [pipeline] - Orchestration of install, sync, deploy, init and configure
//  7. [graph] - Serialization of resolved dependency graphs
//
// # Architecture
//
// The data flow of an install:
//
//	npm install @loupeteam/<name>
//	         ↓
//	    [deps] package (walk node_modules, classify, order)
//	         ↓
//	    [syncer] package (copy into Logical/Libraries/Loupe)
//	         ↓
//	    [deploy] package (register in Cpu.sw per configuration)
//
// # Quick Start
//
//	tree, _ := project.Open(".")
//	cfg := config.Default()
//	npmClient := npm.New(cfg.NPM, ".", nil)
//	runner := pipeline.NewRunner(tree, ".", npmClient, git.New(cfg.Git, cfg.GitHost, nil), npmClient, nil)
//
//	report, err := runner.Install(ctx, pipeline.InstallOptions{Packages: []string{"atn"}})
//
// # Supporting Packages
//
//   - [config] - User configuration in TOML
//   - [errors] - Coded errors shown to users
//   - [httputil] - Retries and a file cache for HTTP lookups
//   - [buildinfo] - Version information set at build time
//
// [deps]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/deps
// [project]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/project
// [syncer]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/syncer
// [deploy]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/deploy
// [manifest]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/manifest
// [npm]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/npm
// [git]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/git
// [registry]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/registry
// [pipeline]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/graph
// [config]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/config
// [errors]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/loupeteam/lpm/pkg/buildinfo
package pkg
