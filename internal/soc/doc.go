// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package soc models a SoC design as the hardware generator consumes it: an
// ordered submodule list, a CPU and peripheral instances, configuration
// entries and a peripheral port map.
//
// A design is never written by hand. It is produced by Setup from a base
// Template and a chain of Overlays, in the same stage order the generator's
// setup hooks run:
//
//  1. submodules: every layer's additions are appended, then the bare module
//     handles named for removal are deleted.
//  2. instances: each layer's CPU and peripherals are instantiated only if
//     their core survived stage 1.
//  3. confs: every layer's entries are appended (later names shadow earlier
//     ones), then removals are applied.
//  4. portmap: wiring entries, optionally discarding inherited ones, guarded
//     by submodule membership.
//  5. post-setup: command-line switches override confs and the build-tree
//     actions of every layer are collected.
//
// Composition itself is delegated to package compose; this package owns the
// domain rules layered on top of it.
package soc
