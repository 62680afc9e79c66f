// Package model defines the Wardley Map model produced by the notation
// compiler.
//
// # Overview
//
// A [Map] is the whole, validated contents of one notation text: a title,
// components and anchors positioned by maturity and visibility, links
// between them, build/buy/outsource methods, numbered annotations, the
// four evolution stage labels and presentation settings. Maps are built
// once by [github.com/matzehuels/wardley/pkg/compiler.Compile] and are not
// modified afterwards. A new parse produces a new Map.
//
// # Identifiers
//
// Every component and anchor has an ID derived from its name with [IDFor]:
// lower-cased, with every run of characters other than letters and digits
// replaced by a single underscore. "Cup of Tea" becomes "cup_of_tea". IDs
// are unique across components and anchors. An evolved counterpart created
// by an evolve statement has the ID of its source plus [EvolvedSuffix].
//
// # Coordinates
//
// Maturity and visibility are plain float64 values. They are not clamped
// to [0, 1]; values outside that range are kept and place the element off
// the canvas.
//
// # Flows
//
// [IsFlow] decides whether a link is drawn as a value flow, from the link's
// flags and the evolution state of its two endpoints.
package model
