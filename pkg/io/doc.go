// Package io reads and writes the JSON forms of maps, layouts and map
// documents.
//
// # Documents
//
// A document is what an editor saves: the notation text and the meta
// overlay text side by side, plus an optional identifier.
//
//	{
//	  "id": "8c1f",
//	  "text": "title Tea Shop\ncomponent Kettle [0.43, 0.35]",
//	  "meta": "[{\"name\":\"kettle\",\"x\":12,\"y\":-4}]"
//	}
//
// Both texts are kept as strings. The overlay in particular is never
// re-encoded here, so records keep their original bytes.
//
// # Maps and Layouts
//
// [WriteMap] and [WriteLayout] emit indented JSON for tooling; [MarshalMap]
// and [MarshalLayout] emit compact JSON for caches. [ReadMap] validates what
// it decodes: element identifiers must be well formed and unique, and every
// link must resolve to a declared element or anchor.
//
//	m, err := io.ImportMap("tea.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package io
