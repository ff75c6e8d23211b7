// Package io reads and writes style documents: a named layer stack plus
// document metadata, encoded as JSON or TOML.
//
// # Document Format
//
//	{
//	  "version": 1,
//	  "name": "streets",
//	  "layers": [
//	    {"id": "background", "type": "background"},
//	    {"id": "road-minor", "type": "line", "metadata": {"group": "roads"}},
//	    {"id": "road-major", "type": "line", "metadata": {"group": "roads"}}
//	  ]
//	}
//
// Layer order is paint order. Group membership lives in each layer's
// metadata under the "group" key; see package groups. The same structure is
// written to TOML with layers as an array of tables.
//
// # Import and Export
//
// [Import] and [Export] choose the codec from the file extension (.json or
// .toml). [ReadJSON], [ReadTOML], [WriteJSON] and [WriteTOML] work on any
// reader or writer:
//
//	doc, err := io.Import("streets.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, _ := doc.Stack()
//	// ... edit s through a groups.Manager ...
//	doc.SetLayers(s)
//	err = io.Export(doc, "streets.json")
//
// Every read validates the document: layer IDs must be present and unique,
// and the version must not be newer than [FormatVersion]. Violations carry
// the INVALID_DOCUMENT error code.
package io
