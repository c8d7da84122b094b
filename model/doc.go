// Package model provides the immutable in-memory representation of a
// document under quality control, and the findings produced against it.
//
// A [Document] is built once per check run by the docx package and is never
// mutated afterwards. Rules receive a read-only pointer and may be evaluated
// concurrently against the same value.
//
// # Document Structure
//
// A document is an ordered list of [Section] values. Each section carries
// its page geometry and an ordered list of [Block] values:
//
//   - [Paragraph] - styled runs of text, optionally a heading or list item
//   - [Table] - rows of cells, each cell holding its own blocks
//   - [Image] - an embedded or referenced picture
//
// # References
//
// Cross references are resolved during construction into plain indices:
//
//   - [StyleRef] indexes the document's [StyleCatalog]
//   - [NumberingRef] indexes [Document.Numbering]
//   - [Run.Hyperlink] indexes [Document.Hyperlinks]
//
// A model that exists therefore has no dangling references; rules never
// need to check for them.
//
// # Findings
//
// Rules report [Finding] values carrying a [Severity], a [Category] and a
// [Location] inside the document.
package model
