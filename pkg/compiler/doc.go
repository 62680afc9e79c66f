// Package compiler turns Wardley Map notation into a [model.Map].
//
// # Notation
//
// Notation is line oriented. Blank lines and lines starting with // are
// ignored. Every other line is one statement:
//
//	title Tea Shop
//	anchor Business [0.95, 0.63]
//	component Cup of Tea [0.79, 0.61] label [19, -4]
//	component Kettle [0.43, 0.35] (build)
//	market Hot Water [0.52, 0.80]
//	evolve Kettle 0.62
//	Business->Cup of Tea
//	Cup of Tea+'£1.50'>Kettle
//	outsource Hot Water
//	annotation 1 [[0.43, 0.49], Kettle] Standardising power lets kettles evolve
//	annotations [0.72, 0.03]
//	style wardley
//	evolution Uncharted->Emerging->Good+(+rental)->Best+(+utility)
//	y-axis Value Chain->Invisible->Visible
//
// Coordinates are written [visibility, maturity]. Flow links use +<> (past
// and future), +< (past) or +> (future), optionally with a quoted value
// label between the plus and the arrow. Text after a semicolon on a link
// line is kept as the link context.
//
// # Resolution
//
// Compilation runs in two passes. The first pass declares every component
// and anchor and records statements that refer to names. The second pass
// resolves those names, so a link may refer to an element declared further
// down.
//
// # Errors
//
// Compilation stops at the first failure and returns no model. Failures are
// [errors.Error] values carrying the 1-based line number and one of the
// codes LEXICAL_ERROR, NUMERIC_ERROR or REFERENCE_ERROR.
//
// [errors.Error]: github.com/matzehuels/wardley/pkg/errors.Error
package compiler
