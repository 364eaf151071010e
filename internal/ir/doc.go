// Package ir holds the in-memory graph representation and its descriptor loader.
//
// A model is described by two files: a line-oriented text descriptor
// ("model.param") and a blob archive ("model.bin") holding weight payloads.
//
// Descriptor layout:
//
//	<format_version>
//	<operator_count> <operand_count>
//	<type> <name> <#inputs> <#outputs> <in...> <out...> [key=value ...]
//
// Keys starting with '@' declare attributes ("(d0,d1)f32", payload read from
// the archive entry "<operator>.<key>"), '$' names an input alias, '#'
// declares an operand shape ("?" for unknown dimensions). Other keys are
// operator parameters.
//
// The Graph is an arena: it owns every Operator and Operand, and edges
// between them are indices. Loading is best-effort: problems inside
// operator lines are recorded as warnings and the remaining graph stays
// usable for introspection.
package ir
