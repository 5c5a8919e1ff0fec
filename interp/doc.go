// Package interp implements the StringTemplate rendering runtime.
//
// This package contains:
//   - The stack-based bytecode interpreter
//   - Template instances, compiled templates, and groups
//   - Attribute lookup and dynamic property access
//   - Iteration maps (single, rotating, parallel)
//   - The auto-indenting output writer with wrap and anchor support
//   - Attribute renderers and runtime error reporting
package interp
