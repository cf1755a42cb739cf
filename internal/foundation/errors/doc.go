// Package errors provides the classified error primitives used across the
// style guide builder.
//
// Errors carry a category (config, template, render, filesystem, ...), a
// severity, a message, an optional cause and structured context. The fluent
// ErrorBuilder keeps construction consistent:
//
//	err := errors.TemplateError("compile failed").
//		WithCause(parseErr).
//		WithContext("template", name).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
