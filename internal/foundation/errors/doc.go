// Package errors provides the classified error type used across labdocs.
//
// Every pipeline stage reports failures as a ClassifiedError whose category
// tells the top-level handler which stage failed:
//   - CategoryConfig: configuration files could not be read or parsed
//   - CategoryValidation: the merged configuration violates required structure
//   - CategoryBuild: rendering or copying documentation failed
//   - CategoryFileSystem: output directory preparation failed
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryBuild, "render template").
//		WithContext("file", path).
//		Build()
package errors
