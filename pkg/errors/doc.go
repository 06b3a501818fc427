// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.NewWithContext(
//	    errors.ErrCodeParse,
//	    "reference to undeclared symbol FOO",
//	    map[string]any{
//	        "file": "Kconfig",
//	        "line": 42,
//	    },
//	)
//
// Callers classify failures with IsCode:
//
//	if errors.IsCode(err, errors.ErrCodeCyclicDependency) {
//	    // report the loop to the user
//	}
package errors
