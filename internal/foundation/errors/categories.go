package errors

// ErrorCategory says which part of a build an error comes from. It decides the
// process exit status.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation" // bad command line input
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConfig     ErrorCategory = "config"
	// CategoryStructure is a bad or missing index.yaml entry.
	CategoryStructure  ErrorCategory = "structure"
	CategoryCache      ErrorCategory = "cache"
	CategoryRender     ErrorCategory = "render"
	CategoryTemplate   ErrorCategory = "template"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryHistory    ErrorCategory = "history"
	CategoryInternal   ErrorCategory = "internal"
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryConfig:     7,
	CategoryStructure:  9,
	CategoryCache:      10,
	CategoryRender:     11,
	CategoryTemplate:   11,
	CategoryFileSystem: 11,
	CategoryHistory:    12,
	CategoryInternal:   13,
}

// ExitCode is the exit status of a command that fails with this category.
func (c ErrorCategory) ExitCode() int {
	if code, ok := exitCodes[c]; ok {
		return code
	}
	return 1
}

// ErrorSeverity tells whether the build can go on.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // fails one document or entry
	SeverityWarning ErrorSeverity = "warning" // output produced, but degraded
)

// RetryStrategy tells the user what fixes the error.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryNextBuild  RetryStrategy = "next" // the failed path is rebuilt next time
	RetryUserAction RetryStrategy = "user"
)
