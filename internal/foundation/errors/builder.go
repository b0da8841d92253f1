package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of severity error that is never retried.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError starts an error caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.with(key, value)
	return b
}

// WithHint adds a fix-it text printed after the message.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	return b.WithContext(HintKey, hint)
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// UserAction marks the error as fixable only by the user.
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// NextBuild marks the error as retried by the next build.
func (b *ErrorBuilder) NextBuild() *ErrorBuilder { return b.WithRetry(RetryNextBuild) }

// Build returns the error. The builder may be reused; each call returns a new value.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

// Constructors per category. Configuration and usage problems are fatal; the others
// default to one failed item.

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// StructureError is a problem with one index.yaml entry.
func StructureError(message string) *ErrorBuilder {
	return NewError(CategoryStructure, message)
}

// RenderError is a conversion failure of one document.
func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message).NextBuild()
}

// TemplateError is a page template failure of one document.
func TemplateError(message string) *ErrorBuilder {
	return NewError(CategoryTemplate, message).NextBuild()
}

func CacheError(message string) *ErrorBuilder {
	return NewError(CategoryCache, message)
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

func HistoryError(message string) *ErrorBuilder {
	return NewError(CategoryHistory, message)
}
