package errors

import "fmt"

// ConfigurationError creates a configuration error for a model or component
func ConfigurationError(subject, message string) *BaseError {
	return New(ConfigurationErrorCode, message).WithSubject(subject)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// MissingKeyProperty reports a key property that does not resolve to a schema field
func MissingKeyProperty(model, key string, known []string) *BaseError {
	return New(ConfigurationErrorCode, fmt.Sprintf("key property '%s' does not exist", key)).
		WithSubject(model).
		WithContext("key", key).
		WithContext("fields", known).
		WithSuggestion(fmt.Sprintf("declare '%s' with model.Prop in the %s schema", key, model))
}

// DuplicateRegistration reports a second registration for the same model and key
func DuplicateRegistration(model, key string) *BaseError {
	return New(RegistrationErrorCode, fmt.Sprintf("a CRUD type for key '%s' is already registered", key)).
		WithSubject(model).
		WithContext("key", key).
		WithSuggestion("register each model and key pair once")
}

// TemplateError creates a route template error
func TemplateError(template, message string) *BaseError {
	return New(TemplateErrorCode, message).
		WithSubject(template).
		WithContext("template", template)
}

// WrapTemplateError wraps route template parsing errors
func WrapTemplateError(template string, cause error) *BaseError {
	return Wrap(TemplateErrorCode, "invalid route template", cause).
		WithSubject(template).
		WithContext("template", template)
}

// DependencyError creates a dependency error for a missing collaborator
func DependencyError(dependencyType, dependencyName, message string) *BaseError {
	fullMessage := fmt.Sprintf("dependency error for '%s' of type '%s': %s", dependencyName, dependencyType, message)
	return New(DependencyErrorCode, fullMessage).
		WithContext("dependency_type", dependencyType).
		WithContext("dependency_name", dependencyName)
}

// WrapPersistenceError wraps a failure reported by the storage collaborator
func WrapPersistenceError(model, operation string, cause error) *BaseError {
	return Wrap(PersistenceErrorCode, fmt.Sprintf("failed to %s entity", operation), cause).
		WithSubject(model).
		WithContext("operation", operation)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err ScaffoldError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
