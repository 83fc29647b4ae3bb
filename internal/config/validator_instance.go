package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance returns the shared validator used across the config
// package, built once per process.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// GetValidator exposes the shared validator instance for use outside the
// config package (e.g. cmd/foundry flag validation).
func GetValidator() *validator.Validate {
	return validatorInstance()
}
