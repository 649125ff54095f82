package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRE.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the model for structural errors: missing or malformed
// names, functions without outputs, and duplicate declarations.
func (m *Model) Validate() error {
	var errs []error

	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed on the '%s' rule", fe.Namespace(), fe.Tag()))
		}
	}

	nodes := make(map[string]*NodeDecl, len(m.Nodes))
	for _, n := range m.Nodes {
		if prev, ok := nodes[n.Name]; ok {
			errs = append(errs, fmt.Errorf("node %q declared twice (%s and %s)", n.Name, prev.Source, n.Source))
			continue
		}
		nodes[n.Name] = n
	}
	funcs := make(map[string]bool, len(m.Functions))
	for _, f := range m.Functions {
		if funcs[f.Name] {
			errs = append(errs, fmt.Errorf("function %q declared twice", f.Name))
		}
		funcs[f.Name] = true
	}
	return errors.Join(errs...)
}
