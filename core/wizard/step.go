package wizard

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
)

// FieldKind tells the renderer which input to draw.
type FieldKind string

const (
	Text     FieldKind = "text"
	TextArea FieldKind = "textarea"
	Markdown FieldKind = "markdown"
	Number   FieldKind = "number"
	Bool     FieldKind = "bool"
	Select   FieldKind = "select"
	Date     FieldKind = "date"
	DateTime FieldKind = "datetime"
	Email    FieldKind = "email"
	Groups   FieldKind = "groups"
)

// Field describes one input of a step. Name is the JSON name of the draft field.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Options  []string
	Required bool
	Help     string
}

// Step is one screen of a wizard.
// It passes when the draft's validation tags on its Fields hold and Check, if any, returns nil.
type Step[T any] struct {
	ID     string
	Label  string
	Fields []Field
	Check  func(draft *T) error
}

func (s Step[T]) owns(field string) bool {
	for _, f := range s.Fields {
		if f.Name == field {
			return true
		}
	}
	return false
}

func (s Step[T]) validate(draft *T, validate *validator.Validate, translator ut.Translator) error {
	var flds []core.FieldError

	if err := validate.Struct(draft); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			// not a struct: nothing to check by tag
			if _, invalid := err.(*validator.InvalidValidationError); !invalid {
				return errors.Wrap(err, "validating draft")
			}
		}
		for _, vErr := range vErrs {
			path := core.FieldPath(vErr.Namespace())
			if !s.owns(core.TopField(path)) {
				continue
			}
			msg := vErr.Error()
			if translator != nil {
				msg = vErr.Translate(translator)
			}
			flds = append(flds, core.FieldError{Field: path, Error: msg})
		}
	}

	if s.Check != nil {
		if err := s.Check(draft); err != nil {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				flds = append(flds, vErr.Fields...)
				if len(vErr.Fields) == 0 {
					return err
				}
			} else {
				return core.NewValidationError(err)
			}
		}
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
