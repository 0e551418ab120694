package view

// Values holds a form's field values by name.
type Values map[string]string

// Validator inspects values and returns per-field error messages. It
// must be pure: same values, same errors.
type Validator func(Values) map[string]string

// Form tracks values, touched flags and validation errors for one form.
// Errors are recomputed from the values whenever any field has been
// touched, but a field only *shows* its error once it has been touched
// itself (or a submit was attempted).
type Form struct {
	initial    Values
	values     Values
	touched    map[string]bool
	errors     map[string]string
	submitting bool
	validator  Validator
}

// NewForm creates a form seeded with initial values.
func NewForm(initial Values, validator Validator) *Form {
	f := &Form{
		initial:   cloneValues(initial),
		validator: validator,
	}
	f.resetState()
	return f
}

// SetValue overwrites one field and revalidates.
func (f *Form) SetValue(name, value string) {
	f.values[name] = value
	f.revalidate()
}

// Touch marks a field as visited (the blur handler) and revalidates.
func (f *Form) Touch(name string) {
	f.touched[name] = true
	f.revalidate()
}

// Value returns one field's current value.
func (f *Form) Value(name string) string { return f.values[name] }

// Values returns a copy of all current values.
func (f *Form) Values() Values { return cloneValues(f.values) }

// Touched reports whether the field has been visited.
func (f *Form) Touched(name string) bool { return f.touched[name] }

// FieldError returns the visible error for a field: empty unless the
// field has been touched.
func (f *Form) FieldError(name string) string {
	if !f.touched[name] {
		return ""
	}
	return f.errors[name]
}

// Errors returns the visible errors (touched fields only).
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for name, msg := range f.errors {
		if f.touched[name] {
			out[name] = msg
		}
	}
	return out
}

// Submitting reports whether a submit is in progress.
func (f *Form) Submitting() bool { return f.submitting }

// Submit marks every field touched, validates, and invokes cb only when
// the form is clean. It reports whether cb ran; cb's error, if any, is
// passed through. Submitting is true for the duration of the call and
// reset as soon as the post-validation state is known.
func (f *Form) Submit(cb func(Values) error) (bool, error) {
	f.submitting = true
	for name := range f.values {
		f.touched[name] = true
	}
	f.revalidate()

	if len(f.errors) > 0 {
		f.submitting = false
		return false, nil
	}

	err := cb(cloneValues(f.values))
	f.submitting = false
	return true, err
}

// Reset restores the initial state.
func (f *Form) Reset() {
	f.resetState()
}

func (f *Form) resetState() {
	f.values = cloneValues(f.initial)
	f.touched = make(map[string]bool)
	f.errors = make(map[string]string)
	f.submitting = false
}

// revalidate recomputes errors from the current values. An untouched
// form stays error-free so a pristine render never shows red fields.
func (f *Form) revalidate() {
	if len(f.touched) == 0 || f.validator == nil {
		f.errors = make(map[string]string)
		return
	}
	errs := f.validator(cloneValues(f.values))
	if errs == nil {
		errs = make(map[string]string)
	}
	f.errors = errs
}

func cloneValues(v Values) Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
