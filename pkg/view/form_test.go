package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredFields(fields ...string) Validator {
	return func(v Values) map[string]string {
		errs := map[string]string{}
		for _, f := range fields {
			if v[f] == "" {
				errs[f] = f + " is required"
			}
		}
		return errs
	}
}

func TestPristineFormShowsNoErrors(t *testing.T) {
	f := NewForm(Values{"username": "", "password": ""}, requiredFields("username", "password"))

	assert.Empty(t, f.FieldError("username"))
	assert.Empty(t, f.Errors())
}

func TestErrorAppearsOnlyAfterTouch(t *testing.T) {
	f := NewForm(Values{"username": "", "password": ""}, requiredFields("username", "password"))

	f.Touch("username")
	assert.Equal(t, "username is required", f.FieldError("username"))
	// Password is also invalid but untouched, so stays silent.
	assert.Empty(t, f.FieldError("password"))
	assert.Len(t, f.Errors(), 1)
}

func TestSetValueRevalidates(t *testing.T) {
	f := NewForm(Values{"username": ""}, requiredFields("username"))
	f.Touch("username")
	require.NotEmpty(t, f.FieldError("username"))

	f.SetValue("username", "jchen")
	assert.Empty(t, f.FieldError("username"))
	assert.Equal(t, "jchen", f.Value("username"))
}

func TestSubmitBlocksOnInvalidForm(t *testing.T) {
	f := NewForm(Values{"username": "", "password": ""}, requiredFields("username", "password"))

	called := false
	ran, err := f.Submit(func(Values) error {
		called = true
		return nil
	})

	assert.False(t, ran)
	assert.NoError(t, err)
	assert.False(t, called)
	// A failed submit touches everything so all errors become visible.
	assert.Len(t, f.Errors(), 2)
	assert.False(t, f.Submitting())
}

func TestSubmitRunsCallbackWhenClean(t *testing.T) {
	f := NewForm(Values{"username": "jchen", "password": "pw"}, requiredFields("username", "password"))

	var got Values
	ran, err := f.Submit(func(v Values) error {
		assert.True(t, f.Submitting())
		got = v
		return nil
	})

	assert.True(t, ran)
	assert.NoError(t, err)
	assert.Equal(t, "jchen", got["username"])
	assert.False(t, f.Submitting())
}

func TestSubmitPassesCallbackErrorThrough(t *testing.T) {
	f := NewForm(Values{"username": "jchen"}, requiredFields("username"))

	wantErr := errors.New("Incorrect username or password")
	ran, err := f.Submit(func(Values) error { return wantErr })

	assert.True(t, ran)
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, f.Submitting())
}

func TestResetRestoresInitialState(t *testing.T) {
	f := NewForm(Values{"username": "seed"}, requiredFields("username"))
	f.SetValue("username", "")
	f.Touch("username")
	require.NotEmpty(t, f.FieldError("username"))

	f.Reset()

	assert.Equal(t, "seed", f.Value("username"))
	assert.False(t, f.Touched("username"))
	assert.Empty(t, f.Errors())
}

func TestNilValidatorNeverErrors(t *testing.T) {
	f := NewForm(Values{"notes": ""}, nil)
	f.Touch("notes")
	assert.Empty(t, f.Errors())

	ran, err := f.Submit(func(Values) error { return nil })
	assert.True(t, ran)
	assert.NoError(t, err)
}
