package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=30"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=5"`
}

func TestStructReturnsNilForValidPayload(t *testing.T) {
	fields := Struct(&signupPayload{Email: "a@b.dev", Username: "alice"})
	assert.Nil(t, fields)
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	fields := Struct(&signupPayload{})

	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")
	assert.NotContains(t, fields, "Email")
}

func TestStructRequiredMessage(t *testing.T) {
	fields := Struct(&signupPayload{Email: "a@b.dev"})

	require.Contains(t, fields, "username")
	assert.Equal(t, []string{"this field is required"}, fields["username"])
}

func TestStructEmailMessage(t *testing.T) {
	fields := Struct(&signupPayload{Email: "nope", Username: "alice"})

	require.Contains(t, fields, "email")
	assert.Equal(t, []string{"enter a valid email address"}, fields["email"])
}

func TestStructMaxMessageCarriesLimit(t *testing.T) {
	fields := Struct(&signupPayload{Email: "a@b.dev", Username: "alice", Nickname: "toolong"})

	require.Contains(t, fields, "nickname")
	assert.Equal(t, []string{"ensure this field has no more than 5 characters"}, fields["nickname"])
}

func TestStructStripsOmitemptySuffixFromName(t *testing.T) {
	fields := Struct(&signupPayload{Email: "a@b.dev", Username: "alice", Nickname: "toolong"})

	assert.NotContains(t, fields, "nickname,omitempty")
}
