package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("sarah@techcorp.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}

func TestFileName(t *testing.T) {
	assert.NoError(t, FileName("brand-guide.pdf"))
	assert.Error(t, FileName(""))
	assert.Error(t, FileName("../etc/passwd"))
	assert.Error(t, FileName("a\x00b"))
}

func TestFileSize(t *testing.T) {
	assert.NoError(t, FileSize(10, 10))
	assert.Error(t, FileSize(11, 10))
	assert.Error(t, FileSize(-1, 10))
}

func TestContentType(t *testing.T) {
	assert.NoError(t, ContentType(""))
	assert.NoError(t, ContentType("application/pdf"))
	assert.Error(t, ContentType("text/"))
}

type signupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=freelancer client"`
}

func TestStruct_Validate(t *testing.T) {
	v := NewStruct()

	require.NoError(t, v.Validate(&signupRequest{Email: "a@b.co"}))

	err := v.Validate(&signupRequest{Role: "admin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "role must be one of [freelancer client]")
}
