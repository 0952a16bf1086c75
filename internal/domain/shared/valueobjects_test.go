package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	e, err := NewEmail("  Ana.Mora@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, Email("ana.mora@example.com"), e)

	_, err = NewEmail("not-an-email")
	assert.Equal(t, "Email 'not-an-email' is not valid", MessageOf(err))
	assert.True(t, IsDomainRule(err))
}

func TestNewPhoneNumber(t *testing.T) {
	p, err := NewPhoneNumber("8888-1234")
	require.NoError(t, err)
	assert.Equal(t, PhoneNumber("88881234"), p)
	assert.Equal(t, "8888-1234", p.Formatted())

	_, err = NewPhoneNumber("123")
	assert.Equal(t, "Phone number must be 8 digits", MessageOf(err))

	assert.True(t, IsValidLocalPhone("22223333"))
	assert.False(t, IsValidLocalPhone("2222-3333"))
}

func TestAddress_Full(t *testing.T) {
	a, err := NewAddress("San José", "Escazú", "San Rafael", "200m norte de la iglesia")
	require.NoError(t, err)
	assert.Equal(t, "San José, Escazú, San Rafael. 200m norte de la iglesia", a.Full())
	assert.Equal(t, "", Address{}.Full())
}

func TestGradeLevel_String(t *testing.T) {
	assert.Equal(t, "Maternal", GradeMaternal.String())
	assert.Equal(t, "Quinto", GradeQuinto.String())
	assert.Equal(t, "Duodecimo", GradeDuodecimo.String())
	assert.False(t, GradeLevel(16).IsValid())
	assert.False(t, GradeLevel(-1).IsValid())
}

func TestDomainError_Matching(t *testing.T) {
	err := NotFound("student", "Student")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))
	assert.Equal(t, "Student not found", MessageOf(err))

	wrapped := WrapError("postgres", "Add", ErrServiceUnavailable, "connection lost", errors.New("eof"))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, "postgres.Add: connection lost: eof", wrapped.Error())
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
}
