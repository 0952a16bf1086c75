package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParent(ident string) CreateParentCommand {
	return CreateParentCommand{
		FirstName:      "Luis",
		LastName:       "Mora",
		Identification: ident,
		Email:          "luis@example.com",
		Phone:          "8888 7777",
		Relationship:   "Father",
	}
}

func TestCreateParent_FollowUpInfoAndLinks(t *testing.T) {
	f := newFixture(t)
	schoolID := f.school("E1")
	studentID := f.student(schoolID, "Ana", "Mora", "1-1111-1111")

	cmd := validParent("2-2222-2222")
	cmd.AlternatePhone = "2222-3333"
	cmd.Occupation = "Engineer"
	cmd.StudentIDs = []int64{studentID, 404}

	res, err := NewCreateParentHandler(f.store, f.clock).Handle(f.ctx, cmd)
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Errors())

	p, err := f.store.Parents().GetByID(f.ctx, res.Value())
	require.NoError(t, err)
	assert.Equal(t, "22223333", p.AlternatePhone)
	assert.Equal(t, "Engineer", p.Occupation)
	assert.Equal(t, "88887777", p.Phone)
	require.NotNil(t, p.UpdatedAt)

	ids, err := f.store.Students().ParentIDs(f.ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, []int64{res.Value()}, ids)
}

func TestCreateParent_WithoutExtrasIsNotTouched(t *testing.T) {
	f := newFixture(t)

	res, err := NewCreateParentHandler(f.store, f.clock).Handle(f.ctx, validParent("2-2222-2222"))
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	p, err := f.store.Parents().GetByID(f.ctx, res.Value())
	require.NoError(t, err)
	assert.Nil(t, p.UpdatedAt)
}

func TestCreateParent_DuplicateIdentification(t *testing.T) {
	f := newFixture(t)
	h := NewCreateParentHandler(f.store, f.clock)

	_, err := h.Handle(f.ctx, validParent("2-2222-2222"))
	require.NoError(t, err)

	res, err := h.Handle(f.ctx, validParent("2-2222-2222"))
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, []string{"A parent with this identification already exists"}, res.Errors())
}
