package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()
	require.NotEmpty(t, reg.Activities)
	require.NoError(t, reg.Validate())

	for _, a := range reg.Activities {
		assert.NotEmpty(t, a.InputSchema, "activity %s has no input schema", a.ID)
	}
}

func TestFindByTaskType(t *testing.T) {
	reg := Default()
	a := reg.FindByTaskType("advise-user")
	require.NotNil(t, a)
	assert.Equal(t, "advisory", a.Category)
	assert.Nil(t, reg.FindByTaskType("missing"))
}

func TestValidate_Duplicates(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", TaskType: "t", Category: "c"},
		{ID: "b", TaskType: "t", Category: "c"},
	}}
	assert.ErrorContains(t, reg.Validate(), "duplicate task type")
}
