package gen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/splitwrap/schema"
)

func TestNewPlan(t *testing.T) {
	cfg := MustNewConfig(WithModules(3))
	plan := testPlan(t, cfg, 10, "addons/F9.pyx", "addons/Helpers.pyx")

	assert.NotEqual(t, uuid.Nil, plan.RunID)
	assert.Equal(t, []string{"_bindings_1", "_bindings_2", "_bindings_3"}, plan.Modules())
	assert.Equal(t, 10, plan.FileCount())

	var sizes []int
	for _, p := range plan.Partitions {
		sizes = append(sizes, len(p.Files))
	}
	assert.Equal(t, []int{3, 3, 4}, sizes)

	assert.Equal(t, "std::vector<int>", plan.Instances["libcpp_vector[int]"])
	require.Len(t, plan.Broadcast, 1)
	assert.Equal(t, "addons/Helpers.pyx", plan.Broadcast[0].Path)

	last := plan.Partitions[2]
	require.Len(t, last.Addons, 2)
	assert.Equal(t, "addons/F9.pyx", last.Addons[0].Path)
	assert.Equal(t, "addons/Helpers.pyx", last.Addons[1].Path)
}

func TestNewPlanGroupsDeclarationsByFile(t *testing.T) {
	set := &schema.Set{Declarations: []*schema.Declaration{
		{Name: "A", File: "a.pxd"},
		{Name: "B", File: "b.pxd"},
		{Name: "A2", File: "a.pxd"},
	}}
	plan, err := NewPlan(MustNewConfig(WithModules(2)), set, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pxd"}, plan.Partitions[0].Files)
	require.Len(t, plan.Partitions[0].Decls, 2)
	assert.Equal(t, "A2", plan.Partitions[0].Decls[1].Name)
	assert.Equal(t, []string{"b.pxd"}, plan.Partitions[1].Files)
}

func TestNewPlanEmpty(t *testing.T) {
	plan, err := NewPlan(MustNewConfig(WithModules(4)), nil, nil)
	require.NoError(t, err)
	assert.Len(t, plan.Partitions, 4)
	assert.Zero(t, plan.FileCount())
	assert.Empty(t, plan.Broadcast)
}
