package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sourcegraph/move-env/internal/model"
)

func TestBuildCallGraphs(t *testing.T) {
	functions := []model.Function{
		{SelfIdx: 0, Code: &model.Code{Code: []model.Bytecode{
			{Op: model.BCall, Function: 1},
			{Op: model.BCall, Function: 2},
		}}},
		{SelfIdx: 1, Code: &model.Code{Code: []model.Bytecode{
			{Op: model.BCallGeneric, Function: 2},
		}}},
		{SelfIdx: 2, Code: &model.Code{Code: nil}},
	}

	callers, callees := buildCallGraphs(functions)

	assert.Equal(t, map[model.FunctionIndex]struct{}{1: {}, 2: {}}, callees[0])
	assert.Equal(t, map[model.FunctionIndex]struct{}{2: {}}, callees[1])
	assert.Equal(t, map[model.FunctionIndex]struct{}{}, callees[2])

	assert.Equal(t, map[model.FunctionIndex]struct{}{}, callers[0])
	assert.Equal(t, map[model.FunctionIndex]struct{}{0: {}}, callers[1])
	assert.Equal(t, map[model.FunctionIndex]struct{}{0: {}, 1: {}}, callers[2])
}

func TestBuildCallGraphs_TotalOverRange(t *testing.T) {
	functions := []model.Function{{SelfIdx: 0}, {SelfIdx: 1}}

	callers, callees := buildCallGraphs(functions)

	assert.Contains(t, callers, model.FunctionIndex(0))
	assert.Contains(t, callers, model.FunctionIndex(1))
	assert.Contains(t, callees, model.FunctionIndex(0))
	assert.Contains(t, callees, model.FunctionIndex(1))
}
