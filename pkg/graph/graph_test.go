package graph_test

import (
	"testing"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/graph"
	"github.com/TouchController/E1epack/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	levels, err := graph.Levels(map[ids.PackID][]ids.PackID{
		"app":   {"lib", "ui"},
		"lib":   {"base"},
		"ui":    {"base"},
		"base":  nil,
		"tools": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, [][]ids.PackID{
		{"base", "tools"},
		{"lib", "ui"},
		{"app"},
	}, levels)
	assert.Equal(t, []ids.PackID{"base", "tools", "lib", "ui", "app"}, graph.Flatten(levels))
}

func TestLevels_EveryEdgeRespected(t *testing.T) {
	nodes := map[ids.PackID][]ids.PackID{
		"a": {"b", "c"},
		"b": {"d"},
		"c": {"d", "e"},
		"d": {"e"},
		"e": nil,
		"f": {"a"},
	}
	levels, err := graph.Levels(nodes)
	require.NoError(t, err)

	levelOf := map[ids.PackID]int{}
	for i, level := range levels {
		for _, id := range level {
			levelOf[id] = i
		}
	}
	for id, deps := range nodes {
		for _, dep := range deps {
			assert.Less(t, levelOf[dep], levelOf[id], "%s -> %s", id, dep)
		}
	}
}

func TestLevels_Empty(t *testing.T) {
	levels, err := graph.Levels(nil)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestLevels_UnknownDependency(t *testing.T) {
	_, err := graph.Levels(map[ids.PackID][]ids.PackID{"app": {"ghost"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackNotFound))
	assert.Equal(t, "ghost", errors.GetErrorDetails(err)["dependency"])
}

func TestLevels_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		nodes map[ids.PackID][]ids.PackID
		pack  string
		dep   string
	}{
		{
			name:  "two_packs",
			nodes: map[ids.PackID][]ids.PackID{"a": {"b"}, "b": {"a"}},
			pack:  "a",
			dep:   "b",
		},
		{
			name:  "three_packs_behind_a_root",
			nodes: map[ids.PackID][]ids.PackID{"root": nil, "x": {"y", "root"}, "y": {"z"}, "z": {"x"}},
			pack:  "x",
			dep:   "y",
		},
		{
			name:  "dependent_of_cycle",
			nodes: map[ids.PackID][]ids.PackID{"app": {"m"}, "m": {"n"}, "n": {"m"}},
			pack:  "app",
			dep:   "m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.Levels(tt.nodes)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrCycleDetected))
			details := errors.GetErrorDetails(err)
			assert.Equal(t, tt.pack, details["pack"])
			assert.Equal(t, tt.dep, details["dependency"])
		})
	}
}

func TestLevels_SelfEdgeLeftToResolver(t *testing.T) {
	levels, err := graph.Levels(map[ids.PackID][]ids.PackID{"a": {"a"}})
	require.NoError(t, err)
	assert.Equal(t, [][]ids.PackID{{"a"}}, levels)
}
