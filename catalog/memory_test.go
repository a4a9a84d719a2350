package catalog

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/syndicate/errors"
)

func TestMemory_PackageShow(t *testing.T) {
	m := NewMemory()
	m.Put(&Dataset{ID: "pkg-1", Name: "ds"})

	ds, err := m.PackageShow(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, "ds", ds.Name)

	_, err = m.PackageShow(context.Background(), "missing")
	assert.True(t, stderrors.Is(err, errors.ErrDatasetNotFound))
}

func TestMemory_ReturnsIsolatedCopies(t *testing.T) {
	m := NewMemory()
	m.Put(&Dataset{ID: "pkg-1", Name: "ds", Extras: []Extra{{Key: "k", Value: "v"}}})

	ds, err := m.PackageShow(context.Background(), "pkg-1")
	require.NoError(t, err)
	ds.Extras[0].Value = "mutated"
	ds.Name = "mutated"

	again, err := m.PackageShow(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, "ds", again.Name)
	assert.Equal(t, "v", again.Extras[0].Value)
}

func TestMemory_UpsertExtra(t *testing.T) {
	m := NewMemory()
	m.Put(&Dataset{ID: "pkg-1", Name: "ds"})

	require.NoError(t, m.UpsertExtra(context.Background(), "pkg-1", "k", "v1"))
	require.NoError(t, m.UpsertExtra(context.Background(), "pkg-1", "k", "v2"))

	ds, err := m.PackageShow(context.Background(), "pkg-1")
	require.NoError(t, err)
	require.Len(t, ds.Extras, 1)
	assert.Equal(t, "v2", ds.Extras[0].Value)

	err = m.UpsertExtra(context.Background(), "missing", "k", "v")
	assert.True(t, stderrors.Is(err, errors.ErrDatasetNotFound))
}

func TestMemory_Reindex(t *testing.T) {
	m := NewMemory()
	m.Put(&Dataset{ID: "pkg-1", Name: "ds"})

	require.NoError(t, m.Reindex(context.Background(), "pkg-1"))
	require.NoError(t, m.Reindex(context.Background(), "pkg-1"))
	assert.Equal(t, 2, m.ReindexCount("pkg-1"))

	assert.Error(t, m.Reindex(context.Background(), "missing"))
}

func TestDataset_Extra(t *testing.T) {
	ds := &Dataset{Extras: []Extra{{Key: "k", Value: "v"}}}

	v, ok := ds.Extra("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = ds.Extra("missing")
	assert.False(t, ok)
}

func TestDataset_CloneIsDeep(t *testing.T) {
	ds := &Dataset{
		ID:           "pkg-1",
		Name:         "ds",
		Extras:       []Extra{{Key: "k", Value: "v"}},
		Resources:    []Resource{{URL: "u", Name: "n"}},
		Tags:         []Tag{{Name: "tag"}},
		Organization: &Organization{Name: "org", Tags: []Tag{{Name: "ot"}}},
	}

	clone := ds.Clone()
	clone.Extras[0].Value = "changed"
	clone.Resources[0].URL = "changed"
	clone.Tags[0].Name = "changed"
	clone.Organization.Name = "changed"
	clone.Organization.Tags[0].Name = "changed"

	assert.Equal(t, "v", ds.Extras[0].Value)
	assert.Equal(t, "u", ds.Resources[0].URL)
	assert.Equal(t, "tag", ds.Tags[0].Name)
	assert.Equal(t, "org", ds.Organization.Name)
	assert.Equal(t, "ot", ds.Organization.Tags[0].Name)
}

func TestDataset_CloneNil(t *testing.T) {
	var ds *Dataset
	assert.Nil(t, ds.Clone())
}
