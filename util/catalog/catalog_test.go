/*
 * vtape - Tape volume catalog tests.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	cat, err := Open(filepath.Join(dir, "tapes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat, dir
}

func TestLookupRegistersOnce(t *testing.T) {
	cat, dir := openTest(t)
	path := filepath.Join(dir, "vol1.dat")

	first, err := cat.Lookup(path)
	require.NoError(t, err)
	_, err = ulid.Parse(first.Serial)
	assert.NoError(t, err, "serial is a ULID")
	assert.Equal(t, path, first.Path)
	assert.Zero(t, first.RecordIndex)

	again, err := cat.Lookup(path)
	require.NoError(t, err)
	assert.Equal(t, first.Serial, again.Serial)

	other, err := cat.Lookup(filepath.Join(dir, "vol2.dat"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Serial, other.Serial)

	vols, err := cat.List()
	require.NoError(t, err)
	assert.Len(t, vols, 2)
}

func TestSaveIndexPersists(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tapes.db")
	path := filepath.Join(dir, "vol.dat")

	cat, err := Open(name)
	require.NoError(t, err)
	vol, err := cat.Lookup(path)
	require.NoError(t, err)
	require.NoError(t, cat.SaveIndex(vol.Serial, 42))
	require.NoError(t, cat.Close())

	cat, err = Open(name)
	require.NoError(t, err)
	defer cat.Close()
	back, err := cat.Lookup(path)
	require.NoError(t, err)
	assert.Equal(t, vol.Serial, back.Serial)
	assert.Equal(t, uint32(42), back.RecordIndex)

	got, err := cat.Get(vol.Serial)
	require.NoError(t, err)
	assert.Equal(t, path, got.Path)
}

func TestUnknownVolume(t *testing.T) {
	cat, _ := openTest(t)

	err := cat.SaveIndex("missing", 1)
	assert.True(t, errors.Is(err, ErrUnknownVolume))
	_, err = cat.Get("missing")
	assert.True(t, errors.Is(err, ErrUnknownVolume))
}
