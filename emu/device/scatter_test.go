/*
 * vtape - Scatter list helper tests.
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

package device

import (
	"bytes"
	"testing"
)

func TestScatter(t *testing.T) {
	a := make([]byte, 2)
	b := make([]byte, 3)
	n := Scatter([][]byte{a, b}, []byte{1, 2, 3, 4})
	if n != 4 {
		t.Errorf("Scatter count got: %d expected: 4", n)
	}
	if !bytes.Equal(a, []byte{1, 2}) || !bytes.Equal(b, []byte{3, 4, 0}) {
		t.Errorf("Scatter data got: %v %v", a, b)
	}
}

func TestScatterShort(t *testing.T) {
	a := make([]byte, 2)
	n := Scatter([][]byte{a}, []byte{1, 2, 3, 4})
	if n != 2 {
		t.Errorf("Scatter count got: %d expected: 2", n)
	}
}

func TestGather(t *testing.T) {
	bufs := [][]byte{{1, 2}, {3, 4, 5}}
	if got := Gather(bufs, 3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Gather limit got: %v", got)
	}
	if got := Gather(bufs, -1); !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("Gather all got: %v", got)
	}
	if BufferLen(bufs) != 5 {
		t.Errorf("BufferLen got: %d expected: 5", BufferLen(bufs))
	}
}
