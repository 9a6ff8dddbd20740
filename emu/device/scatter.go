/*
 * vtape - Scatter list helpers.
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

// Total capacity of scatter list.
func BufferLen(bufs [][]byte) int {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	return n
}

// Copy data across scatter list, returns bytes placed.
func Scatter(bufs [][]byte, data []byte) int {
	n := 0
	for _, b := range bufs {
		if n == len(data) {
			break
		}
		n += copy(b, data[n:])
	}
	return n
}

// Collect up to limit bytes from scatter list, limit < 0 takes all.
func Gather(bufs [][]byte, limit int) []byte {
	if limit < 0 {
		limit = BufferLen(bufs)
	}
	out := make([]byte, 0, limit)
	for _, b := range bufs {
		left := limit - len(out)
		if left <= 0 {
			break
		}
		if len(b) > left {
			b = b[:left]
		}
		out = append(out, b...)
	}
	return out
}
