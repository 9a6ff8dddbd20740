/*
 * vtape - Per unit command queue.
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

package event

import (
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
	D "github.com/rcornwell/vtape/emu/device"
)

var (
	ErrQueueFull = errors.New("command queue full")
	ErrStopped   = errors.New("command queue stopped")
)

// Runs commands for a queue.
type Executor interface {
	Execute(cmd *D.Command) D.Result
}

type request struct {
	cmd  *D.Command // Command to run
	done D.Done     // Completion callback
}

// Commands for one unit run in submission order on one goroutine.
type Queue struct {
	exec    Executor
	ch      chan request
	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// Create queue holding depth pending commands.
func NewQueue(exec Executor, depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{exec: exec, ch: make(chan request, depth)}
}

// Start worker.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.run()
	}()
}

// Queue command, never blocks. done is called exactly once if accepted.
func (q *Queue) Submit(cmd *D.Command, done D.Done) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrStopped
	}
	select {
	case q.ch <- request{cmd: cmd, done: done}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Commands always run to completion, nothing to abort.
func (q *Queue) Abort(_ ulid.ULID) error {
	return nil
}

// Device reset has no queued state to drop.
func (q *Queue) Reset() error {
	return nil
}

// Number of commands waiting.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Refuse new commands, finish queued ones, and wait for worker.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		q.wg.Wait()
		return
	}
	q.stopped = true
	close(q.ch)
	started := q.started
	q.mu.Unlock()

	if !started {
		q.run()
		return
	}
	q.wg.Wait()
}

func (q *Queue) run() {
	for req := range q.ch {
		res := q.exec.Execute(req.cmd)
		if req.done != nil {
			req.done(req.cmd, res)
		}
	}
}
