/*
 * vtape - Tape unit bus.
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

package bus

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	D "github.com/rcornwell/vtape/emu/device"
	"github.com/rcornwell/vtape/emu/event"
)

const (
	MaxUnit      = 255 // Highest unit number
	DefaultQueue = 16  // Default pending commands per unit
)

var (
	ErrUnitInUse = errors.New("unit already attached")
	ErrNoUnit    = errors.New("no such unit")
	ErrBadUnit   = errors.New("unit number out of range")
)

// Device and its command queue.
type unit struct {
	dev   D.Device
	queue *event.Queue
}

var (
	mu    sync.RWMutex
	units = map[int]*unit{}
)

// Attach device and start its queue.
func Attach(num int, dev D.Device, depth int) error {
	if num < 0 || num > MaxUnit {
		return fmt.Errorf("%w: %d", ErrBadUnit, num)
	}
	if depth <= 0 {
		depth = DefaultQueue
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := units[num]; ok {
		return fmt.Errorf("%w: %d", ErrUnitInUse, num)
	}
	q := event.NewQueue(dev, depth)
	q.Start()
	units[num] = &unit{dev: dev, queue: q}
	return nil
}

// Look up attached device.
func Get(num int) (D.Device, bool) {
	mu.RLock()
	defer mu.RUnlock()
	u, ok := units[num]
	if !ok {
		return nil, false
	}
	return u.dev, true
}

func queueOf(num int) (*event.Queue, error) {
	mu.RLock()
	u, ok := units[num]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoUnit, num)
	}
	return u.queue, nil
}

// Queue command for unit.
func Submit(num int, cmd *D.Command, done D.Done) error {
	q, err := queueOf(num)
	if err != nil {
		return err
	}
	return q.Submit(cmd, done)
}

// Abort command by tag. A command that was accepted still completes.
func Abort(num int, tag ulid.ULID) error {
	q, err := queueOf(num)
	if err != nil {
		return err
	}
	return q.Abort(tag)
}

// Reset unit, queued commands still complete.
func Reset(num int) error {
	q, err := queueOf(num)
	if err != nil {
		return err
	}
	return q.Reset()
}

// Queue command and wait for its result.
func Run(num int, cmd *D.Command) (D.Result, error) {
	ch := make(chan D.Result, 1)
	err := Submit(num, cmd, func(_ *D.Command, res D.Result) {
		ch <- res
	})
	if err != nil {
		return D.Result{}, err
	}
	return <-ch, nil
}

// Attached unit numbers in order.
func Units() []int {
	mu.RLock()
	defer mu.RUnlock()
	nums := make([]int, 0, len(units))
	for n := range units {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

// Drain queue and shut down one unit.
func Detach(num int) error {
	mu.Lock()
	u, ok := units[num]
	delete(units, num)
	mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoUnit, num)
	}
	u.queue.Stop()
	return u.dev.Shutdown()
}

// Detach all units.
func Shutdown() error {
	var errs []error
	for _, n := range Units() {
		if err := Detach(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
