// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - manage a set of long-running goroutines
//
// Each process receives a shutdown channel; it must return promptly
// after the channel is closed.  Stop closes all shutdown channels and
// waits for every process to finish.
package background

// Process - the interface for a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of background processes to start
type Processes []Process

// T - handle for a running set of background processes
type T struct {
	shutdown chan struct{}
	finished []chan struct{}
}

// Start - run each process in its own goroutine
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make(chan struct{}),
		finished: make([]chan struct{}, len(processes)),
	}

	for i, p := range processes {
		finished := make(chan struct{})
		register.finished[i] = finished
		go func(p Process, finished chan<- struct{}) {
			p.Run(args, register.shutdown)
			close(finished)
		}(p, finished)
	}
	return register
}

// Stop - signal all background processes and wait for them to finish
func (t *T) Stop() {

	if nil == t {
		return
	}

	close(t.shutdown)

	for _, finished := range t.finished {
		<-finished
	}
}
