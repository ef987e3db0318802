// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/bitmark-inc/logger"

	"github.com/ternarybit/tritpow/background"
	"github.com/ternarybit/tritpow/compute"
	"github.com/ternarybit/tritpow/curl"
	"github.com/ternarybit/tritpow/fault"
	"github.com/ternarybit/tritpow/trit"
)

// State - the engine state machine
type State int

// all possible states
const (
	Ready       State = iota // idle, no active job
	Searching                // one job is running on the backend
	Interrupted              // the active job was parked, resumable
)

func (state State) String() string {
	switch state {
	case Ready:
		return "ready"
	case Searching:
		return "searching"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Configuration - engine settings
//
// this is read from the configuration file
type Configuration struct {
	GridHeight  int `gluamapper:"grid_height" json:"grid_height"`
	StartOffset int `gluamapper:"start_offset" json:"start_offset"`
}

// DefaultGridHeight - rows used when the configuration leaves it zero
const DefaultGridHeight = 4

// Result - outcome of one search
//
// either the winning nonce as trytes or the error that stopped the job
type Result struct {
	Nonce string
	Err   error
}

// one queued search
type searchJob struct {
	state      []int8
	difficulty int
	result     chan Result
	snapshot   []compute.Cell // set when the job was parked mid-search
}

// Engine - the search orchestrator
//
// owns the compute backend for its whole lifetime; at most one job is
// ever bound to the backend.  all searching happens on the engine's
// background goroutine, callers never block
type Engine struct {
	sync.RWMutex // to allow locking

	log     *logger.L
	backend compute.Backend
	state   State
	queue   []*searchJob
	offset  int32
	failed  bool

	iterations uint64 // atomic

	wake        chan struct{}
	processes   *background.T
	initialised bool
}

// New - create an engine bound to a backend
//
// the backend grid width must match the state layout; logging must
// already be initialised
func New(configuration *Configuration, backend compute.Backend) (*Engine, error) {

	width, height := backend.Dimensions()
	if GridWidth != width || height < 1 {
		return nil, fault.ErrInvalidGridHeight
	}

	if err := registerKernels(backend); nil != err {
		return nil, err
	}

	offset := 0
	if nil != configuration {
		offset = configuration.StartOffset
	}

	return &Engine{
		log:     logger.New("pow"),
		backend: backend,
		state:   Ready,
		offset:  int32(offset),
		wake:    make(chan struct{}, 1),
	}, nil
}

// NewWithEmulator - create an engine on a CPU emulator grid
//
// grid height comes from the configuration, or DefaultGridHeight
func NewWithEmulator(configuration *Configuration) (*Engine, error) {

	height := DefaultGridHeight
	if nil != configuration && configuration.GridHeight > 0 {
		height = configuration.GridHeight
	}

	backend, err := compute.NewEmulator(GridWidth, height)
	if nil != err {
		return nil, err
	}
	return New(configuration, backend)
}

// Initialise - start the background search process
func (e *Engine) Initialise() error {

	e.Lock()
	defer e.Unlock()

	if e.initialised {
		return fault.ErrAlreadyInitialised
	}

	e.log.Info("starting…")

	e.processes = background.Start(background.Processes{e}, nil)
	e.initialised = true
	return nil
}

// Finalise - stop the background process
//
// an active job is parked with a snapshot, as if interrupted
func (e *Engine) Finalise() error {

	e.Lock()
	if !e.initialised {
		e.Unlock()
		return fault.ErrNotInitialised
	}
	e.initialised = false
	e.Unlock()

	e.log.Info("shutting down…")
	e.processes.Stop()
	e.log.Info("finished")
	e.log.Flush()
	return nil
}

// Run - the background search loop
func (e *Engine) Run(args interface{}, shutdown <-chan struct{}) {

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-e.wake:
			e.process(shutdown)
		}
	}
}

// Search - queue a search over a full sponge state
//
// difficulty is the required count of trailing zero trits and must lie
// strictly between zero and the hash length; violations are reported
// synchronously and nothing is queued.  the result arrives on the
// returned channel
func (e *Engine) Search(state []int8, difficulty int) (<-chan Result, error) {

	if difficulty <= 0 || difficulty >= curl.HashLength {
		return nil, fault.ErrInvalidDifficulty
	}
	if curl.StateLength != len(state) {
		return nil, fault.ErrInvalidStateLength
	}
	if err := trit.Validate(state); nil != err {
		return nil, err
	}

	job := &searchJob{
		state:      append([]int8(nil), state...),
		difficulty: difficulty,
		result:     make(chan Result, 1),
	}

	e.Lock()
	if !e.initialised {
		e.Unlock()
		return nil, fault.ErrNotInitialised
	}
	if e.failed {
		e.Unlock()
		return nil, fault.ErrBackendFailed
	}
	e.queue = append(e.queue, job)
	e.Unlock()

	e.notify()
	return job.result, nil
}

// SearchWithTrytes - queue a search for a tryte-encoded payload
//
// the payload is absorbed up to its final block; the final block is
// replaced by the searched nonce
func (e *Engine) SearchWithTrytes(trytes string, difficulty int) (<-chan Result, error) {

	trits, err := trit.FromTrytes(trytes)
	if nil != err {
		return nil, err
	}
	if len(trits) < curl.HashLength || 0 != len(trits)%curl.HashLength {
		return nil, fault.ErrInvalidLength
	}

	c := curl.New()
	if len(trits) > curl.HashLength {
		if err := c.Absorb(trits[:len(trits)-curl.HashLength]); nil != err {
			return nil, err
		}
	}
	return e.Search(c.State(), difficulty)
}

// Interrupt - request that the active job be parked
//
// only effective while searching; the in-flight iteration completes
// first.  idempotent, a no-op in any other state
func (e *Engine) Interrupt() {

	e.Lock()
	if Searching == e.state {
		e.state = Interrupted
		e.log.Info("interrupt requested")
	}
	e.Unlock()
}

// Resume - restart processing after an interruption
//
// the parked job sits at the queue head and continues from its
// snapshot, retrying the same nonce sequence
func (e *Engine) Resume() {

	e.Lock()
	if Interrupted == e.state {
		e.state = Ready
		e.log.Info("resuming")
	}
	e.Unlock()

	e.notify()
}

// SetOffset - nonce counter base for future jobs
func (e *Engine) SetOffset(offset int32) {

	e.Lock()
	e.offset = offset
	e.Unlock()
}

// RemoveLast - drop the most recently queued job
//
// the active job is not affected; returns false on an empty queue
func (e *Engine) RemoveLast() bool {

	e.Lock()
	defer e.Unlock()

	n := len(e.queue)
	if 0 == n {
		return false
	}
	e.queue = e.queue[:n-1]
	return true
}

// State - current engine state
func (e *Engine) State() State {

	e.RLock()
	defer e.RUnlock()
	return e.state
}

// Iterations - total permutation passes executed
func (e *Engine) Iterations() uint64 {
	return atomic.LoadUint64(&e.iterations)
}

// wake the background loop without blocking
func (e *Engine) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// drain the queue head by head until empty, parked or shut down
func (e *Engine) process(shutdown <-chan struct{}) {

	for {
		e.Lock()
		if Ready != e.state || e.failed || 0 == len(e.queue) {
			e.Unlock()
			return
		}
		job := e.queue[0]
		e.queue = e.queue[1:]
		e.state = Searching
		offset := e.offset
		e.Unlock()

		e.runJob(job, offset, shutdown)
	}
}

// run one job to completion, error or interruption
func (e *Engine) runJob(job *searchJob, offset int32, shutdown <-chan struct{}) {

	log := e.log

	if err := e.upload(job, offset); nil != err {
		e.fail(job, err)
		return
	}

	log.Debugf("search: difficulty: %d  offset: %d", job.difficulty, offset)

	for {
		select {
		case <-shutdown:
			e.Lock()
			e.state = Interrupted
			e.Unlock()
		default:
		}

		if Interrupted == e.State() {
			e.park(job)
			return
		}

		found, err := e.iterate(job.difficulty)
		if nil != err {
			e.fail(job, err)
			return
		}
		if found {
			break
		}
	}

	nonce, err := e.extractNonce()
	if nil != err {
		e.fail(job, err)
		return
	}

	log.Infof("found nonce after %d iterations", e.Iterations())
	job.result <- Result{Nonce: nonce}

	e.Lock()
	// completion wins over a late interrupt request: the job already
	// delivered its result, there is nothing left to park
	e.state = Ready
	e.Unlock()
}

// upload a job to the backend
//
// a fresh job writes its packed state and lays out the nonce field; a
// parked job restores its snapshot and continues where it stopped
func (e *Engine) upload(job *searchJob, offset int32) error {

	if nil != job.snapshot {
		return e.backend.Write(job.snapshot)
	}

	row, err := packState(job.state)
	if nil != err {
		return err
	}

	width, height := e.backend.Dimensions()
	buffer := make([]compute.Cell, width*height)
	for y := 0; y < height; y += 1 {
		copy(buffer[y*width:], row)
	}
	if err := e.backend.Write(buffer); nil != err {
		return err
	}
	return e.backend.Dispatch(initialiseName, 1, offset)
}

// one round: advance every nonce, permute, test, reduce, poll
func (e *Engine) iterate(difficulty int) (bool, error) {

	if err := e.backend.Dispatch(incrementName, 1); nil != err {
		return false, err
	}
	if err := e.backend.Dispatch(twistName, curl.NumberOfRounds); nil != err {
		return false, err
	}
	if err := e.backend.Dispatch(checkName, 1, int32(difficulty)); nil != err {
		return false, err
	}
	if err := e.backend.Dispatch(columnCheckName, 1); nil != err {
		return false, err
	}

	sentinel, err := e.backend.Read(flagColumn, 0, 1, 1)
	if nil != err {
		return false, err
	}

	atomic.AddUint64(&e.iterations, 1)
	return 0xFFFFFFFF == sentinel[0][3], nil
}

// locate the first passing lane and decode its nonce
func (e *Engine) extractNonce() (string, error) {

	if err := e.backend.Dispatch(finaliseName, 1); nil != err {
		return "", err
	}

	_, height := e.backend.Dimensions()

	flags, err := e.backend.Read(flagColumn, 0, 1, height)
	if nil != err {
		return "", err
	}

	row := -1
	lane := uint(0)
	for y := 0; y < height; y += 1 {
		if 0 != flags[y][0] {
			row = y
			lane = uint(bits.TrailingZeros32(flags[y][0]))
			break
		}
	}
	if row < 0 {
		return "", fault.ErrNoLanePassed
	}

	cells, err := e.backend.Read(nonceOffset, row, NonceLength, 1)
	if nil != err {
		return "", err
	}

	trits, err := unpackLane(cells, lane)
	if nil != err {
		return "", err
	}
	return trit.ToTrytes(trits)
}

// park the active job at the queue head with a snapshot
func (e *Engine) park(job *searchJob) {

	width, height := e.backend.Dimensions()
	snapshot, err := e.backend.Read(0, 0, width, height)
	if nil != err {
		e.fail(job, err)
		return
	}
	job.snapshot = snapshot

	e.Lock()
	e.queue = append([]*searchJob{job}, e.queue...)
	e.Unlock()

	e.log.Infof("parked after %d iterations", e.Iterations())
}

// a backend error is fatal to the engine
//
// pending jobs can never run against a corrupted backend, so every
// queued caller is notified as well
func (e *Engine) fail(job *searchJob, err error) {

	e.log.Criticalf("backend failure: %s", err)
	e.log.Flush()

	job.result <- Result{Err: err}

	e.Lock()
	pending := e.queue
	e.queue = nil
	e.failed = true
	e.state = Ready
	e.Unlock()

	for _, p := range pending {
		p.result <- Result{Err: fault.ErrBackendFailed}
	}
}
