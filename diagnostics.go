package ecs

import (
	"log"

	"github.com/TheBitDrifter/bark"
)

// FailureKind enumerates the non-fatal failure kinds §7 requires to be
// reported through an observer rather than swallowed.
type FailureKind int

const (
	FailureInvalidHandle FailureKind = iota
	FailureSerdeMissing
	FailurePrefabSpawn
	FailureHierarchy
	FailureCommandBuffer
)

func (k FailureKind) String() string {
	switch k {
	case FailureInvalidHandle:
		return "InvalidHandle"
	case FailureSerdeMissing:
		return "SerdeMissing"
	case FailurePrefabSpawn:
		return "PrefabSpawn"
	case FailureHierarchy:
		return "Hierarchy"
	case FailureCommandBuffer:
		return "CommandBuffer"
	default:
		return "Unknown"
	}
}

// Failure is one diagnostic record: {kind, entity?, typeId?, message} per
// spec §7.
type Failure struct {
	Kind    FailureKind
	Entity  Entity
	TypeID  TypeID
	Message string
}

// diagnosticsCap bounds the ring buffer so a pathological run of failures
// (e.g. a command buffer flushing against a destroyed world every frame)
// cannot grow diagnostics without bound.
const diagnosticsCap = 1024

// Diagnostics is a bounded collector of non-fatal Failure records plus an
// optional host-supplied sink, the observer interface §7 asks for.
type Diagnostics struct {
	sink    func(Failure)
	records []Failure
}

// NewDiagnostics returns a Diagnostics collector. sink may be nil, in which
// case failures are only retained in the ring buffer for Drain/Recent.
func NewDiagnostics(sink func(Failure)) *Diagnostics {
	return &Diagnostics{sink: sink}
}

// Report records a failure, forwarding it to the sink if one was supplied.
func (d *Diagnostics) Report(f Failure) {
	if d.sink != nil {
		d.sink(f)
	}
	d.records = append(d.records, f)
	if len(d.records) > diagnosticsCap {
		d.records = d.records[len(d.records)-diagnosticsCap:]
	}
}

// Recent returns the failures retained so far, most recent last.
func (d *Diagnostics) Recent() []Failure { return d.records }

// Drain returns and clears the retained failures.
func (d *Diagnostics) Drain() []Failure {
	out := d.records
	d.records = nil
	return out
}

// fatal panics with err for an unrecoverable condition; its one caller is
// RegisterComponent's registration-failure branch (Archetype.verify returns
// its error instead). It stack-traces the panic via bark, exactly as the
// teacher's entity.go/query.go wrap programmer errors with bark.AddTrace,
// reserved here for true corruption rather than ordinary recoverable
// failures.
func fatal(err error) {
	panic(bark.AddTrace(err))
}

// logFallback is used only when no observer sink was configured and a
// failure would otherwise be silently lost — the teacher's own test file
// (entity_test.go) imports the stdlib "log" package rather than a logging
// framework, and this module carries that choice forward for the one
// code path that must always produce output.
func logFallback(f Failure) {
	log.Printf("ecs: %s entity=%v type=%d: %s", f.Kind, f.Entity, f.TypeID, f.Message)
}
