package audit

import (
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/taintgate/internal/model"
)

// Record is one policy decision handed to an emitter. Each record is
// self-contained (call identity, parameter, levels, mode) so consumers
// can reconstruct ordering across concurrent calls.
type Record struct {
	CallID      string
	Action      string
	Param       string
	Role        model.ParamRole
	Level       model.TaintLevel
	InputLevel  model.TaintLevel
	OutputLevel model.TaintLevel
	Mode        model.PolicyMode
	PolicyHash  string
}

// Emitter is the sink for policy decisions. Emission is best-effort:
// implementations must absorb transport failures locally and must never
// alter the decision that produced the record.
type Emitter interface {
	Audited(r Record)
	Propagated(r Record)
	Blocked(r Record)
}

// NopEmitter discards all records.
type NopEmitter struct{}

func (NopEmitter) Audited(Record)    {}
func (NopEmitter) Propagated(Record) {}
func (NopEmitter) Blocked(Record)    {}

// LogEmitter writes records to a hash-chained audit log. Write failures
// are reported on stderr and never surface to the caller.
type LogEmitter struct {
	log *Log
}

// NewLogEmitter wraps an open audit log.
func NewLogEmitter(log *Log) *LogEmitter {
	return &LogEmitter{log: log}
}

// Audited records an audited event.
func (e *LogEmitter) Audited(r Record) {
	e.record(EventAudited, r)
}

// Propagated records an output-trust propagation.
func (e *LogEmitter) Propagated(r Record) {
	e.record(EventPropagated, r)
}

// Blocked records a hard block.
func (e *LogEmitter) Blocked(r Record) {
	e.record(EventBlocked, r)
}

func (e *LogEmitter) record(event string, r Record) {
	if e == nil || e.log == nil {
		return
	}
	err := e.log.Record(Entry{
		Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		CallID:      r.CallID,
		Event:       event,
		Action:      r.Action,
		Param:       r.Param,
		Role:        string(r.Role),
		Level:       string(r.Level),
		InputLevel:  string(r.InputLevel),
		OutputLevel: string(r.OutputLevel),
		Mode:        string(r.Mode),
		PolicyHash:  r.PolicyHash,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: dropped %s event for %s: %v\n", event, r.Action, err)
	}
}
