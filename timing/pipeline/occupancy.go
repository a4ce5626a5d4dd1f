package pipeline

import (
	"fmt"
	"strings"

	"github.com/archrv/rv5sim/insts"
)

// OccupancyEntry tracks one program slot's pipeline-stage tag across
// every simulated cycle.
type OccupancyEntry struct {
	PC         uint32
	Assembly   string
	FirstCycle int // -1 if the slot never entered the pipeline
	Stages     []string
}

// Occupancy is the per-cycle table of which program slot occupied which
// pipeline stage, preallocated with one entry per program slot in program
// order.
type Occupancy struct {
	entries []*OccupancyEntry
	byPC    map[uint32]*OccupancyEntry
}

// NewOccupancy preallocates one entry per instruction in program, keyed
// by PC (0, 4, 8, ... in program order).
func NewOccupancy(program []*insts.Instruction) *Occupancy {
	o := &Occupancy{byPC: make(map[uint32]*OccupancyEntry, len(program))}
	for i, inst := range program {
		pc := uint32(i * 4)
		e := &OccupancyEntry{PC: pc, Assembly: inst.Assembly, FirstCycle: -1}
		o.entries = append(o.entries, e)
		o.byPC[pc] = e
	}
	return o
}

// RecordTick appends one column to every entry. tags maps a program
// slot's PC to the stage tag(s) recorded for it this cycle; a slot with
// no entry in tags receives "-". A slot with more than one tag this cycle
// (a same-tick re-fetch after a flush) is recorded as a slash-joined
// composite unless that composite equals the immediately preceding
// cycle's tag, in which case it is compressed to "-".
func (o *Occupancy) RecordTick(tags map[uint32][]string) {
	for _, e := range o.entries {
		tagList := tags[e.PC]

		var tag string
		switch len(tagList) {
		case 0:
			tag = "-"
		case 1:
			tag = tagList[0]
		default:
			composite := strings.Join(tagList, "/")
			prev := "-"
			if n := len(e.Stages); n > 0 {
				prev = e.Stages[n-1]
			}
			if composite == prev {
				tag = "-"
			} else {
				tag = composite
			}
		}

		if tag != "-" && e.FirstCycle == -1 {
			e.FirstCycle = len(e.Stages)
		}
		e.Stages = append(e.Stages, tag)
	}
}

// Entries returns the occupancy entries sorted by PC.
func (o *Occupancy) Entries() []*OccupancyEntry {
	sorted := make([]*OccupancyEntry, len(o.entries))
	copy(sorted, o.entries)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].PC > sorted[j].PC; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

// Render produces the final diagram: a header row ("Instruction (PC)"
// plus "; C<i>" per simulated cycle), a dashed separator, then one row
// per program slot in PC order ("<assembly> (<pc>)" plus "; <stage>" per
// cycle).
func (o *Occupancy) Render() string {
	entries := o.Entries()
	cycles := 0
	if len(entries) > 0 {
		cycles = len(entries[0].Stages)
	}

	rowLabels := make([]string, len(entries))
	labelWidth := len("Instruction (PC)")
	for i, e := range entries {
		rowLabels[i] = fmt.Sprintf("%s (%d)", e.Assembly, e.PC)
		if len(rowLabels[i]) > labelWidth {
			labelWidth = len(rowLabels[i])
		}
	}

	stageWidth := 0
	for _, e := range entries {
		for _, s := range e.Stages {
			if len(s) > stageWidth {
				stageWidth = len(s)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", labelWidth, "Instruction (PC)")
	for c := 0; c < cycles; c++ {
		fmt.Fprintf(&b, "; %-*s", stageWidth, fmt.Sprintf("C%d", c))
	}
	b.WriteByte('\n')

	totalWidth := labelWidth + cycles*(stageWidth+2)
	b.WriteString(strings.Repeat("-", totalWidth))
	b.WriteByte('\n')

	for i, e := range entries {
		fmt.Fprintf(&b, "%-*s", labelWidth, rowLabels[i])
		for _, s := range e.Stages {
			fmt.Fprintf(&b, "; %-*s", stageWidth, s)
		}
		b.WriteByte('\n')
	}

	return b.String()
}
