// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package a3xx

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/fd3c/tgsi"
)

// newInfo returns scan info with the given highest index per file.
func newInfo(maxes map[tgsi.File]int) *tgsi.Info {
	info := &tgsi.Info{}
	for f := range info.FileMax {
		info.FileMax[f] = -1
	}
	for f, m := range maxes {
		info.FileMax[f] = m
	}
	return info
}

func TestAllocateNamespace(t *testing.T) {
	usage := map[tgsi.File]int{
		tgsi.FileConstant:  3,
		tgsi.FileInput:     1,
		tgsi.FileOutput:    0,
		tgsi.FileTemporary: 2,
	}

	tests := []struct {
		name  string
		maxes map[tgsi.File]int
		kind  tgsi.Processor
		half  bool
		want  map[tgsi.File]uint32
	}{
		{
			name:  "vertex",
			maxes: usage,
			kind:  tgsi.ProcessorVertex,
			want: map[tgsi.File]uint32{
				tgsi.FileConstant:  0,
				tgsi.FileImmediate: 4,
				tgsi.FileInput:     0,
				tgsi.FileOutput:    2,
				tgsi.FileTemporary: 3,
			},
		},
		{
			name:  "fragment",
			maxes: usage,
			kind:  tgsi.ProcessorFragment,
			want: map[tgsi.File]uint32{
				tgsi.FileConstant:  0,
				tgsi.FileImmediate: 4,
				tgsi.FileInput:     1,
				tgsi.FileOutput:    3,
				tgsi.FileTemporary: 4,
			},
		},
		{
			name:  "fragment half",
			maxes: usage,
			kind:  tgsi.ProcessorFragment,
			half:  true,
			want: map[tgsi.File]uint32{
				tgsi.FileImmediate: 4,
				tgsi.FileInput:     0,
				tgsi.FileOutput:    2,
				tgsi.FileTemporary: 3,
			},
		},
		{
			name:  "no constants",
			maxes: map[tgsi.File]int{tgsi.FileTemporary: 0},
			kind:  tgsi.ProcessorVertex,
			want: map[tgsi.File]uint32{
				tgsi.FileImmediate: 0,
				tgsi.FileInput:     0,
				tgsi.FileOutput:    0,
				tgsi.FileTemporary: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, err := AllocateNamespace(newInfo(tt.maxes), tt.kind, tt.half)
			if err != nil {
				t.Fatalf("AllocateNamespace: %v", err)
			}
			for f, want := range tt.want {
				if got := ns.Base[f]; got != want {
					t.Errorf("Base[%s] = %d, want %d", f, got, want)
				}
			}
			if ns.FirstImmediate() != ns.Base[tgsi.FileImmediate] {
				t.Errorf("FirstImmediate() = %d, want %d", ns.FirstImmediate(), ns.Base[tgsi.FileImmediate])
			}
		})
	}
}

func TestAllocateNamespace_Disjoint(t *testing.T) {
	info := newInfo(map[tgsi.File]int{
		tgsi.FileConstant:  7,
		tgsi.FileInput:     3,
		tgsi.FileOutput:    1,
		tgsi.FileTemporary: 5,
	})
	ns, err := AllocateNamespace(info, tgsi.ProcessorFragment, false)
	if err != nil {
		t.Fatalf("AllocateNamespace: %v", err)
	}

	// Every register of a file lies below the base of the next file in the
	// same space.
	order := [][]tgsi.File{
		{tgsi.FileConstant, tgsi.FileImmediate},
		{tgsi.FileInput, tgsi.FileOutput, tgsi.FileTemporary},
	}
	for _, space := range order {
		for i := 0; i+1 < len(space); i++ {
			cur, next := space[i], space[i+1]
			last := ns.Base[cur] + uint32(info.FileMax[cur])
			if last >= ns.Base[next] {
				t.Errorf("%s ends at %d, overlapping %s at %d", cur, last, next, ns.Base[next])
			}
		}
	}
}

func TestAllocateNamespace_Indirect(t *testing.T) {
	tests := []struct {
		name string
		file tgsi.File
	}{
		{"const", tgsi.FileConstant},
		{"temp", tgsi.FileTemporary},
		{"input", tgsi.FileInput},
		{"output", tgsi.FileOutput},
		{"immediate", tgsi.FileImmediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := newInfo(map[tgsi.File]int{tt.file: 2})
			info.IndirectFiles = tt.file.Mask()

			_, err := AllocateNamespace(info, tgsi.ProcessorVertex, false)
			var e *Error
			if !errors.As(err, &e) || !e.IsUnsupportedAddressing() {
				t.Fatalf("err = %v, want UnsupportedAddressing", err)
			}
			if !strings.Contains(e.Message, tt.file.String()) {
				t.Errorf("message %q does not name %s", e.Message, tt.file)
			}
		})
	}
}
