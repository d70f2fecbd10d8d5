package tgsi

// Info is the result of a static scan over a program.
type Info struct {
	Processor Processor
	// FileMax is the highest register index used per file, -1 if unused.
	FileMax [FileCount]int
	// IndirectFiles has File.Mask() set for every file read or written
	// through relative addressing.
	IndirectFiles uint32

	NumInstructions int
	NumImmediates   int
	OpcodeCount     [OpCount]int
}

// UsesIndirect reports whether any file in mask is relative-addressed.
func (info *Info) UsesIndirect(mask uint32) bool {
	return info.IndirectFiles&mask != 0
}

// Scan walks prog once and collects register usage.
func Scan(prog *Program) *Info {
	info := &Info{Processor: prog.Processor}
	for f := range info.FileMax {
		info.FileMax[f] = -1
	}

	for _, tok := range prog.Tokens {
		switch t := tok.(type) {
		case *Declaration:
			info.bump(t.File, int(t.Last))
		case *Immediate:
			info.bump(FileImmediate, info.NumImmediates)
			info.NumImmediates++
		case *Instruction:
			info.NumInstructions++
			if t.Opcode < OpCount {
				info.OpcodeCount[t.Opcode]++
			}
			for i := range t.Dst {
				dst := &t.Dst[i]
				if dst.Indirect {
					info.IndirectFiles |= dst.File.Mask()
					info.bump(FileAddress, int(dst.IndirectIndex))
				} else {
					info.bump(dst.File, int(dst.Index))
				}
			}
			for i := range t.Src {
				src := &t.Src[i]
				if src.Indirect {
					info.IndirectFiles |= src.File.Mask()
					info.bump(FileAddress, int(src.IndirectIndex))
				} else {
					info.bump(src.File, int(src.Index))
				}
			}
		}
	}

	return info
}

func (info *Info) bump(f File, index int) {
	if f < FileCount && index > info.FileMax[f] {
		info.FileMax[f] = index
	}
}
