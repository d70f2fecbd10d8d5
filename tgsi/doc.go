// Package tgsi models the register-file based shader IR consumed by the a3xx
// compiler.
//
// A Program is a processor header followed by an ordered list of tokens:
// declarations, vec4 immediate blocks and instructions. Instructions name
// registers by file and index (IN[0], TEMP[3], CONST[ADDR[0].x+2]) and carry
// per-operand swizzles, write masks and modifiers.
//
// Programs are usually produced by Parse from the text form:
//
//	FRAG
//	DCL IN[0], GENERIC[0], PERSPECTIVE
//	DCL OUT[0], COLOR
//	DCL TEMP[0]
//	IMM[0] FLT32 { 0.5000, 1.0000, 0.0000, 0.0000 }
//	  0: MUL TEMP[0], IN[0], IMM[0].xxxx
//	  1: MOV_SAT OUT[0], TEMP[0]
//	  2: END
//
// Scan performs the static pass the compiler needs before translation: the
// highest index used in each register file and which files are accessed
// through relative addressing.
package tgsi
