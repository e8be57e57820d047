package asmcmp

// maxInstructionBytes is the inline storage budget for raw instruction
// bytes. x86's legal maximum is 15 bytes; this core keeps the smaller,
// original 11-byte budget (see spec's design notes) and panics rather
// than silently truncating on the rare encoding that needs more.
const maxInstructionBytes = 11

// AsmInstruction is the fundamental unit emitted by the disassembler.
type AsmInstruction struct {
	Address uint64

	Bytes [maxInstructionBytes]byte
	Len   uint8 // number of valid bytes in Bytes

	// Text is the formatted mnemonic and operands, with every substituted
	// symbol (real or pseudo) wrapped in double quotes. Empty when Invalid.
	Text string

	Invalid bool // the decoder could not decode these bytes
	IsJump  bool // relative branch whose target is inside the owning function
	IsSymbol bool // a real or pseudo symbol resolves exactly to Address

	JumpLen   int32 // signed byte distance to target; valid iff IsJump
	ShortJump bool  // IsJump and the relative operand was one byte wide

	LineNumber  uint32
	HasLine     bool
	IsFirstLine bool
}

// RawBytes returns the valid prefix of Bytes.
func (a *AsmInstruction) RawBytes() []byte {
	return a.Bytes[:a.Len]
}

func (a *AsmInstruction) setBytes(src []byte) {
	if len(src) > maxInstructionBytes {
		panic("asmcmp: instruction longer than inline byte budget")
	}
	a.Len = uint8(copy(a.Bytes[:], src))
}

// AsmLabel is a pseudo-symbol rendered as a standalone line in the
// aligned output rather than attached to an instruction.
type AsmLabel struct {
	Label   string
	Address uint64
}

// AsmInstructions is an ordered sequence of AsmInstruction, addresses
// strictly increasing.
type AsmInstructions []AsmInstruction
