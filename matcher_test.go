package asmcmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fnWith(instructions ...AsmInstruction) *Function {
	return &Function{Instructions: instructions, pseudoSymbols: newPseudoSymbolTable()}
}

// S1: two identical 3-instruction sequences.
func TestRunComparison_IdenticalSequencesAllMatch(t *testing.T) {
	mk := func() *Function {
		return fnWith(
			AsmInstruction{Address: 0x1000, Text: "nop"},
			AsmInstruction{Address: 0x1001, Text: "nop"},
			AsmInstruction{Address: 0x1002, Text: "ret"},
		)
	}

	result := RunComparison(mk(), mk(), 4)

	assert.Equal(t, uint32(3), result.MatchCount)
	assert.Equal(t, uint32(0), result.MaybeMatchCount)
	assert.Equal(t, uint32(0), result.MismatchCount)
	assert.Equal(t, 100, result.SimilarityPercent(Lenient))
	require.Len(t, result.Records, 3)
	for _, rec := range result.Records {
		require.NotNil(t, rec.Instruction)
		assert.NotNil(t, rec.Instruction.Left)
		assert.NotNil(t, rec.Instruction.Right)
		assert.True(t, rec.Instruction.MismatchInfo.IsMatch())
	}
}

// S2: renamed global symbol, neither side an unknown-form prefix.
func TestRunComparison_RenamedGlobalIsHardMismatch(t *testing.T) {
	left := fnWith(AsmInstruction{Address: 0x1000, Text: `call "ExportedFoo"`})
	right := fnWith(AsmInstruction{Address: 0x1000, Text: `call "ExportedBar"`})

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 1)
	info := result.Records[0].Instruction.MismatchInfo
	assert.NotZero(t, info.MismatchBits&(1<<1))
	assert.Equal(t, uint32(1), result.MismatchCount)
}

// S3: known real symbol on one side, unknown-form pseudo symbol on the
// other.
func TestRunComparison_KnownVsPseudoIsMaybeMismatch(t *testing.T) {
	left := fnWith(AsmInstruction{Address: 0x1000, Text: `call "sub_401000"`})
	right := fnWith(AsmInstruction{Address: 0x1000, Text: `call "RealName"`})

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 1)
	info := result.Records[0].Instruction.MismatchInfo
	assert.Equal(t, uint16(0), info.MismatchBits)
	assert.NotZero(t, info.MaybeMismatchBits&(1<<1))
	assert.Equal(t, uint32(1), result.MaybeMatchCount)
	assert.Equal(t, uint32(0), result.MatchCount)

	assert.Equal(t, 100, result.SimilarityPercent(Lenient))
	assert.Equal(t, 0, result.SimilarityPercent(Strict))
}

// S4: extra instruction on the right. The aligner's lookahead cannot
// realign here: once "A" matches, left has only "B" left at its final
// index, so probing one further into left (k0=1) is already out of
// bounds on the very first lookahead round — matching the original's
// loop guard, the search gives up immediately rather than still trying
// the opposite side. The result is a head-to-head mismatch for B vs X
// followed by a trailing Missing-left record for the unconsumed B on
// the right, not a realignment across X.
func TestRunComparison_ExtraInstructionOnRightEmitsTrailingMissingRecord(t *testing.T) {
	left := fnWith(
		AsmInstruction{Address: 0x1000, Text: "A"},
		AsmInstruction{Address: 0x1001, Text: "B"},
	)
	right := fnWith(
		AsmInstruction{Address: 0x1000, Text: "A"},
		AsmInstruction{Address: 0x1001, Text: "X"},
		AsmInstruction{Address: 0x1002, Text: "B"},
	)

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 3)
	assert.Equal(t, uint32(1), result.MatchCount)
	assert.Equal(t, uint32(2), result.MismatchCount)

	mismatchRec := result.Records[1].Instruction
	require.NotNil(t, mismatchRec)
	require.NotNil(t, mismatchRec.Left)
	require.NotNil(t, mismatchRec.Right)
	assert.Equal(t, "B", mismatchRec.Left.Text)
	assert.Equal(t, "X", mismatchRec.Right.Text)

	trailing := result.Records[2].Instruction
	require.NotNil(t, trailing)
	assert.Nil(t, trailing.Left)
	require.NotNil(t, trailing.Right)
	assert.Equal(t, "B", trailing.Right.Text)
	assert.NotZero(t, trailing.MismatchInfo.MismatchReasons&ReasonMissingLeft)
}

// A short function entirely subsumed by a longer one's trailing
// instructions: the lookahead can never catch up since left runs out of
// room to probe ahead before right does, so every position mismatches or
// is reported missing-right, with no realignment.
func TestRunComparison_LeftHasExtraLeadingInstructionsNoRealignment(t *testing.T) {
	left := fnWith(
		AsmInstruction{Address: 0x1000, Text: "xor eax, eax"},
		AsmInstruction{Address: 0x1002, Text: "push ebp"},
		AsmInstruction{Address: 0x1003, Text: "ret"},
	)
	right := fnWith(
		AsmInstruction{Address: 0x1000, Text: "ret"},
	)

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 3)
	assert.Equal(t, uint32(0), result.MatchCount)
	assert.Equal(t, uint32(3), result.MismatchCount)

	first := result.Records[0].Instruction
	require.NotNil(t, first)
	assert.NotZero(t, first.MismatchInfo.MismatchBits)

	second := result.Records[1].Instruction
	require.NotNil(t, second)
	require.NotNil(t, second.Left)
	assert.Nil(t, second.Right)
	assert.NotZero(t, second.MismatchInfo.MismatchReasons&ReasonMissingRight)

	third := result.Records[2].Instruction
	require.NotNil(t, third)
	require.NotNil(t, third.Left)
	assert.Nil(t, third.Right)
	assert.NotZero(t, third.MismatchInfo.MismatchReasons&ReasonMissingRight)
}

// S5: identical jump-target text but differing jump length.
func TestRunComparison_ShortJumpLengthChangeIsMismatch(t *testing.T) {
	left := fnWith(AsmInstruction{Address: 0x1000, Text: `jz "loc_401020"`, IsJump: true, JumpLen: 4})
	right := fnWith(AsmInstruction{Address: 0x1000, Text: `jz "loc_401020"`, IsJump: true, JumpLen: 6})

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 1)
	info := result.Records[0].Instruction.MismatchInfo
	assert.NotZero(t, info.MismatchReasons&ReasonJumpLen)
	assert.Equal(t, uint16(0), info.MismatchBits)
	assert.Equal(t, uint16(0), info.MaybeMismatchBits)
	assert.Equal(t, uint32(1), result.MismatchCount)
}

// S6: one side failed to decode.
func TestRunComparison_DecodeFailureOneSideIsMismatch(t *testing.T) {
	left := fnWith(AsmInstruction{Address: 0x1000, Invalid: true, Bytes: [11]byte{0xFF}, Len: 1})
	right := fnWith(AsmInstruction{Address: 0x1000, Text: "nop"})

	result := RunComparison(left, right, 4)

	require.Len(t, result.Records, 1)
	info := result.Records[0].Instruction.MismatchInfo
	assert.NotZero(t, info.MismatchReasons&ReasonInvalidLeft)
	assert.Equal(t, uint32(1), result.MismatchCount)
}

func TestRunComparison_SelfComparisonHasNoMismatches(t *testing.T) {
	mk := func() *Function {
		return fnWith(
			AsmInstruction{Address: 0x1000, Text: "push ebp"},
			AsmInstruction{Address: 0x1001, Text: "mov ebp, esp"},
			AsmInstruction{Address: 0x1003, Text: "pop ebp"},
			AsmInstruction{Address: 0x1004, Text: "ret"},
		)
	}
	a := mk()

	result := RunComparison(a, mk(), 4)

	assert.Equal(t, uint32(0), result.MismatchCount)
	assert.Equal(t, uint32(len(a.Instructions)), result.MatchCount)
	assert.Equal(t, 1.0, result.Similarity(Lenient))
}
