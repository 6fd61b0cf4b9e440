package engine

// FaultCode enumerates the expected, recoverable rejections of a turn.
// A fault never mutates session state and is surfaced to the player
// through narration, never as a raw code.
type FaultCode string

const (
	FaultNotVisible         FaultCode = "NOT_VISIBLE"
	FaultExitLocked         FaultCode = "EXIT_LOCKED"
	FaultPreconditionFailed FaultCode = "PRECONDITION_FAILED"
	FaultItemNotPortable    FaultCode = "ITEM_NOT_PORTABLE"
	FaultAlreadyDone        FaultCode = "ALREADY_DONE"
	FaultSafetyGuardrail    FaultCode = "SAFETY_GUARDRAIL"
	FaultNoExit             FaultCode = "NO_EXIT"
	FaultAmbiguousTarget    FaultCode = "AMBIGUOUS_TARGET"
)

// Fault is a structured, non-fatal rejection of a turn.
type Fault struct {
	Code    FaultCode `json:"code"`
	Message string    `json:"message"`
}

func fault(code FaultCode, msg string) *Fault {
	return &Fault{Code: code, Message: msg}
}
