package quality

type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "Warning"
	StatusError   Status = "Error"
)

const (
	MsgHighDrop        = "High Voltage Drop"
	MsgLowDF           = "Low Damping Factor"
	MsgCriticalDrop    = "Critical Voltage Drop"
	MsgCriticalDF      = "Critical Damping Factor"
	MsgLowHeadroom     = "Low Headroom"
	MsgNoSpeaker       = "No Speaker"
	MsgNoCable         = "No Cable"
	MsgUpstreamError   = "Upstream Error"
	MsgCalculationFail = "Calculation Fault"
)

// Input carries the figures of one node. DampingFactor 0 means not
// applicable (constant-voltage lines, or an unbounded DF).
type Input struct {
	DropPercent     float64
	DampingFactor   float64
	HeadroomPercent float64
	ConstantVoltage bool
	IsRoot          bool
}

type Verdict struct {
	Status  Status
	Message string
}

// Classify applies the rules in order; an Error is never downgraded.
func Classify(in Input, p Profile) Verdict {
	v := Verdict{Status: StatusOK}
	dropWarn, dropErr := p.DropLimits(in.ConstantVoltage)
	checkDF := !in.ConstantVoltage && in.DampingFactor > 0

	if in.DropPercent > dropWarn {
		v = Verdict{Status: StatusWarning, Message: MsgHighDrop}
	}
	if checkDF && in.DampingFactor < p.DFWarn && v.Status != StatusError {
		v = Verdict{Status: StatusWarning, Message: MsgLowDF}
	}
	if in.DropPercent > dropErr {
		v = Verdict{Status: StatusError, Message: MsgCriticalDrop}
	}
	if checkDF && in.DampingFactor < p.DFErr {
		v = Verdict{Status: StatusError, Message: MsgCriticalDF}
	}
	if in.IsRoot && in.HeadroomPercent > p.HeadroomWarn*100 {
		if v.Status != StatusError {
			v.Status = StatusWarning
		}
		v.Message = MsgLowHeadroom
	}
	return v
}
