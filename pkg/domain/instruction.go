package domain

// Opcode names an instruction. Barriers only look at the handful of
// operands listed on Instruction; everything else is carried opaquely.
type Opcode string

const (
	OpWithdrawAsset           Opcode = "WithdrawAsset"
	OpReserveAssetDeposited   Opcode = "ReserveAssetDeposited"
	OpReceiveTeleportedAsset  Opcode = "ReceiveTeleportedAsset"
	OpClaimAsset              Opcode = "ClaimAsset"
	OpQueryResponse           Opcode = "QueryResponse"
	OpTransferAsset           Opcode = "TransferAsset"
	OpTransferReserveAsset    Opcode = "TransferReserveAsset"
	OpTransact                Opcode = "Transact"
	OpClearOrigin             Opcode = "ClearOrigin"
	OpDescendOrigin           Opcode = "DescendOrigin"
	OpDepositAsset            Opcode = "DepositAsset"
	OpDepositReserveAsset     Opcode = "DepositReserveAsset"
	OpInitiateReserveWithdraw Opcode = "InitiateReserveWithdraw"
	OpInitiateTeleport        Opcode = "InitiateTeleport"
	OpBuyExecution            Opcode = "BuyExecution"
	OpUnpaidExecution         Opcode = "UnpaidExecution"
	OpRefundSurplus           Opcode = "RefundSurplus"
	OpSetErrorHandler         Opcode = "SetErrorHandler"
	OpSetAppendix             Opcode = "SetAppendix"
	OpSubscribeVersion        Opcode = "SubscribeVersion"
	OpUnsubscribeVersion      Opcode = "UnsubscribeVersion"
	OpExportMessage           Opcode = "ExportMessage"
	OpExecuteWithOrigin       Opcode = "ExecuteWithOrigin"
	OpSetTopic                Opcode = "SetTopic"
	OpClearTopic              Opcode = "ClearTopic"
)

// Asset is a fungible amount of some asset class.
type Asset struct {
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
}

// Instruction is one operation of a message.
type Instruction struct {
	Op Opcode `json:"op"`

	Assets []Asset `json:"assets,omitempty"`
	// WeightLimit bounds BuyExecution/UnpaidExecution; nil means unlimited.
	WeightLimit *Weight    `json:"weight_limit,omitempty"`
	Topic       *MessageID `json:"topic,omitempty"`
	QueryID     uint64     `json:"query_id,omitempty"`
	Querier     *Location  `json:"querier,omitempty"`
	Dest        *Location  `json:"dest,omitempty"`
	// Program holds the nested instructions of SetAppendix, SetErrorHandler
	// and ExecuteWithOrigin.
	Program Instructions `json:"program,omitempty"`
}

// Instructions is the ordered body of a message.
type Instructions []Instruction

// Clone deep-copies the sequence, including pointer operands and nested programs.
func (in Instructions) Clone() Instructions {
	if in == nil {
		return nil
	}
	out := make(Instructions, len(in))
	for i, inst := range in {
		out[i] = inst.Clone()
	}
	return out
}

// Ops lists the opcodes in order, for logs.
func (in Instructions) Ops() []Opcode {
	ops := make([]Opcode, len(in))
	for i, inst := range in {
		ops[i] = inst.Op
	}
	return ops
}

// Last returns the final instruction, if any.
func (in Instructions) Last() (Instruction, bool) {
	if len(in) == 0 {
		return Instruction{}, false
	}
	return in[len(in)-1], true
}

// Clone deep-copies a single instruction.
func (i Instruction) Clone() Instruction {
	out := i
	if i.Assets != nil {
		out.Assets = append([]Asset(nil), i.Assets...)
	}
	if i.WeightLimit != nil {
		w := *i.WeightLimit
		out.WeightLimit = &w
	}
	if i.Topic != nil {
		t := *i.Topic
		out.Topic = &t
	}
	if i.Querier != nil {
		q := *i.Querier
		out.Querier = &q
	}
	if i.Dest != nil {
		d := *i.Dest
		out.Dest = &d
	}
	out.Program = i.Program.Clone()
	return out
}

// Limited returns a pointer to w, for use as an instruction weight limit.
func Limited(w Weight) *Weight {
	return &w
}
