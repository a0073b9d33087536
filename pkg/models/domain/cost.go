package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostPacket accumulates the daily and month-to-date cost of one usage type.
// Both values only ever grow; a negative increment means the upstream ledger
// is corrupt and aborts the run.
type CostPacket struct {
	daily   decimal.Decimal
	monthly decimal.Decimal
}

// NewCostPacket seeds a packet with explicit totals. Negative seeds are legal:
// warehouse-side aggregates arrive net of credits. Only increments are
// validated.
func NewCostPacket(daily, monthly decimal.Decimal) *CostPacket {
	return &CostPacket{daily: daily, monthly: monthly}
}

func ZeroCostPacket() *CostPacket {
	return &CostPacket{}
}

func (p *CostPacket) AddDaily(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("negative daily cost increment: %s", amount)
	}
	p.daily = p.daily.Add(amount)
	return nil
}

func (p *CostPacket) AddMonthly(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("negative monthly cost increment: %s", amount)
	}
	p.monthly = p.monthly.Add(amount)
	return nil
}

func (p *CostPacket) Daily() decimal.Decimal {
	return p.daily
}

func (p *CostPacket) Monthly() decimal.Decimal {
	return p.monthly
}

// Clone returns an independent copy. Single-usage-type resource copies rely on
// this so that a derived resource never aliases its parent's accumulators.
func (p *CostPacket) Clone() *CostPacket {
	return &CostPacket{daily: p.daily, monthly: p.monthly}
}

// CostTotal is the whole-dollar leaf of a finished aggregation. Costs are
// truncated, not rounded, so anything under $1 reports as 0.
type CostTotal struct {
	Daily   int64 `json:"daily"`
	Monthly int64 `json:"monthly"`
}

func TotalOf(daily, monthly decimal.Decimal) CostTotal {
	return CostTotal{
		Daily:   daily.IntPart(),
		Monthly: monthly.IntPart(),
	}
}
