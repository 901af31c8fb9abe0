package api

import (
	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/shopspring/decimal"
)

// Money is rendered as a fixed two-decimal string so clients never see
// binary floating point.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type vehicleLineResponse struct {
	Vehicle      domain.Vehicle `json:"vehicle"`
	TaxAmount    string         `json:"taxAmount"`
	RefundAmount string         `json:"refundAmount"`
}

type breakdownResponse struct {
	TotalTax         string                `json:"totalTax"`
	ServiceFee       string                `json:"serviceFee"`
	SalesTax         string                `json:"salesTax"`
	SalesTaxRate     string                `json:"salesTaxRate"`
	GrandTotal       string                `json:"grandTotal"`
	TotalRefund      string                `json:"totalRefund"`
	VehicleBreakdown []vehicleLineResponse `json:"vehicleBreakdown"`
	TableVersion     string                `json:"tableVersion"`
	SalesTaxTxID     string                `json:"salesTaxTransactionId,omitempty"`
}

// quoteResponse mirrors pricing.AggregateResult.
type quoteResponse struct {
	Success   bool               `json:"success"`
	Breakdown *breakdownResponse `json:"breakdown,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func newQuoteResponse(res pricing.AggregateResult) quoteResponse {
	out := quoteResponse{Success: res.Success, Error: res.Error}
	if !res.Success || res.Breakdown == nil {
		return out
	}

	b := res.Breakdown
	lines := make([]vehicleLineResponse, 0, len(b.VehicleBreakdown))
	for _, l := range b.VehicleBreakdown {
		lines = append(lines, vehicleLineResponse{
			Vehicle:      l.Vehicle,
			TaxAmount:    money(l.TaxAmount),
			RefundAmount: money(l.RefundAmount),
		})
	}

	out.Breakdown = &breakdownResponse{
		TotalTax:         money(b.TotalTax),
		ServiceFee:       money(b.ServiceFee),
		SalesTax:         money(b.SalesTax),
		SalesTaxRate:     b.SalesTaxRate.String(),
		GrandTotal:       money(b.GrandTotal),
		TotalRefund:      money(b.TotalRefund),
		VehicleBreakdown: lines,
		TableVersion:     b.TableVersion,
		SalesTaxTxID:     b.SalesTaxTxID,
	}
	return out
}

type amendmentResponse struct {
	TotalTax   string `json:"totalTax"`
	ServiceFee string `json:"serviceFee"`
	GrandTotal string `json:"grandTotal"`
}

func newAmendmentResponse(q pricing.AmendmentQuote) amendmentResponse {
	return amendmentResponse{
		TotalTax:   money(q.TotalTax),
		ServiceFee: money(q.ServiceFee),
		GrandTotal: money(q.GrandTotal),
	}
}
