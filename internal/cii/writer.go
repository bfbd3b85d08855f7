package cii

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/model"
)

// Write renders a totaled document as CII XML. The document must have
// passed the totals calculator: a nil Totals block is an error.
func Write(doc *model.Document) ([]byte, error) {
	if doc.Totals == nil {
		return nil, model.NewPreconditionError("totals", "document has no computed totals", nil)
	}

	xml := etree.NewDocument()
	xml.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := xml.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", NsRSM)
	root.CreateAttr("xmlns:ram", NsRAM)
	root.CreateAttr("xmlns:udt", NsUDT)
	root.CreateAttr("xmlns:qdt", NsQDT)

	writeContext(root)
	writeExchangedDocument(root, doc)
	writeTransaction(root, doc)

	xml.Indent(2)
	return xml.WriteToBytes()
}

func writeContext(root *etree.Element) {
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	param := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	param.CreateElement("ram:ID").SetText(GuidelineEN16931)
}

func writeExchangedDocument(root *etree.Element, doc *model.Document) {
	ed := root.CreateElement("rsm:ExchangedDocument")
	ed.CreateElement("ram:ID").SetText(doc.ID)
	ed.CreateElement("ram:TypeCode").SetText(string(doc.TypeCode))

	issue := ed.CreateElement("ram:IssueDateTime")
	dt := issue.CreateElement("udt:DateTimeString")
	dt.CreateAttr("format", dateFormatCode)
	dt.SetText(formatDate(doc.IssueDate))

	for _, note := range doc.Notes {
		n := ed.CreateElement("ram:IncludedNote")
		n.CreateElement("ram:Content").SetText(note)
	}
}

func writeTransaction(root *etree.Element, doc *model.Document) {
	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")

	for i := range doc.Lines {
		writeLine(tx, &doc.Lines[i])
	}

	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	writeParty(agreement, "ram:SellerTradeParty", &doc.Seller)
	writeParty(agreement, "ram:BuyerTradeParty", &doc.Buyer)
	if doc.TaxRepresentative != nil {
		writeParty(agreement, "ram:SellerTaxRepresentativeTradeParty", doc.TaxRepresentative)
	}

	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	if doc.Delivery != nil {
		if doc.Delivery.Name != "" || doc.Delivery.Address != nil {
			shipTo := delivery.CreateElement("ram:ShipToTradeParty")
			if doc.Delivery.Name != "" {
				shipTo.CreateElement("ram:Name").SetText(doc.Delivery.Name)
			}
			if doc.Delivery.Address != nil {
				writeAddress(shipTo, doc.Delivery.Address)
			}
		}
		if doc.Delivery.Date != nil {
			event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
			occ := event.CreateElement("ram:OccurrenceDateTime")
			dt := occ.CreateElement("udt:DateTimeString")
			dt.CreateAttr("format", dateFormatCode)
			dt.SetText(formatDate(*doc.Delivery.Date))
		}
	}

	writeSettlement(tx, doc)
}

func writeLine(tx *etree.Element, line *model.Line) {
	item := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := item.CreateElement("ram:AssociatedDocumentLineDocument")
	lineDoc.CreateElement("ram:LineID").SetText(line.ID)
	if line.Note != "" {
		note := lineDoc.CreateElement("ram:IncludedNote")
		note.CreateElement("ram:Content").SetText(line.Note)
	}

	product := item.CreateElement("ram:SpecifiedTradeProduct")
	product.CreateElement("ram:Name").SetText(line.Name)
	if line.Description != "" {
		product.CreateElement("ram:Description").SetText(line.Description)
	}

	agreement := item.CreateElement("ram:SpecifiedLineTradeAgreement")
	if line.Price.GrossUnitPrice != nil {
		gross := agreement.CreateElement("ram:GrossPriceProductTradePrice")
		gross.CreateElement("ram:ChargeAmount").SetText(formatAmount(*line.Price.GrossUnitPrice))
		writePriceBasis(gross, line.Price.BasisQuantity)
		for _, ac := range line.Price.AllowancesCharges {
			writeAllowanceCharge(gross, "ram:AppliedTradeAllowanceCharge", &ac, false)
		}
	}
	if line.Price.NetUnitPrice != nil {
		net := agreement.CreateElement("ram:NetPriceProductTradePrice")
		net.CreateElement("ram:ChargeAmount").SetText(formatAmount(*line.Price.NetUnitPrice))
		writePriceBasis(net, line.Price.BasisQuantity)
	}

	lineDelivery := item.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := lineDelivery.CreateElement("ram:BilledQuantity")
	if line.Unit != "" {
		qty.CreateAttr("unitCode", line.Unit)
	}
	qty.SetText(line.Quantity.String())

	settlement := item.CreateElement("ram:SpecifiedLineTradeSettlement")
	writeTradeTax(settlement, "ram:ApplicableTradeTax", &line.Tax)
	for _, ac := range line.AllowancesCharges {
		writeAllowanceCharge(settlement, "ram:SpecifiedTradeAllowanceCharge", &ac, false)
	}
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	sum.CreateElement("ram:LineTotalAmount").SetText(formatAmount(line.NetTotal))
}

func writePriceBasis(price *etree.Element, basis *decimal.Decimal) {
	if basis != nil {
		price.CreateElement("ram:BasisQuantity").SetText(basis.String())
	}
}

func writeParty(parent *etree.Element, tag string, p *model.Party) {
	el := parent.CreateElement(tag)
	if p.ID != "" {
		el.CreateElement("ram:ID").SetText(p.ID)
	}
	if p.GlobalID != "" {
		gid := el.CreateElement("ram:GlobalID")
		if p.GlobalIDScheme != "" {
			gid.CreateAttr("schemeID", p.GlobalIDScheme)
		}
		gid.SetText(p.GlobalID)
	}
	el.CreateElement("ram:Name").SetText(p.Name)
	writeAddress(el, &p.Address)
	if p.TaxID != "" {
		writeTaxRegistration(el, schemeFiscal, p.TaxID)
	}
	if p.VATID != "" {
		writeTaxRegistration(el, schemeVAT, p.VATID)
	}
}

func writeTaxRegistration(party *etree.Element, scheme, id string) {
	reg := party.CreateElement("ram:SpecifiedTaxRegistration")
	regID := reg.CreateElement("ram:ID")
	regID.CreateAttr("schemeID", scheme)
	regID.SetText(id)
}

func writeAddress(parent *etree.Element, a *model.Address) {
	el := parent.CreateElement("ram:PostalTradeAddress")
	if a.PostCode != "" {
		el.CreateElement("ram:PostcodeCode").SetText(a.PostCode)
	}
	if a.Line1 != "" {
		el.CreateElement("ram:LineOne").SetText(a.Line1)
	}
	if a.Line2 != "" {
		el.CreateElement("ram:LineTwo").SetText(a.Line2)
	}
	if a.City != "" {
		el.CreateElement("ram:CityName").SetText(a.City)
	}
	el.CreateElement("ram:CountryID").SetText(a.Country)
	if a.Subdivision != "" {
		el.CreateElement("ram:CountrySubDivisionName").SetText(a.Subdivision)
	}
}

func writeTradeTax(parent *etree.Element, tag string, t *model.TaxAssignment) {
	el := parent.CreateElement(tag)
	el.CreateElement("ram:TypeCode").SetText(t.TypeCode)
	el.CreateElement("ram:CategoryCode").SetText(string(t.Category))
	if t.RatePercent != nil {
		el.CreateElement("ram:RateApplicablePercent").SetText(formatRate(*t.RatePercent))
	}
}

func writeAllowanceCharge(parent *etree.Element, tag string, ac *model.AllowanceCharge, withTax bool) {
	el := parent.CreateElement(tag)

	indicator := el.CreateElement("ram:ChargeIndicator")
	indicator.CreateElement("udt:Indicator").SetText(fmt.Sprintf("%t", ac.ChargeIndicator))

	if ac.Percent != nil {
		el.CreateElement("ram:CalculationPercent").SetText(formatRate(*ac.Percent))
	}
	if ac.BasisAmount != nil {
		el.CreateElement("ram:BasisAmount").SetText(formatAmount(*ac.BasisAmount))
	}
	el.CreateElement("ram:ActualAmount").SetText(formatAmount(ac.ActualAmount))
	if ac.ReasonCode != "" {
		el.CreateElement("ram:ReasonCode").SetText(ac.ReasonCode)
	}
	if ac.Reason != "" {
		el.CreateElement("ram:Reason").SetText(ac.Reason)
	}
	if withTax {
		writeTradeTax(el, "ram:CategoryTradeTax", &ac.Tax)
	}
}

func writeSettlement(tx *etree.Element, doc *model.Document) {
	s := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	s.CreateElement("ram:InvoiceCurrencyCode").SetText(doc.Currency)
	if doc.Totals.TaxCurrency != "" {
		s.CreateElement("ram:TaxCurrencyCode").SetText(doc.Totals.TaxCurrency)
	}

	for _, e := range doc.Totals.TaxBreakdown {
		writeBreakdownEntry(s, e)
	}

	for i := range doc.AllowancesCharges {
		writeAllowanceCharge(s, "ram:SpecifiedTradeAllowanceCharge", &doc.AllowancesCharges[i], true)
	}

	if doc.Payment != nil && (doc.Payment.Terms != "" || doc.Payment.DueDate != nil) {
		terms := s.CreateElement("ram:SpecifiedTradePaymentTerms")
		if doc.Payment.Terms != "" {
			terms.CreateElement("ram:Description").SetText(doc.Payment.Terms)
		}
		if doc.Payment.DueDate != nil {
			due := terms.CreateElement("ram:DueDateDateTime")
			dt := due.CreateElement("udt:DateTimeString")
			dt.CreateAttr("format", dateFormatCode)
			dt.SetText(formatDate(*doc.Payment.DueDate))
		}
	}

	writeMonetarySummation(s, doc)
}

func writeBreakdownEntry(s *etree.Element, e *model.TaxBreakdownEntry) {
	el := s.CreateElement("ram:ApplicableTradeTax")
	el.CreateElement("ram:CalculatedAmount").SetText(formatAmount(e.CalculatedAmount))
	el.CreateElement("ram:TypeCode").SetText("VAT")
	if e.ExemptionReason != "" {
		el.CreateElement("ram:ExemptionReason").SetText(e.ExemptionReason)
	}
	el.CreateElement("ram:BasisAmount").SetText(formatAmount(e.BasisAmount))
	el.CreateElement("ram:CategoryCode").SetText(string(e.Category))
	if e.ExemptionReasonCode != "" {
		el.CreateElement("ram:ExemptionReasonCode").SetText(string(e.ExemptionReasonCode))
	}
	if e.TaxPointDate != nil {
		tp := el.CreateElement("ram:TaxPointDate")
		ds := tp.CreateElement("udt:DateString")
		ds.CreateAttr("format", dateFormatCode)
		ds.SetText(formatDate(*e.TaxPointDate))
	}
	if e.DueDateTypeCode != "" {
		el.CreateElement("ram:DueDateTypeCode").SetText(string(e.DueDateTypeCode))
	}
	if e.RatePercent != nil {
		el.CreateElement("ram:RateApplicablePercent").SetText(formatRate(*e.RatePercent))
	}
}

func writeMonetarySummation(s *etree.Element, doc *model.Document) {
	t := doc.Totals
	sum := s.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	sum.CreateElement("ram:LineTotalAmount").SetText(formatAmount(t.LineTotal))
	sum.CreateElement("ram:AllowanceTotalAmount").SetText(formatAmount(t.AllowanceTotal))
	sum.CreateElement("ram:ChargeTotalAmount").SetText(formatAmount(t.ChargeTotal))
	sum.CreateElement("ram:TaxBasisTotalAmount").SetText(formatAmount(t.NetTotal))
	for _, ta := range t.TaxTotals {
		tax := sum.CreateElement("ram:TaxTotalAmount")
		tax.CreateAttr("currencyID", ta.Currency)
		tax.SetText(formatAmount(ta.Amount))
	}
	sum.CreateElement("ram:GrandTotalAmount").SetText(formatAmount(t.GrossTotal))
	if t.Prepaid != nil {
		sum.CreateElement("ram:TotalPrepaidAmount").SetText(formatAmount(*t.Prepaid))
	}
	if t.Rounding != nil {
		sum.CreateElement("ram:RoundingAmount").SetText(formatAmount(*t.Rounding))
	}
	sum.CreateElement("ram:DuePayableAmount").SetText(formatAmount(t.PayableAmount))
}
