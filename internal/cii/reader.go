package cii

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/einvoice/internal/codes"
	dec "github.com/rezonia/einvoice/internal/decimal"
	"github.com/rezonia/einvoice/internal/model"
)

// Parse reads CII XML into a Document. Monetary summation and tax
// breakdown elements on the wire are ignored; the calculator re-derives
// them from the line data.
func Parse(content []byte) (*model.Document, error) {
	xml := etree.NewDocument()
	if err := xml.ReadFromBytes(content); err != nil {
		return nil, model.NewParseError("CII", "xml", "failed to parse XML", err)
	}

	root := xml.Root()
	if root == nil || !strings.HasSuffix(root.Tag, "CrossIndustryInvoice") {
		return nil, model.NewParseError("CII", "root", "not a CrossIndustryInvoice document", nil)
	}

	doc := &model.Document{}

	ed := root.FindElement("rsm:ExchangedDocument")
	if ed == nil {
		return nil, model.NewParseError("CII", "rsm:ExchangedDocument", "missing element", nil)
	}
	doc.ID = text(ed, "ram:ID")
	doc.TypeCode = codes.DocumentTypeCode(text(ed, "ram:TypeCode"))
	if ds := text(ed, "ram:IssueDateTime/udt:DateTimeString"); ds != "" {
		issued, err := parseDate(ds)
		if err != nil {
			return nil, model.NewParseError("CII", "ram:IssueDateTime", "invalid date", err)
		}
		doc.IssueDate = issued
	}
	for _, note := range ed.FindElements("ram:IncludedNote/ram:Content") {
		doc.Notes = append(doc.Notes, note.Text())
	}

	tx := root.FindElement("rsm:SupplyChainTradeTransaction")
	if tx == nil {
		return nil, model.NewParseError("CII", "rsm:SupplyChainTradeTransaction", "missing element", nil)
	}

	for _, item := range tx.FindElements("ram:IncludedSupplyChainTradeLineItem") {
		line, err := parseLine(item)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, *line)
	}

	if agreement := tx.FindElement("ram:ApplicableHeaderTradeAgreement"); agreement != nil {
		if seller := agreement.FindElement("ram:SellerTradeParty"); seller != nil {
			doc.Seller = *parseParty(seller)
		}
		if buyer := agreement.FindElement("ram:BuyerTradeParty"); buyer != nil {
			doc.Buyer = *parseParty(buyer)
		}
		if rep := agreement.FindElement("ram:SellerTaxRepresentativeTradeParty"); rep != nil {
			doc.TaxRepresentative = parseParty(rep)
		}
	}

	if delivery := tx.FindElement("ram:ApplicableHeaderTradeDelivery"); delivery != nil {
		doc.Delivery = parseDelivery(delivery)
	}

	settlement := tx.FindElement("ram:ApplicableHeaderTradeSettlement")
	if settlement == nil {
		return nil, model.NewParseError("CII", "ram:ApplicableHeaderTradeSettlement", "missing element", nil)
	}
	doc.Currency = text(settlement, "ram:InvoiceCurrencyCode")

	for _, el := range settlement.FindElements("ram:SpecifiedTradeAllowanceCharge") {
		ac, err := parseAllowanceCharge(el)
		if err != nil {
			return nil, err
		}
		doc.AllowancesCharges = append(doc.AllowancesCharges, *ac)
	}

	if terms := settlement.FindElement("ram:SpecifiedTradePaymentTerms"); terms != nil {
		payment := &model.Payment{Terms: text(terms, "ram:Description")}
		if ds := text(terms, "ram:DueDateDateTime/udt:DateTimeString"); ds != "" {
			due, err := parseDate(ds)
			if err != nil {
				return nil, model.NewParseError("CII", "ram:DueDateDateTime", "invalid date", err)
			}
			payment.DueDate = &due
		}
		doc.Payment = payment
	}

	return doc, nil
}

func parseLine(item *etree.Element) (*model.Line, error) {
	line := &model.Line{
		ID:          text(item, "ram:AssociatedDocumentLineDocument/ram:LineID"),
		Note:        text(item, "ram:AssociatedDocumentLineDocument/ram:IncludedNote/ram:Content"),
		Name:        text(item, "ram:SpecifiedTradeProduct/ram:Name"),
		Description: text(item, "ram:SpecifiedTradeProduct/ram:Description"),
	}

	if agreement := item.FindElement("ram:SpecifiedLineTradeAgreement"); agreement != nil {
		if gross := agreement.FindElement("ram:GrossPriceProductTradePrice"); gross != nil {
			amount, err := decimalAt(gross, "ram:ChargeAmount", "line gross price")
			if err != nil {
				return nil, err
			}
			line.Price.GrossUnitPrice = amount
			if basis, err := optionalDecimal(gross, "ram:BasisQuantity", "line price basis quantity"); err != nil {
				return nil, err
			} else if basis != nil {
				line.Price.BasisQuantity = basis
			}
			for _, el := range gross.FindElements("ram:AppliedTradeAllowanceCharge") {
				ac, err := parseAllowanceCharge(el)
				if err != nil {
					return nil, err
				}
				line.Price.AllowancesCharges = append(line.Price.AllowancesCharges, *ac)
			}
		}
		if net := agreement.FindElement("ram:NetPriceProductTradePrice"); net != nil {
			amount, err := decimalAt(net, "ram:ChargeAmount", "line net price")
			if err != nil {
				return nil, err
			}
			line.Price.NetUnitPrice = amount
			if line.Price.BasisQuantity == nil {
				basis, err := optionalDecimal(net, "ram:BasisQuantity", "line price basis quantity")
				if err != nil {
					return nil, err
				}
				line.Price.BasisQuantity = basis
			}
		}
	}

	if qty := item.FindElement("ram:SpecifiedLineTradeDelivery/ram:BilledQuantity"); qty != nil {
		q, err := dec.FromString(qty.Text())
		if err != nil {
			return nil, model.NewParseError("CII", "ram:BilledQuantity", "invalid quantity", err)
		}
		line.Quantity = q
		line.Unit = qty.SelectAttrValue("unitCode", "")
	}

	if settlement := item.FindElement("ram:SpecifiedLineTradeSettlement"); settlement != nil {
		if tax := settlement.FindElement("ram:ApplicableTradeTax"); tax != nil {
			t, err := parseTradeTax(tax)
			if err != nil {
				return nil, err
			}
			line.Tax = *t
		}
		for _, el := range settlement.FindElements("ram:SpecifiedTradeAllowanceCharge") {
			ac, err := parseAllowanceCharge(el)
			if err != nil {
				return nil, err
			}
			line.AllowancesCharges = append(line.AllowancesCharges, *ac)
		}
	}

	return line, nil
}

func parseParty(el *etree.Element) *model.Party {
	p := &model.Party{
		ID:   text(el, "ram:ID"),
		Name: text(el, "ram:Name"),
	}
	if gid := el.FindElement("ram:GlobalID"); gid != nil {
		p.GlobalID = gid.Text()
		p.GlobalIDScheme = gid.SelectAttrValue("schemeID", "")
	}
	if addr := el.FindElement("ram:PostalTradeAddress"); addr != nil {
		p.Address = model.Address{
			PostCode:    text(addr, "ram:PostcodeCode"),
			Line1:       text(addr, "ram:LineOne"),
			Line2:       text(addr, "ram:LineTwo"),
			City:        text(addr, "ram:CityName"),
			Country:     text(addr, "ram:CountryID"),
			Subdivision: text(addr, "ram:CountrySubDivisionName"),
		}
	}
	for _, reg := range el.FindElements("ram:SpecifiedTaxRegistration/ram:ID") {
		switch reg.SelectAttrValue("schemeID", "") {
		case schemeVAT:
			p.VATID = reg.Text()
		case schemeFiscal:
			p.TaxID = reg.Text()
		}
	}
	return p
}

func parseDelivery(el *etree.Element) *model.Delivery {
	d := &model.Delivery{}
	if shipTo := el.FindElement("ram:ShipToTradeParty"); shipTo != nil {
		d.Name = text(shipTo, "ram:Name")
		if addr := shipTo.FindElement("ram:PostalTradeAddress"); addr != nil {
			d.Address = &model.Address{
				PostCode: text(addr, "ram:PostcodeCode"),
				Line1:    text(addr, "ram:LineOne"),
				City:     text(addr, "ram:CityName"),
				Country:  text(addr, "ram:CountryID"),
			}
		}
	}
	if ds := text(el, "ram:ActualDeliverySupplyChainEvent/ram:OccurrenceDateTime/udt:DateTimeString"); ds != "" {
		if date, err := parseDate(ds); err == nil {
			d.Date = &date
		}
	}
	if d.Name == "" && d.Address == nil && d.Date == nil {
		return nil
	}
	return d
}

func parseTradeTax(el *etree.Element) (*model.TaxAssignment, error) {
	t := &model.TaxAssignment{
		TypeCode: text(el, "ram:TypeCode"),
		Category: codes.TaxCategory(text(el, "ram:CategoryCode")),
	}
	rate, err := optionalDecimal(el, "ram:RateApplicablePercent", "tax rate")
	if err != nil {
		return nil, err
	}
	t.RatePercent = rate
	return t, nil
}

func parseAllowanceCharge(el *etree.Element) (*model.AllowanceCharge, error) {
	ac := &model.AllowanceCharge{
		ChargeIndicator: text(el, "ram:ChargeIndicator/udt:Indicator") == "true",
		ReasonCode:      text(el, "ram:ReasonCode"),
		Reason:          text(el, "ram:Reason"),
	}

	amount, err := decimalAt(el, "ram:ActualAmount", "allowance/charge amount")
	if err != nil {
		return nil, err
	}
	ac.ActualAmount = *amount

	if ac.BasisAmount, err = optionalDecimal(el, "ram:BasisAmount", "allowance/charge basis"); err != nil {
		return nil, err
	}
	if ac.Percent, err = optionalDecimal(el, "ram:CalculationPercent", "allowance/charge percent"); err != nil {
		return nil, err
	}

	if tax := el.FindElement("ram:CategoryTradeTax"); tax != nil {
		t, err := parseTradeTax(tax)
		if err != nil {
			return nil, err
		}
		ac.Tax = *t
	}
	return ac, nil
}

func text(el *etree.Element, path string) string {
	if found := el.FindElement(path); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

func decimalAt(el *etree.Element, path, field string) (*decimal.Decimal, error) {
	found := el.FindElement(path)
	if found == nil {
		return nil, model.NewParseError("CII", field, "missing "+path, nil)
	}
	d, err := dec.FromString(strings.TrimSpace(found.Text()))
	if err != nil {
		return nil, model.NewParseError("CII", field, "invalid amount", err)
	}
	return &d, nil
}

func optionalDecimal(el *etree.Element, path, field string) (*decimal.Decimal, error) {
	if el.FindElement(path) == nil {
		return nil, nil
	}
	return decimalAt(el, path, field)
}
