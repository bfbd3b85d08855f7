package einvoice

import (
	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/container"
	"github.com/rezonia/einvoice/internal/totals"
)

// ProcessResult bundles the outcome of a full processing run: the
// document with calculated totals and the rule validation verdict.
type ProcessResult struct {
	Document *Document `json:"document"`
	Result   Result    `json:"result"`
}

// Processor runs the calculate then validate pipeline over documents
// and over serialized invoices.
type Processor struct {
	options Options
}

// NewProcessor creates a processor with default calculation options
func NewProcessor() *Processor {
	return &Processor{}
}

// NewProcessorWithOptions creates a processor with the given
// calculation options, applied to every document it processes
func NewProcessorWithOptions(opts Options) *Processor {
	return &Processor{options: opts}
}

// Process calculates totals for the document and validates it
func (p *Processor) Process(doc *Document) (*ProcessResult, error) {
	if err := totals.Calculate(doc, p.options); err != nil {
		return nil, err
	}
	return &ProcessResult{
		Document: doc,
		Result:   Validate(doc),
	}, nil
}

// ProcessXML parses CII XML, calculates totals and validates
func (p *Processor) ProcessXML(data []byte) (*ProcessResult, error) {
	doc, err := cii.Parse(data)
	if err != nil {
		return nil, err
	}
	return p.Process(doc)
}

// ProcessPDF extracts the embedded invoice XML from a Factur-X PDF,
// then parses, calculates and validates it
func (p *Processor) ProcessPDF(pdfPath string) (*ProcessResult, error) {
	xml, err := container.Extract(pdfPath)
	if err != nil {
		return nil, err
	}
	return p.ProcessXML(xml)
}

// WriteXML serializes a calculated document as CII XML
func WriteXML(doc *Document) ([]byte, error) {
	return cii.Write(doc)
}

// ParseXML parses CII XML into a document without calculating totals
func ParseXML(data []byte) (*Document, error) {
	return cii.Parse(data)
}

// EmbedXML attaches invoice XML to a PDF, creating a Factur-X container
func EmbedXML(pdfPath string, xml []byte, outPath string) error {
	return container.Embed(pdfPath, xml, outPath)
}

// ExtractXML pulls the embedded invoice XML out of a Factur-X PDF
func ExtractXML(pdfPath string) ([]byte, error) {
	return container.Extract(pdfPath)
}
