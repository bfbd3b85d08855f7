// Package container handles the Factur-X PDF container: an invoice PDF
// with the CII XML embedded as a file attachment.
package container

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/cli"
)

// AttachmentName is the canonical attachment file name written on embed
const AttachmentName = "factur-x.xml"

// attachmentNames are the names recognized on extraction, in order of
// preference. ZUGFeRD 1.x used zugferd-invoice.xml, 2.x factur-x.xml.
var attachmentNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"xrechnung.xml",
}

// Extract pulls the embedded invoice XML out of a PDF and returns its
// content. The PDF itself is left untouched.
func Extract(pdfPath string) ([]byte, error) {
	names, err := cli.ListAttachmentsFile(pdfPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing attachments of %s: %w", pdfPath, err)
	}

	name, ok := matchAttachment(names)
	if !ok {
		return nil, fmt.Errorf("%s: no embedded invoice XML found", pdfPath)
	}

	outDir, err := os.MkdirTemp("", "facturx-extract-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractAttachmentsFile(pdfPath, outDir, []string{name}, nil); err != nil {
		return nil, fmt.Errorf("extracting %s from %s: %w", name, pdfPath, err)
	}

	return os.ReadFile(filepath.Join(outDir, name))
}

// Embed attaches invoice XML to a PDF, writing the result to outPath.
// The attachment is named factur-x.xml regardless of the source file.
func Embed(pdfPath string, xml []byte, outPath string) error {
	tmpDir, err := os.MkdirTemp("", "facturx-embed-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	xmlPath := filepath.Join(tmpDir, AttachmentName)
	if err := os.WriteFile(xmlPath, xml, 0o644); err != nil {
		return err
	}

	if err := api.AddAttachmentsFile(pdfPath, outPath, []string{xmlPath}, false, nil); err != nil {
		return fmt.Errorf("embedding %s into %s: %w", AttachmentName, pdfPath, err)
	}
	return nil
}

// matchAttachment picks the first known invoice attachment name. The
// listing may decorate names with metadata, so matching is by substring.
func matchAttachment(names []string) (string, bool) {
	for _, want := range attachmentNames {
		for _, have := range names {
			if strings.Contains(strings.ToLower(have), want) {
				return want, true
			}
		}
	}
	return "", false
}
