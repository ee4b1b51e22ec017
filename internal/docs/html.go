// Package docs renders invoice documents (HTML and PDF) for download and
// archives a copy under the configured invoices directory.
package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/services"
)

var htmlTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Invoice.Number}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 40px; color: #222;">
  <h1 style="margin-bottom: 0;">INVOICE {{.Invoice.Number}}</h1>
  <p style="color: #666; margin-top: 4px;">Date: {{.Date}} &middot; Salesman: {{.Invoice.Salesman}}</p>

  <h3 style="margin-bottom: 4px;">Bill To</h3>
  <p style="margin-top: 0;">
    {{.Customer.Name}}<br>
    {{.Customer.Phone}}{{if .Customer.Email}}<br>{{.Customer.Email}}{{end}}{{if .Customer.Address}}<br>{{.Customer.Address}}{{end}}
  </p>

  <table style="border-collapse: collapse; width: 100%; margin-top: 16px;">
    <tr style="background: #f0f0f0;">
      <th style="border: 1px solid #ccc; padding: 8px; text-align: left;">#</th>
      <th style="border: 1px solid #ccc; padding: 8px; text-align: left;">Product</th>
      <th style="border: 1px solid #ccc; padding: 8px; text-align: right;">Unit Price</th>
      <th style="border: 1px solid #ccc; padding: 8px; text-align: right;">Qty</th>
      <th style="border: 1px solid #ccc; padding: 8px; text-align: right;">Subtotal</th>
    </tr>
    {{range .Lines}}
    <tr>
      <td style="border: 1px solid #ccc; padding: 8px;">{{.N}}</td>
      <td style="border: 1px solid #ccc; padding: 8px;">{{.Product}}</td>
      <td style="border: 1px solid #ccc; padding: 8px; text-align: right;">${{.Price}}</td>
      <td style="border: 1px solid #ccc; padding: 8px; text-align: right;">{{.Quantity}}</td>
      <td style="border: 1px solid #ccc; padding: 8px; text-align: right;">${{.Subtotal}}</td>
    </tr>
    {{end}}
  </table>

  <table style="margin-top: 16px; margin-left: auto;">
    <tr><td style="padding: 4px 16px;">Total:</td><td style="text-align: right;"><b>${{.Total}}</b></td></tr>
    <tr><td style="padding: 4px 16px;">Paid:</td><td style="text-align: right;">${{.Paid}}</td></tr>
    <tr><td style="padding: 4px 16px;">Unpaid:</td><td style="text-align: right;">${{.Unpaid}}</td></tr>
    <tr><td style="padding: 4px 16px;">Status:</td><td style="text-align: right;">{{.Status}}</td></tr>
  </table>
</body>
</html>
`))

type line struct {
	N        int
	Product  string
	Price    string
	Quantity int
	Subtotal string
}

type htmlData struct {
	Invoice  models.Invoice
	Customer models.Customer
	Date     string
	Lines    []line
	Total    string
	Paid     string
	Unpaid   string
	Status   string
}

// InvoiceHTML renders the inline-styled HTML invoice document.
func InvoiceHTML(inv models.Invoice, customer models.Customer) ([]byte, error) {
	data := htmlData{
		Invoice:  inv,
		Customer: customer,
		Date:     inv.Date.Format("2006-01-02"),
		Total:    inv.TotalAmount.StringFixed(2),
		Paid:     inv.PaidAmount.StringFixed(2),
		Unpaid:   inv.UnpaidAmount.StringFixed(2),
		Status:   services.StatusLabel(inv.Status),
	}
	for i, it := range inv.Items {
		data.Lines = append(data.Lines, line{
			N:        i + 1,
			Product:  it.Product,
			Price:    it.Price.StringFixed(2),
			Quantity: it.Quantity,
			Subtotal: it.LineTotal().StringFixed(2),
		})
	}
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive writes a rendered document under dir, creating it if needed.
func Archive(dir, invoiceNumber, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", invoiceNumber, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
