// Package message renders the plain-text invoice shared over WhatsApp.
// The layout (field order, separators, labels) mirrors the messages already
// sent to recipients, so changes here break continuity with past invoices.
package message

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baraa-scout/salespoint/internal/models"
)

const separator = "━━━━━━━━━━━━━━━━━━"

// InvoiceText renders the WhatsApp invoice body and returns it with the
// computed total. Item prices and names come from the invoice snapshots.
func InvoiceText(customer models.Customer, items []models.InvoiceItem, invoiceNumber string, paid decimal.Decimal, now time.Time) (string, decimal.Decimal) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}

	var b strings.Builder
	b.WriteString("*Thank you for visiting the Third Stationery Exhibition*\n\n")
	fmt.Fprintf(&b, "*INVOICE #%s*\n", invoiceNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02 15:04"))
	b.WriteString("*BILL TO*\n")
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Name: %s\n", customer.Name)
	fmt.Fprintf(&b, "Phone: %s", customer.Phone)
	if customer.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", customer.Email)
	}
	if customer.Address != "" {
		fmt.Fprintf(&b, "\nAddress: %s", customer.Address)
	}

	b.WriteString("\n\n*ITEMS*\n" + separator + "\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Product)
		fmt.Fprintf(&b, "   Qty: %d × $%s\n", it.Quantity, it.Price.StringFixed(2))
		fmt.Fprintf(&b, "   Subtotal: $%s\n\n", it.LineTotal().StringFixed(2))
	}

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "TOTAL: $%s\n", total.StringFixed(2))
	b.WriteString(separator + "\n\n")
	fmt.Fprintf(&b, "*PAID: $%s*\n", paid.StringFixed(2))
	b.WriteString(separator + "\n\n")
	fmt.Fprintf(&b, "Generated on %s\n\n", now.Format("2006-01-02 at 15:04"))
	b.WriteString("Best regards,\n*The Muslim Scout - Bara ibn Malik Troop*")

	return b.String(), total
}

// WhatsAppLink builds the wa.me deep link: digits-only phone, URL-encoded text.
func WhatsAppLink(phone, text string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "https://wa.me/" + digits.String() + "?text=" + url.QueryEscape(text)
}
