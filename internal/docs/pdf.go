package docs

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	linecomp "github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/services"
)

// InvoicePDF renders the invoice as a fixed-grid PDF document.
func InvoicePDF(inv models.Invoice, customer models.Customer) ([]byte, error) {
	cfg := config.NewBuilder().WithLeftMargin(15).WithTopMargin(15).WithRightMargin(15).Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "INVOICE "+inv.Number, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}))
	m.AddRow(6,
		text.NewCol(6, "Date: "+inv.Date.Format("2006-01-02"), props.Text{Size: 9}),
		text.NewCol(6, "Salesman: "+inv.Salesman, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(4, linecomp.NewCol(12))

	m.AddRow(6, text.NewCol(12, "Bill To", props.Text{Size: 10, Style: fontstyle.Bold}))
	m.AddRow(5, text.NewCol(12, customer.Name, props.Text{Size: 9}))
	m.AddRow(5, text.NewCol(12, customer.Phone, props.Text{Size: 9}))
	if customer.Address != "" {
		m.AddRow(5, text.NewCol(12, customer.Address, props.Text{Size: 9}))
	}
	m.AddRow(4, linecomp.NewCol(12))

	header := props.Text{Size: 9, Style: fontstyle.Bold}
	m.AddRow(7,
		text.NewCol(6, "Product", header),
		text.NewCol(2, "Unit Price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Subtotal", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, it := range inv.Items {
		m.AddRow(6,
			text.NewCol(6, it.Product, props.Text{Size: 9}),
			text.NewCol(2, "$"+it.Price.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, strconv.Itoa(it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, "$"+it.LineTotal().StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(4, linecomp.NewCol(12))

	m.AddRow(6,
		text.NewCol(8, "", props.Text{}),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "$"+inv.TotalAmount.StringFixed(2), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, "", props.Text{}),
		text.NewCol(2, "Paid", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, "$"+inv.PaidAmount.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, "", props.Text{}),
		text.NewCol(2, "Unpaid", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, "$"+inv.UnpaidAmount.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8, text.NewCol(12, "Status: "+services.StatusLabel(inv.Status), props.Text{Size: 9, Top: 2}))

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
