package service

import (
	"bytes"
	"html/template"
	"time"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
)

type invoiceView struct {
	InvoiceNumber string
	IssuedAt      time.Time
	Branch        domain.Branch
	Stay          domain.Stay
	Billing       domain.BillingResult
}

// invoiceTmpl is auto-escaped; guest names and charge descriptions are staff input.
var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"date":        formatInvoiceDate,
	"extraNights": extraNightAmount,
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Tax Invoice {{.InvoiceNumber}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    td.amount { text-align: right; }
  </style>
</head>
<body>
  <h2>Tax Invoice</h2>
  <p>{{.Branch.Name}} | Invoice {{.InvoiceNumber}} | {{date .IssuedAt}}</p>
  <p>Guest: {{.Stay.GuestName}} | Phone: {{.Stay.Phone}} | Room: {{.Stay.RoomNumber}}</p>
  <p>Check-in: {{date .Stay.CheckInAt}} | Nights: {{.Stay.OriginalNights}}{{if .Stay.ExtraNights}} + {{.Stay.ExtraNights}} extra{{end}}</p>

  <table>
    <thead><tr><th>Description</th><th>Amount</th></tr></thead>
    <tbody>
      {{range .Stay.Charges}}<tr><td>{{.Description}}</td><td class="amount">{{.Amount.StringFixed 2}}</td></tr>{{end}}
      {{if .Stay.ExtraNights}}<tr><td>Extra Nights ({{.Stay.ExtraNights}} x {{.Stay.NightlyRate.StringFixed 2}})</td><td class="amount">{{extraNights .Stay}}</td></tr>{{end}}
    </tbody>
    <tfoot>
      <tr><th>Subtotal</th><td class="amount">{{.Billing.Subtotal.StringFixed 2}}</td></tr>
      <tr><th>GST (18%)</th><td class="amount">{{.Billing.TaxAmount.StringFixed 2}}</td></tr>
      <tr><th>Total</th><td class="amount">{{.Billing.Total.StringFixed 2}}</td></tr>
      <tr><th>Paid</th><td class="amount">{{.Stay.AmountPaid.StringFixed 2}}</td></tr>
      <tr><th>Balance Due</th><td class="amount">{{.Billing.BalanceDue.StringFixed 2}}</td></tr>
    </tfoot>
  </table>

  {{if .Stay.Payments}}
  <h3>Payments</h3>
  <table>
    <thead><tr><th>Receipt</th><th>Method</th><th>Amount</th></tr></thead>
    <tbody>{{range .Stay.Payments}}<tr><td>{{.ReceiptNo}}</td><td>{{.Method}}</td><td class="amount">{{.Amount.StringFixed 2}}</td></tr>{{end}}</tbody>
  </table>
  {{end}}
</body>
</html>
`))

func formatInvoiceDate(t time.Time) string {
	return t.Format("02 Jan 2006 15:04")
}

func extraNightAmount(stay domain.Stay) string {
	return billing.ExtraNightCharge(stay.ExtraNights, stay.NightlyRate).StringFixed(2)
}

func renderInvoice(view invoiceView) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
