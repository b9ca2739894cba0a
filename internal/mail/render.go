package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money":    FormatMoney,
	"shipping": ShippingMethodName,
	"payment":  PaymentMethodName,
	"lineTotal": func(it Item) int64 {
		return it.Price * int64(it.Quantity)
	},
}).Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Order confirmation</title>
  </head>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h1>Thank you for your order, {{.CustomerName}}!</h1>
    <p>Order reference: <strong>{{.OrderID}}</strong></p>
    <table cellpadding="6" style="border-collapse: collapse; width: 100%;">
      <thead>
        <tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
      </thead>
      <tbody>
{{- range .Items}}
        <tr>
          <td>{{.Name}}{{if .VariationLabel}} ({{.VariationLabel}}){{end}}</td>
          <td align="right">{{.Quantity}}</td>
          <td align="right">{{money .Price}}</td>
          <td align="right">{{money (lineTotal .)}}</td>
        </tr>
{{- end}}
      </tbody>
    </table>
    <p>Subtotal: {{money .Subtotal}}</p>
    <p>Shipping ({{shipping .ShippingMethod}}): {{if eq .Shipping 0}}Free{{else}}{{money .Shipping}}{{end}}</p>
    <p><strong>Total: {{money .Total}}</strong></p>
    <h2>Delivery</h2>
    <p>
      {{.ShippingAddress.Address}}<br />
      {{.ShippingAddress.City}}{{if .ShippingAddress.PostalCode}} {{.ShippingAddress.PostalCode}}{{end}}<br />
      {{.ShippingAddress.Country}}
    </p>
    <p>Phone: {{.CustomerPhone}}</p>
    <p>Payment method: {{payment .PaymentMethod}}</p>
{{- if .SpecialRequest}}
    <p>Special request: {{.SpecialRequest}}</p>
{{- end}}
  </body>
</html>
`))

// Render produces the HTML confirmation document for p.
func Render(p Payload) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering confirmation: %w", err)
	}
	return buf.String(), nil
}

// Subject is the confirmation subject line.
func Subject(p Payload) string {
	return "Order confirmation " + p.OrderID
}
