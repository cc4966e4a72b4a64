// Package whatsapp renders customer notifications as WhatsApp click-to-chat links.
package whatsapp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"unicode"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"
)

const (
	baseURL = "https://wa.me/"

	// numbers of at most this many digits are local and get the country code
	localNumberDigits = 9
)

var messageTemplates = map[notification.Type]string{
	notification.TypeOrderConfirmed: "¡Hola! Tu pedido {{.Number}} en {{.Store}} fue confirmado. " +
		"Ya puedes enviarnos tu comprobante de pago.",
	notification.TypeOrderPreparing: "Estamos preparando tu pedido {{.Number}}.{{with .Note}} {{.}}{{end}}",
	notification.TypeOrderShipped:   "Tu pedido {{.Number}} va en camino.{{with .Note}} {{.}}{{end}}",
	notification.TypeOrderCancelled: "Tu pedido {{.Number}} en {{.Store}} fue cancelado.{{with .Reason}} Motivo: {{.}}{{end}}",
	notification.TypePaymentApproved: "Validamos el pago de tu pedido {{.Number}}. " +
		"¡Gracias por tu compra en {{.Store}}!",
	notification.TypePaymentRejected: "No pudimos validar el pago de tu pedido {{.Number}}." +
		"{{with .Reason}} Motivo: {{.}}.{{end}} Por favor envíanos un nuevo comprobante.",
}

type messageData struct {
	Number string
	Store  string
	Note   string
	Reason string
}

// Renderer implements ports.MessageRenderer.
type Renderer struct {
	storeName   string
	countryCode string
	templates   map[notification.Type]*template.Template
}

// NewRenderer parses the message templates. countryCode is prefixed to local
// numbers, digits only (for example "51").
func NewRenderer(storeName, countryCode string) (*Renderer, error) {
	r := &Renderer{
		storeName:   strings.TrimSpace(storeName),
		countryCode: digitsOnly(countryCode),
		templates:   make(map[notification.Type]*template.Template, len(messageTemplates)),
	}

	for t, text := range messageTemplates {
		tmpl, err := template.New(t.String()).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", t, err)
		}
		r.templates[t] = tmpl
	}
	return r, nil
}

// Render builds the message for o. A contact without digits yields a message
// with no delivery URL; a type without a template is a terminal error.
func (r *Renderer) Render(
	ctx context.Context,
	o *order.Order,
	t notification.Type,
	metadata notification.Metadata,
) (notification.Message, error) {
	if err := ctx.Err(); err != nil {
		return notification.Message{}, err
	}

	tmpl, ok := r.templates[t]
	if !ok {
		return notification.Message{}, errs.NewTerminalError(fmt.Sprintf("no message template for %s", t))
	}

	var text strings.Builder
	err := tmpl.Execute(&text, messageData{
		Number: o.Number(),
		Store:  r.storeName,
		Note:   strings.TrimSpace(metadata[notification.MetadataNote]),
		Reason: strings.TrimSpace(metadata[notification.MetadataReason]),
	})
	if err != nil {
		return notification.Message{}, errs.NewTerminalErrorWithCause("render message", err)
	}

	msg := notification.Message{Text: text.String()}
	if phone := r.phoneNumber(o.CustomerContact()); phone != "" {
		msg.DeliveryURL = baseURL + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(msg.Text), "+", "%20")
	}
	return msg, nil
}

// phoneNumber returns the international number in digits, or "" when contact has none.
func (r *Renderer) phoneNumber(contact string) string {
	contact = strings.TrimSpace(contact)
	digits := digitsOnly(contact)
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(contact, "+") && len(digits) <= localNumberDigits {
		return r.countryCode + digits
	}
	return digits
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
