// Package event provides definitions for global DOM
// events that are dispatched by the `HX-Trigger`
// header in HTMX requests.
package event

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/angelofallars/htmx-go"
)

// Event is a client-side event that can be triggered
// on the server.
//
// Event names should be snake-case so Alpine.js
// can parse them correctly.
type Event string

// Event satisfies [fmt.Stringer]
func (e Event) String() string { return string(e) }

// Listen returns an Alpine.js x-on attribute with
// the provided JavaScript callback text.
//
// Format:
//
//	x-on:<eventName>.window="<code>"
func (e Event) Listen(jsCode string) templ.Attributes {
	return templ.Attributes{
		"x-on:" + string(e) + ".window": jsCode,
	}
}

const SetErrMessage Event = "set-err-message"

func TriggerSetErrMessage(message string) htmx.EventTrigger {
	return htmx.TriggerDetail(SetErrMessage.String(), message)
}

const DisableSubmit Event = "disable-submit"

var TriggerDisableSubmit = htmx.Trigger(DisableSubmit.String())

const EnableSubmit Event = "enable-submit"

var TriggerEnableSubmit = htmx.Trigger(EnableSubmit.String())

const OpenSettings Event = "open-settings"

var TriggerOpenSettings = htmx.Trigger(OpenSettings.String())

// InvoiceReady carries the formatted total of the
// invoice that was just previewed.
const InvoiceReady Event = "invoice-ready"

func TriggerInvoiceReady(total float64) htmx.EventTrigger {
	return htmx.TriggerDetail(InvoiceReady.String(), strconv.FormatFloat(total, 'f', 2, 64))
}
