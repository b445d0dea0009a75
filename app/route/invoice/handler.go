package invoice

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/angelofallars/htmx-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/angelofallars/hourbill/app/auth"
	"github.com/angelofallars/hourbill/app/event"
	"github.com/angelofallars/hourbill/internal/invoice"
	hbrender "github.com/angelofallars/hourbill/internal/render"
	"github.com/angelofallars/hourbill/internal/service"
	"github.com/angelofallars/hourbill/internal/timesheet"
)

const maxUploadBytes = 10 << 20

// Defaults are the invoice metadata applied to every uploaded timesheet.
type Defaults struct {
	Business invoice.Business
	Client   invoice.Client
	Details  invoice.Details
	Rate     float64
}

type HandlerGroup struct {
	invoices service.Factory
	renderer *hbrender.Renderer
	defaults Defaults
	slog     *slog.Logger
}

func NewHandlerGroup(invoices service.Factory, renderer *hbrender.Renderer, defaults Defaults, slog *slog.Logger) *HandlerGroup {
	return &HandlerGroup{
		invoices: invoices,
		renderer: renderer,
		defaults: defaults,
		slog:     slog,
	}
}

func (hg *HandlerGroup) Mount(r chi.Router) {
	r.Get("/", hg.handleIndex)
	r.Post("/invoice", auth.WithOpenAIKey(hg.handleCreateInvoice))
	r.Post("/api/invoice", auth.WithOpenAIKey(hg.handleCreateInvoiceJSON))
}

func (hg *HandlerGroup) handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = page(pageProps{
		Title:  "Timesheet Invoice Builder",
		Rate:   hg.defaults.Rate,
		Client: hg.defaults.Client.Name,
	}).Render(r.Context(), w)
}

func (hg *HandlerGroup) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := hg.createInvoice(r)
	if err != nil {
		showError(w, statusFor(err), err)
		return
	}

	var doc bytes.Buffer
	if err := hg.renderer.Invoice(inv).Render(r.Context(), &doc); err != nil {
		showError(w, http.StatusInternalServerError, err)
		return
	}

	_ = htmx.NewResponse().
		AddTrigger(
			event.TriggerEnableSubmit,
			event.TriggerSetErrMessage(""),
			event.TriggerInvoiceReady(inv.Total()),
		).
		RenderTempl(r.Context(), w, preview(previewProps{
			Document:    string(doc.Bytes()),
			DownloadURL: templ.SafeURL("data:text/html;base64," + base64.StdEncoding.EncodeToString(doc.Bytes())),
			FileName:    filepath.Base(fmt.Sprintf("invoice_%s.html", inv.Details.Number)),
			Total:       inv.Total(),
			Hours:       inv.TotalHours(),
		}))
}

func (hg *HandlerGroup) handleCreateInvoiceJSON(w http.ResponseWriter, r *http.Request) {
	inv, err := hg.createInvoice(r)
	if err != nil {
		render.Status(r, statusFor(err))
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	render.JSON(w, r, newInvoiceResponse(inv))
}

func (hg *HandlerGroup) createInvoice(r *http.Request) (*invoice.Invoice, error) {
	req, err := hg.newCreateInvoiceRequest(r)
	if err != nil {
		return nil, err
	}

	svc := hg.invoices(auth.GetOpenAIKey(r.Context()))
	inv, err := svc.Create(r.Context(), *req)
	if err != nil {
		hg.slog.Warn("invoice creation failed", "err", err)
		return nil, err
	}
	return inv, nil
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &badRequestError{err: fmt.Errorf(format, args...)}
}

func (hg *HandlerGroup) newCreateInvoiceRequest(r *http.Request) (*service.CreateInvoiceRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, badRequest("Parsing upload failed: %w", err)
	}

	rate := hg.defaults.Rate
	if rateString := strings.TrimSpace(r.FormValue("rate")); rateString != "" {
		parsed, err := strconv.ParseFloat(rateString, 64)
		if err != nil {
			return nil, badRequest("Parsing hourly rate failed: %w", err)
		}
		rate = parsed
	}
	if rate < 0 {
		return nil, badRequest("Hourly rate cannot be less than zero")
	}

	file, header, err := r.FormFile("timesheet")
	if err != nil {
		return nil, badRequest("A timesheet file is required.")
	}
	defer file.Close()

	sheet := strings.TrimSpace(r.FormValue("sheet"))
	rows, err := readTimesheet(file, header.Filename, sheet)
	if err != nil {
		return nil, err
	}

	details := hg.defaults.Details
	if number := strings.TrimSpace(r.FormValue("number")); number != "" {
		details.Number = number
	}

	return &service.CreateInvoiceRequest{
		Rows:     rows,
		Rate:     rate,
		Business: hg.defaults.Business,
		Client:   hg.defaults.Client,
		Details:  details,
	}, nil
}

func readTimesheet(file io.Reader, name, sheet string) ([]timesheet.Row, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return timesheet.ReadCSV(file)
	}
	if sheet == "" {
		return nil, badRequest("A sheet name is required for workbooks.")
	}
	return timesheet.ReadWorkbook(file, sheet)
}

func statusFor(err error) int {
	var (
		badReq    *badRequestError
		dataErr   *timesheet.DataFormatError
		sheetErr  *timesheet.SheetNotFoundError
		sourceErr *timesheet.SourceNotFoundError
	)
	switch {
	case errors.As(err, &badReq), errors.As(err, &sheetErr), errors.As(err, &sourceErr):
		return http.StatusBadRequest
	case errors.As(err, &dataErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type lineItemResponse struct {
	Period      string  `json:"period"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type invoiceResponse struct {
	Number   string             `json:"number"`
	Items    []lineItemResponse `json:"items"`
	Hours    float64            `json:"hours"`
	Subtotal float64            `json:"subtotal"`
	Total    float64            `json:"total"`
}

func newInvoiceResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]lineItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, lineItemResponse(item))
	}
	return invoiceResponse{
		Number:   inv.Details.Number,
		Items:    items,
		Hours:    inv.TotalHours(),
		Subtotal: inv.Subtotal(),
		Total:    inv.Total(),
	}
}

func showError(w http.ResponseWriter, code int, err error) {
	_ = htmx.NewResponse().
		StatusCode(code).
		Reswap(htmx.SwapNone).
		AddTrigger(event.TriggerSetErrMessage(err.Error())).
		Write(w)
}
