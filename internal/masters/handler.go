package masters

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/listview"
	"github.com/finoracle/backoffice/internal/platform/httpx"
	"github.com/finoracle/backoffice/internal/refdata"
	"github.com/finoracle/backoffice/internal/shared"
	"github.com/finoracle/backoffice/internal/view"
)

// Response headers read by the browser script.
const (
	HeaderSequence = "X-List-Sequence"
	HeaderStale    = "X-List-Stale"
)

// SubmitFailedMessage is shown when the remote create fails.
const SubmitFailedMessage = "Something went wrong!"

// StaleRecorder counts list responses discarded as superseded.
type StaleRecorder interface {
	IncStaleResponse(screen string)
}

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Lists     *listview.Store
	Refdata   *refdata.Loader
	Guard     *shared.SubmitGuard
	Stale     StaleRecorder
	PDF       PDFRenderer
}

// Handler serves one master screen.
type Handler[T any, F any] struct {
	screen   Screen[T, F]
	deps     Deps
	logger   *slog.Logger
	validate *validator.Validate
	base     string
}

// NewHandler builds the handler of screen.
func NewHandler[T any, F any](screen Screen[T, F], deps Deps) *Handler[T, F] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("screen", screen.Slug))
	if deps.Lists == nil {
		deps.Lists = listview.NewStore(nil)
	}
	if deps.Refdata == nil {
		deps.Refdata = refdata.NewLoader(nil, logger, nil)
	}
	v := NewValidator()
	if screen.Rules != nil {
		screen.Rules(v)
	}
	return &Handler[T, F]{screen: screen, deps: deps, logger: logger, validate: v, base: PathFor(screen.Slug)}
}

// Slug returns the screen identifier used in routes.
func (h *Handler[T, F]) Slug() string { return h.screen.Slug }

// Title returns the screen title.
func (h *Handler[T, F]) Title() string { return h.screen.Title }

// Path returns the list path.
func (h *Handler[T, F]) Path() string { return h.base }

// MountRoutes registers the screen routes.
func (h *Handler[T, F]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/table", h.table)
	r.Get("/data", h.data)
	r.Get("/new", h.showForm)
	r.Post("/", h.create)
	r.Get("/export.pdf", h.export)
}

type listing[T any] struct {
	state  listview.State
	result gateway.PagedResult[T]
	source gateway.Source
	refs   refdata.Set
	ticket listview.Ticket
	stale  bool
}

// fetch loads the page for the request and commits the resulting state when
// no newer list request has started meanwhile.
func (h *Handler[T, F]) fetch(r *http.Request) (listing[T], error) {
	return h.load(r, true)
}

// snapshot loads the page without taking a sequence number or saving state,
// so it never supersedes a table request in flight.
func (h *Handler[T, F]) snapshot(r *http.Request) (listing[T], error) {
	return h.load(r, false)
}

func (h *Handler[T, F]) load(r *http.Request, track bool) (listing[T], error) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	state := h.deps.Lists.Load(sess, h.screen.Slug).Apply(r.URL.Query()).Normalize(h.screen.sortable)
	out := listing[T]{state: state}

	if track {
		ticket, err := h.deps.Lists.Begin(ctx, sess, h.screen.Slug)
		if err != nil {
			return out, err
		}
		out.ticket = ticket
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, source, err := h.screen.Resource.Page(gctx, state.Query())
		if err != nil {
			return err
		}
		out.result, out.source = result, source
		return nil
	})
	g.Go(func() error {
		out.refs = h.deps.Refdata.LoadAll(gctx, h.screen.References...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return out, err
	}
	if !track {
		return out, nil
	}

	err := h.deps.Lists.Commit(ctx, sess, h.screen.Slug, out.ticket, state)
	switch {
	case errors.Is(err, listview.ErrStale):
		out.stale = true
		if h.deps.Stale != nil {
			h.deps.Stale.IncStaleResponse(h.screen.Slug)
		}
		h.logger.Debug("list response superseded", slog.Int64("sequence", out.ticket.Seq))
	case err != nil:
		return out, err
	default:
		shared.NewPreferences(sess).SetPageTitle(h.screen.Title)
	}
	return out, nil
}

func (h *Handler[T, F]) tableView(l listing[T]) tableView {
	rows := make([][]string, 0, len(l.result.Results))
	for _, item := range l.result.Results {
		cells := make([]string, 0, len(h.screen.Columns))
		for _, col := range h.screen.Columns {
			cells = append(cells, col.Value(item, l.refs))
		}
		rows = append(rows, cells)
	}

	headers := make([]headerView, 0, len(h.screen.Columns))
	for _, col := range h.screen.Columns {
		hv := headerView{Key: col.Key, Title: col.Header(), Sortable: col.Sortable}
		if col.Sortable {
			key := col.Key
			hv.Active = l.state.Sort.Field == key
			hv.Direction = l.state.Sort.Direction
			hv.Link = linkFor(h.base, l.state, func(s listview.State) listview.State { return s.ToggleSort(key) })
		}
		headers = append(headers, hv)
	}

	p := shared.NewPagination(l.state.Page, l.state.PageSize, l.result.RowCount, len(rows))
	tv := tableView{
		Slug:       h.screen.Slug,
		Base:       h.base,
		Headers:    headers,
		Rows:       rows,
		EmptyText:  EmptyText,
		Pagination: p,
		Summary:    p.Summary(),
		State:      l.state,
		Source:     l.source,
		Sequence:   l.ticket.Seq,
	}
	for _, n := range p.Window(pageWindow) {
		tv.Pages = append(tv.Pages, pageView{
			Number:  n,
			Current: n == l.state.Page,
			Link:    linkFor(h.base, l.state, func(s listview.State) listview.State { return s.WithPage(n) }),
		})
	}
	if p.HasPrev() {
		prev := linkFor(h.base, l.state, func(s listview.State) listview.State { return s.WithPage(s.Page - 1) })
		tv.Prev = &prev
	}
	if p.HasNext() {
		next := linkFor(h.base, l.state, func(s listview.State) listview.State { return s.WithPage(s.Page + 1) })
		tv.Next = &next
	}
	for _, size := range listview.PageSizes {
		tv.Sizes = append(tv.Sizes, sizeView{Size: size, Selected: size == l.state.PageSize})
	}
	return tv
}

func (h *Handler[T, F]) list(w http.ResponseWriter, r *http.Request) {
	l, err := h.fetch(r)
	if err != nil {
		h.logger.Error("load list", slog.Any("error", err))
		status := loadFailureStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set(HeaderSequence, strconv.FormatInt(l.ticket.Seq, 10))
	h.render(w, r, "pages/master_list.html", listPage{
		Title:    h.screen.Title,
		Singular: h.screen.Singular,
		Base:     h.base,
		Table:    h.tableView(l),
	}, http.StatusOK, nil)
}

func (h *Handler[T, F]) table(w http.ResponseWriter, r *http.Request) {
	l, err := h.fetch(r)
	if err != nil {
		h.logger.Error("load table", slog.Any("error", err))
		status := loadFailureStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set(HeaderSequence, strconv.FormatInt(l.ticket.Seq, 10))
	if l.stale {
		w.Header().Set(HeaderStale, "1")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.fragment(w, r, "partials/table.html", h.tableView(l), http.StatusOK)
}

// loadFailureStatus maps a list load error to a status. A remote failure that
// could not be covered by a fixture is a deployment fault, hence 500.
func loadFailureStatus(err error) int {
	switch {
	case errors.Is(err, gateway.ErrNoFixture):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, httpx.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, gateway.ErrNoFixture) {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.RespondError(w, err)
}

type dataResponse[T any] struct {
	Results  []T            `json:"results"`
	RowCount int            `json:"rowCount"`
	Source   gateway.Source `json:"source"`
	Sequence int64          `json:"sequence"`
	Stale    bool           `json:"stale"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Search   string         `json:"search,omitempty"`
	Sort     listview.Sort  `json:"sort"`
}

func (h *Handler[T, F]) data(w http.ResponseWriter, r *http.Request) {
	l, err := h.fetch(r)
	if err != nil {
		h.logger.Error("load data", slog.Any("error", err))
		respondLoadError(w, err)
		return
	}
	w.Header().Set(HeaderSequence, strconv.FormatInt(l.ticket.Seq, 10))
	httpx.JSON(w, http.StatusOK, dataResponse[T]{
		Results:  l.result.Results,
		RowCount: l.result.RowCount,
		Source:   l.source,
		Sequence: l.ticket.Seq,
		Stale:    l.stale,
		Page:     l.state.Page,
		PageSize: l.state.PageSize,
		Search:   l.state.Search,
		Sort:     l.state.Sort,
	})
}

func (h *Handler[T, F]) showForm(w http.ResponseWriter, r *http.Request) {
	values := url.Values{}
	for k, v := range h.screen.Defaults {
		values[k] = append([]string(nil), v...)
	}
	partial := r.URL.Query().Get("partial") == "1"
	if !partial {
		shared.PreferencesFromContext(r.Context()).SetPageTitle(h.screen.Title)
	}
	h.renderForm(w, r, values, nil, h.deps.Guard.NewToken(), "", partial, http.StatusOK)
}

func (h *Handler[T, F]) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	values := r.PostForm
	partial := values.Get("partial") == "1"
	token := values.Get(shared.SubmitTokenField)

	form := h.screen.Decode(values)
	errs := map[string]string{}
	if err := h.validate.Struct(form); err != nil {
		errs = FieldErrors(err, h.screen.Messages)
	}
	if len(errs) == 0 && h.screen.Precheck != nil {
		for k, v := range h.screen.Precheck(ctx, form) {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		if token == "" {
			token = h.deps.Guard.NewToken()
		}
		h.renderForm(w, r, values, errs, token, "", partial, http.StatusUnprocessableEntity)
		return
	}

	if err := h.deps.Guard.Claim(ctx, h.screen.Slug, token); err != nil {
		if errors.Is(err, shared.ErrDuplicateSubmit) {
			h.logger.Info("duplicate submit ignored")
			h.redirectWithFlash(w, r, h.base, shared.FlashInfo, h.screen.Singular+" was already submitted")
			return
		}
		h.logger.Warn("claim submit token", slog.Any("error", err))
		h.renderForm(w, r, values, map[string]string{GeneralError: "The form expired, please submit it again"}, h.deps.Guard.NewToken(), "", partial, http.StatusBadRequest)
		return
	}

	if _, err := h.screen.Resource.Create(ctx, h.screen.Body(form)); err != nil {
		h.logger.Warn("create failed", slog.String("entity", h.screen.Resource.Entity()), slog.Any("error", err))
		if rerr := h.deps.Guard.Release(context.WithoutCancel(ctx), h.screen.Slug, token); rerr != nil {
			h.logger.Warn("release submit token", slog.Any("error", rerr))
		}
		h.renderForm(w, r, values, nil, token, SubmitFailedMessage, partial, http.StatusBadGateway)
		return
	}

	if err := h.deps.Refdata.Invalidate(ctx); err != nil {
		h.logger.Warn("invalidate reference data", slog.Any("error", err))
	}
	h.redirectWithFlash(w, r, h.base, shared.FlashSuccess, h.screen.Singular+" created successfully")
}

func (h *Handler[T, F]) renderForm(w http.ResponseWriter, r *http.Request, values url.Values, errs map[string]string, token, alert string, partial bool, status int) {
	if errs == nil {
		errs = map[string]string{}
	}
	refs := h.deps.Refdata.LoadAll(r.Context(), h.screen.References...)
	fv := formView{
		Title:       "Add " + h.screen.Singular,
		Singular:    h.screen.Singular,
		Action:      h.base,
		Base:        h.base,
		Fields:      buildFields(h.screen.Fields, values, refs, errs),
		Errors:      errs,
		Alert:       alert,
		SubmitToken: token,
		Partial:     partial,
	}
	if partial {
		h.fragment(w, r, "partials/form.html", fv, status)
		return
	}
	var flash *shared.FlashMessage
	if alert != "" {
		flash = &shared.FlashMessage{Kind: shared.FlashError, Message: alert}
	}
	h.render(w, r, "pages/master_form.html", fv, status, flash)
}

func (h *Handler[T, F]) export(w http.ResponseWriter, r *http.Request) {
	if h.deps.PDF == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Export Unavailable", "no PDF renderer configured")
		return
	}
	l, err := h.snapshot(r)
	if err != nil {
		h.logger.Error("load export", slog.Any("error", err))
		respondLoadError(w, err)
		return
	}
	var buf bytes.Buffer
	data := view.TemplateData{Title: h.screen.Title, Data: exportPage{Title: h.screen.Title, Table: h.tableView(l)}}
	if err := h.deps.Templates.Execute(&buf, "pages/master_export.html", data); err != nil {
		h.logger.Error("render export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pdf, err := h.deps.PDF.RenderHTML(r.Context(), buf.String())
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Renderer Unavailable", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.screen.Slug+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler[T, F]) render(w http.ResponseWriter, r *http.Request, name string, data any, status int, flash *shared.FlashMessage) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.deps.CSRF.EnsureToken(r.Context(), sess)
	if flash == nil && sess != nil {
		flash = sess.PopFlash()
	}
	page := h.deps.Templates.Page(r)
	page.CSRFToken = csrfToken
	page.Flash = flash
	page.Data = data
	if err := h.deps.Templates.RenderStatus(w, name, page, status); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fragment renders a partial without consuming the pending flash.
func (h *Handler[T, F]) fragment(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.deps.CSRF.EnsureToken(r.Context(), sess)
	page := h.deps.Templates.Page(r)
	page.CSRFToken = csrfToken
	page.Data = data
	if err := h.deps.Templates.RenderStatus(w, name, page, status); err != nil {
		h.logger.Error("render fragment", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler[T, F]) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
