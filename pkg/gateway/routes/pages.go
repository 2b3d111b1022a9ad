package routes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/prediction"
	"github.com/pathway-finder/webclient/pkg/retraining"
	"github.com/pathway-finder/webclient/pkg/upload"
	"github.com/pathway-finder/webclient/pkg/visualization"
	"github.com/pathway-finder/webclient/pkg/workspace"
)

const multipartMemory = 8 << 20

type navLink struct {
	Path   string
	Label  string
	Active bool
}

var navigation = []struct {
	path  string
	label string
	route workspace.Route
}{
	{"/", "Home", workspace.RouteHome},
	{"/prediction", "Prediction", workspace.RoutePrediction},
	{"/visualizations", "Visualizations", workspace.RouteVisualizations},
	{"/upload", "Upload Data", workspace.RouteUpload},
	{"/retraining", "Retraining", workspace.RouteRetraining},
}

type page struct {
	Title      string
	Nav        []navLink
	Configured bool
	Refresh    bool
	Wide       bool
	Body       interface{}
}

type option struct {
	Value    string
	Selected bool
}

type formInput struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
}

type predictionBody struct {
	View      prediction.View
	Education []option
	Inputs    []formInput
}

type uploadBody struct {
	View upload.View
}

type retrainingBody struct {
	View retraining.View
}

type visualizationsBody struct {
	View   visualization.View
	Notice string
}

type progressResponse struct {
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

var inputLabels = []struct {
	name  string
	label string
}{
	{careerapi.FieldInterest, "Interest"},
	{careerapi.FieldFavoriteSubject, "Favorite Subject"},
	{careerapi.FieldExtracurriculars, "Extracurricular Activities"},
	{careerapi.FieldPersonalityTrait, "Personality Trait"},
}

// Pages renders the browser-facing routes. Every registered handler expects
// the session middleware to have attached a workspace; NotFound does not.
type Pages struct {
	Catalog    catalog.Catalog
	Configured bool
}

func NewPages(cat catalog.Catalog, configured bool) *Pages {
	return &Pages{Catalog: cat, Configured: configured}
}

func RegisterPageRoutes(router *mux.Router, pages *Pages) {
	router.HandleFunc("/", pages.handleHome).Methods(http.MethodGet)
	router.HandleFunc("/prediction", pages.handlePrediction).Methods(http.MethodGet)
	router.HandleFunc("/prediction", pages.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/upload", pages.handleUploadPage).Methods(http.MethodGet)
	router.HandleFunc("/upload", pages.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/upload-data", redirectTo("/upload")).Methods(http.MethodGet)
	router.HandleFunc("/retraining", pages.handleRetrainingPage).Methods(http.MethodGet)
	router.HandleFunc("/retraining", pages.handleRetrain).Methods(http.MethodPost)
	router.HandleFunc("/retraining/progress", pages.handleRetrainingProgress).Methods(http.MethodGet)
	router.HandleFunc("/retrain", redirectTo("/retraining")).Methods(http.MethodGet)
	router.HandleFunc("/visualizations", pages.handleVisualizations).Methods(http.MethodGet)
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// NotFound renders the 404 page. Stray requests such as asset lookups must
// not count as navigation, so no page is left or mounted.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusNotFound, "not_found", p.page("Page Not Found", workspace.RouteNotFound, nil))
}

func (p *Pages) handleHome(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.enter(w, r, workspace.RouteHome); !ok {
		return
	}
	p.render(w, http.StatusOK, "home", p.page("Home", workspace.RouteHome, nil))
}

func (p *Pages) handlePrediction(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RoutePrediction)
	if !ok {
		return
	}
	p.renderPrediction(w, http.StatusOK, ws)
}

func (p *Pages) handlePredict(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RoutePrediction)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	for _, field := range careerapi.PredictionFields {
		if err := ws.Prediction.SetField(field, r.PostFormValue(field)); err != nil {
			logger.Log.WithError(err).WithField("field", field).Error("failed to apply prediction field")
		}
	}

	status := http.StatusOK
	switch err := ws.Prediction.Submit(context.WithoutCancel(r.Context())); {
	case errors.Is(err, prediction.ErrMissingField):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, prediction.ErrInFlight):
		status = http.StatusConflict
	case err != nil:
		logger.Log.WithError(err).Error("prediction submit failed")
	}
	p.renderPrediction(w, status, ws)
}

func (p *Pages) renderPrediction(w http.ResponseWriter, status int, ws *workspace.Workspace) {
	view := ws.Prediction.Snapshot()
	body := predictionBody{View: view}
	for _, level := range p.Catalog.Education {
		body.Education = append(body.Education, option{
			Value:    level,
			Selected: view.Fields[careerapi.FieldEducation] == level,
		})
	}
	for _, in := range inputLabels {
		body.Inputs = append(body.Inputs, formInput{
			Name:        in.name,
			Label:       in.label,
			Value:       view.Fields[in.name],
			Placeholder: p.Catalog.Placeholder(in.name),
		})
	}
	p.render(w, status, "prediction", p.page("Prediction", workspace.RoutePrediction, body))
}

func (p *Pages) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RouteUpload)
	if !ok {
		return
	}
	p.render(w, http.StatusOK, "upload", p.page("Upload Data", workspace.RouteUpload, uploadBody{View: ws.Upload.Snapshot()}))
}

func (p *Pages) handleUpload(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RouteUpload)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid upload form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(careerapi.UploadField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		ws.Upload.Deselect()
	case err != nil:
		http.Error(w, "invalid upload form", http.StatusBadRequest)
		return
	default:
		content, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			http.Error(w, "failed to read uploaded file", http.StatusBadRequest)
			return
		}
		ws.Upload.Select(upload.File{Name: header.Filename, Content: content})
	}

	status := http.StatusOK
	switch err := ws.Upload.Upload(context.WithoutCancel(r.Context())); {
	case errors.Is(err, upload.ErrNoFile), errors.Is(err, upload.ErrNotCSV):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, upload.ErrInFlight):
		status = http.StatusConflict
	}
	p.render(w, status, "upload", p.page("Upload Data", workspace.RouteUpload, uploadBody{View: ws.Upload.Snapshot()}))
}

func (p *Pages) handleRetrainingPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RouteRetraining)
	if !ok {
		return
	}
	view := ws.Retraining.Snapshot()
	data := p.page("Retraining", workspace.RouteRetraining, retrainingBody{View: view})
	data.Refresh = view.Retraining()
	p.render(w, http.StatusOK, "retraining", data)
}

func (p *Pages) handleRetrain(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RouteRetraining)
	if !ok {
		return
	}
	if err := ws.Retraining.Start(r.Context()); err != nil && !errors.Is(err, retraining.ErrInFlight) {
		logger.Log.WithError(err).WithField("session_id", ws.ID).Info("retraining not started")
	}
	http.Redirect(w, r, "/retraining", http.StatusSeeOther)
}

func (p *Pages) handleRetrainingProgress(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace.FromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	view := ws.Retraining.Snapshot()
	writeJSON(w, progressResponse{
		State:    view.State.String(),
		Progress: view.Progress,
		Message:  view.Message,
	})
}

func (p *Pages) handleVisualizations(w http.ResponseWriter, r *http.Request) {
	ws, ok := p.enter(w, r, workspace.RouteVisualizations)
	if !ok {
		return
	}

	status := http.StatusOK
	body := visualizationsBody{}
	if parameter := r.URL.Query().Get("parameter"); parameter != "" {
		if err := ws.Visualization.Select(r.Context(), parameter); err != nil {
			status = http.StatusBadRequest
			body.Notice = "Unknown visualization parameter"
		}
	}
	body.View = ws.Visualization.Snapshot()

	data := p.page("Visualizations", workspace.RouteVisualizations, body)
	data.Wide = true
	p.render(w, status, "visualizations", data)
}

func (p *Pages) enter(w http.ResponseWriter, r *http.Request, route workspace.Route) (*workspace.Workspace, bool) {
	ws, ok := workspace.FromContext(r.Context())
	if !ok {
		logger.Log.WithField("path", r.URL.Path).Error("request reached page handler without a workspace")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	if err := ws.Enter(r.Context(), route); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"session_id": ws.ID,
			"route":      string(route),
		}).Warn("page mount incomplete")
	}
	return ws, true
}

func (p *Pages) page(title string, active workspace.Route, body interface{}) page {
	nav := make([]navLink, 0, len(navigation))
	for _, n := range navigation {
		nav = append(nav, navLink{Path: n.path, Label: n.label, Active: n.route == active})
	}
	return page{Title: title, Nav: nav, Configured: p.Configured, Body: body}
}

func (p *Pages) render(w http.ResponseWriter, status int, name string, data page) {
	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, name, data); err != nil {
		logger.Log.WithError(err).WithField("template", name).Error("failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Log.WithError(err).Debug("failed to write page")
	}
}
