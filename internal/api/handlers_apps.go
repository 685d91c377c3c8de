package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hangar/internal/artifact"
)

func (a *API) handleListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := a.apps.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"apps": apps})
}

func (a *API) handleGetApp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	app, err := a.apps.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"app": app})
}

func (a *API) handleDownloadApp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	url, err := a.apps.DownloadURL(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (a *API) handlePublishApp(w http.ResponseWriter, r *http.Request) {
	if err := a.parseMultipart(w, r); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	versionCode, err := formInt64(r, "version_code")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	pkg, err := formUpload(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	icon, err := formUpload(r, "icon")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	in := artifact.PublishInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		PackageName: strings.TrimSpace(r.FormValue("package_name")),
		Version:     strings.TrimSpace(r.FormValue("version")),
		VersionCode: versionCode,
		Package:     pkg,
		Icon:        icon,
	}

	app, err := a.apps.Publish(r.Context(), in)
	countOp("publish", err)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"app": app})
}

func (a *API) handleReplaceApp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.parseMultipart(w, r); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	patch := artifact.Patch{
		Title:       formOptional(r, "title"),
		Description: formOptional(r, "description"),
		PackageName: formOptional(r, "package_name"),
		Version:     formOptional(r, "version"),
	}
	if raw := formOptional(r, "version_code"); raw != nil {
		code, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("version_code must be an integer"))
			return
		}
		patch.VersionCode = &code
	}

	pkg, err := formUpload(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	icon, err := formUpload(r, "icon")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	app, err := a.apps.Replace(r.Context(), id, artifact.ReplaceInput{
		Patch:   patch,
		Package: pkg,
		Icon:    icon,
	})
	countOp("replace", err)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"app": app})
}

func (a *API) handleRemoveApp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	err = a.apps.Remove(r.Context(), id)
	countOp("remove", err)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.New("valid app id is required")
	}
	return id, nil
}

func (a *API) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return errors.New("multipart form body required")
	}
	return nil
}

// formOptional reports a text field only when the client sent it, so a
// replace can distinguish "clear to empty" from "leave unchanged".
func formOptional(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func formInt64(r *http.Request, field string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New(field + " must be an integer")
	}
	return value, nil
}

func formUpload(r *http.Request, field string) (*artifact.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &artifact.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
