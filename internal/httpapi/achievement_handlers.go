package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/scoring"
)

type submitRequest struct {
	Type          string `json:"type"`
	Category      string `json:"category"`
	Level         string `json:"level"`
	Place         string `json:"place"`
	Experience    string `json:"experience_bracket"`
	Participation string `json:"participation_bracket"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	StudentName   string `json:"student_name"`
}

func (req submitRequest) toInput() achievement.SubmitInput {
	return achievement.SubmitInput{
		Classification: scoring.Classification{
			Type:          scoring.Type(req.Type),
			Category:      scoring.Category(req.Category),
			Level:         scoring.Level(req.Level),
			Place:         scoring.Place(req.Place),
			Experience:    scoring.ExperienceBracket(req.Experience),
			Participation: scoring.ParticipationBracket(req.Participation),
		},
		Title:       req.Title,
		Description: req.Description,
		StudentName: req.StudentName,
	}
}

type submitResponse struct {
	Record     *achievement.Record `json:"record"`
	Recognized bool                `json:"recognized"`
}

func (a *API) handleAchievementsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listAchievements(w, r)
	case http.MethodPost:
		a.submitAchievement(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listAchievements(w http.ResponseWriter, r *http.Request) {
	viewer, ok := a.requireAccount(w, r)
	if !ok {
		return
	}
	items, err := a.achievements.List(r.Context(), viewer)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// submitAchievement accepts either a plain JSON body or multipart/form-data
// when the submission carries an attachment under the "file" field.
func (a *API) submitAchievement(w http.ResponseWriter, r *http.Request) {
	owner, ok := a.requireAccount(w, r)
	if !ok {
		return
	}

	var in achievement.SubmitInput
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		// Parse with headroom above the attachment limit so the limit check
		// stays with the service, which reports 413 precisely.
		if err := r.ParseMultipartForm(a.achievements.MaxUploadBytes() + 1<<20); err != nil {
			writeError(w, r, http.StatusBadRequest, "malformed multipart body")
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
		in = submitRequest{
			Type:          r.FormValue("type"),
			Category:      r.FormValue("category"),
			Level:         r.FormValue("level"),
			Place:         r.FormValue("place"),
			Experience:    r.FormValue("experience_bracket"),
			Participation: r.FormValue("participation_bracket"),
			Title:         r.FormValue("title"),
			Description:   r.FormValue("description"),
			StudentName:   r.FormValue("student_name"),
		}.toInput()
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			in.File = &achievement.Upload{
				Filename: header.Filename,
				Reader:   file,
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			writeError(w, r, http.StatusBadRequest, "malformed file field")
			return
		}
	} else {
		var req submitRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		in = req.toInput()
	}

	res, err := a.achievements.Submit(r.Context(), owner, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/achievements/"+strconv.FormatInt(res.Record.ID, 10))
	writeJSON(w, http.StatusCreated, submitResponse{
		Record:     res.Record,
		Recognized: res.Recognized,
	})
}

func (a *API) handleAchievementResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/achievements/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	actor, ok := a.requireAccount(w, r)
	if !ok {
		return
	}
	parts := strings.Split(path, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			rec, err := a.achievements.Get(r.Context(), actor, id)
			if err != nil {
				handleDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, rec)
		case http.MethodDelete:
			if err := a.achievements.Delete(r.Context(), actor, id); err != nil {
				handleDomainError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "approve":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		rec, err := a.achievements.Approve(r.Context(), actor, id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case len(parts) == 2 && parts[1] == "reject":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		rec, err := a.achievements.Reject(r.Context(), actor, id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}
