package stubapi

import (
	"net/http"
	"strconv"
)

// login endpoints answer 200 with a bare boolean, as the real backend does

func (h *Handler) doctorAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("doctorId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, h.store.CheckDoctor(id, q.Get("password")))
}

func (h *Handler) patientAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("patientId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusOK, false)
		return
	}
	writeJSON(w, http.StatusOK, h.store.CheckPatient(id, q.Get("password")))
}

func (h *Handler) adminAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.store.CheckAdmin(q.Get("identifier"), q.Get("password")))
}
