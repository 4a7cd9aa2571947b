package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
	"github.com/tatianab/duelul-ideilor/internal/report"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, newCatalogView())
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, models.Rulebook())
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		Error(w, http.StatusNotFound, "preferences are not stored")
		return
	}
	prefs, err := s.store.LoadPreferences()
	if err != nil {
		s.log.Error("Failed to load preferences", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	JSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		Error(w, http.StatusNotFound, "preferences are not stored")
		return
	}
	var prefs models.Preferences
	if err := decode(r, &prefs); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if prefs.Theme != models.ThemeDark && prefs.Theme != models.ThemeLight {
		Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown theme %q", prefs.Theme))
		return
	}
	if err := s.store.SavePreferences(&prefs); err != nil {
		s.log.Error("Failed to save preferences", "error", err)
		Error(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	JSON(w, http.StatusOK, prefs)
}

type createDuelRequest struct {
	Tier           int      `json:"tier"`
	ExcludedTopics []string `json:"excludedTopics"`
	FavoriteThemes []string `json:"favoriteThemes"`
	MetaphorLevel  *int     `json:"metaphorLevel"`
}

// settings applies the request the way the dashboard would, so duplicates
// and over-limit selections are refused rather than silently trimmed.
func (req createDuelRequest) settings() (models.Settings, error) {
	if !models.ValidTier(req.Tier) {
		return models.Settings{}, fmt.Errorf("tier %d outside [%d,%d]", req.Tier, models.MinTier, models.MaxTier)
	}
	st := models.NewSettings(req.Tier)
	for _, t := range req.ExcludedTopics {
		if !st.ToggleExcludedTopic(t) {
			return models.Settings{}, fmt.Errorf("cannot exclude topic %q at tier %d", t, req.Tier)
		}
	}
	for _, t := range req.FavoriteThemes {
		if !st.ToggleFavoriteTheme(t) {
			return models.Settings{}, fmt.Errorf("cannot add favorite theme %q at tier %d", t, req.Tier)
		}
	}
	if req.MetaphorLevel != nil {
		if err := st.SetMetaphorLevel(*req.MetaphorLevel); err != nil {
			return models.Settings{}, err
		}
	}
	return st, nil
}

func (s *Server) handleCreateDuel(w http.ResponseWriter, r *http.Request) {
	var req createDuelRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := req.settings()
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sess, err := s.reg.Create(settings)
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.log.Info("Duel created", "duel", sess.ID(), "tier", settings.Tier)
	w.Header().Set("Location", "/api/duels/"+sess.ID().String())
	JSON(w, http.StatusCreated, newStateView(sess))
}

// session resolves the {duelID} URL parameter, writing 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*duel.Session, bool) {
	sess, err := s.reg.Get(chi.URLParam(r, "duelID"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// oracleContext keeps an oracle round trip alive after the client goes
// away; the session applies its own call timeout.
func oracleContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleGetDuel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, newStateView(sess))
}

func (s *Server) handleDeleteDuel(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.Remove(chi.URLParam(r, "duelID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.SetDraft(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.SubmitPlayerText(oracleContext(r), req.Text); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newStateView(sess))
}

type endRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req endRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := sess.EndDuel(oracleContext(r), req.Reason); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newStateView(sess))
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.ToggleLike(chi.URLParam(r, "messageID")); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newStateView(sess))
}

func (s *Server) handleTooComplex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.MarkTooComplex(chi.URLParam(r, "messageID")); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newStateView(sess))
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	text, err := sess.RequestExplanation(oracleContext(r), chi.URLParam(r, "messageID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"explanation": text})
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "messageID")
	if _, err := sess.Visualize(oracleContext(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"image": r.URL.Path})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "messageID")
	for _, m := range models.DuelMessages(sess.Snapshot().History) {
		if m.ID == id && m.GeneratedImageRef != "" {
			http.ServeFile(w, r, m.GeneratedImageRef)
			return
		}
	}
	Error(w, http.StatusNotFound, "no image for message")
}

func (s *Server) handleOpenChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q, err := sess.OpenChallenge()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newQuoteView(q))
}

type challengeRequest struct {
	MessageIDs [2]string         `json:"messageIds"`
	Reason     models.ReasonCode `json:"reasonCode"`
	Argument   string            `json:"argument"`
	Wager      int               `json:"wager"`
}

type challengeResponse struct {
	Record models.ChallengeRecord `json:"record"`
	State  stateView              `json:"state"`
}

func (s *Server) handleSubmitChallenge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req challengeRequest
	if err := decode(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := sess.SubmitChallenge(oracleContext(r), duel.ChallengeSubmission{
		MessageA: req.MessageIDs[0],
		MessageB: req.MessageIDs[1],
		Reason:   req.Reason,
		Argument: req.Argument,
		Wager:    req.Wager,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, challengeResponse{Record: *rec, State: newStateView(sess)})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	st := sess.Snapshot()
	if st.Mode != duel.ModeEnded {
		s.fail(w, r, fmt.Errorf("%w: report is available once the duel has ended", duel.ErrRejected))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(s.now())))
	fmt.Fprint(w, report.Build(st, sess.Settings()))
}
