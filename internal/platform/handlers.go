package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"clipper/internal/clipper"
	"clipper/internal/messages"
	"clipper/internal/terminal"
	"clipper/ui"
	"clipper/util"

	"github.com/a-h/templ"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// installNoticeThreshold mirrors the terminal's update notice odds.
const installNoticeThreshold = 0.6

// Health returns 200 OK.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InstallPageHandler renders the install instructions for the visitor's platform.
func InstallPageHandler(svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := svc.Dispatcher.Guide(SessionPlatform(r))
		page := ui.InstallPage{
			Guide:        g,
			Instructions: util.Markdown(ui.InstallMarkdown(g)),
			UpdateNotice: svc.Notices.Float64() > installNoticeThreshold,
		}
		templ.Handler(ui.Index(page)).ServeHTTP(w, r)
	}
}

// TerminalPageHandler renders the browser terminal shell.
func TerminalPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templ.Handler(ui.TerminalPage(SessionPlatform(r))).ServeHTTP(w, r)
	}
}

type commandBody struct {
	Cmd string `json:"cmd"`
}

// TerminalCommandHandler publishes the submitted line to terminal.session.<sid>.command.
// Bodies are JSON ({"cmd": "..."}, the datastar signal shape) or form encoded.
func TerminalCommandHandler(js messages.Sink) http.HandlerFunc {
	publisher := messages.NewPublisher(js)
	return func(w http.ResponseWriter, r *http.Request) {
		sid := SessionID(r)
		if sid == "" {
			http.Error(w, "missing session ID", http.StatusBadRequest)
			return
		}

		cmdText, err := readCommand(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(cmdText) == "" {
			// blank input is ignored
			w.WriteHeader(http.StatusNoContent)
			return
		}

		cmd := messages.NewTerminalCommandMessage(sid, cmdText).WithPlatform(SessionPlatform(r))
		if err := cmd.Validate(); err != nil {
			http.Error(w, fmt.Sprintf("validation error: %v", err), http.StatusBadRequest)
			return
		}
		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			slog.Error("http: publish terminal command", "sid", sid, "err", err)
			http.Error(w, "publish error", http.StatusServiceUnavailable)
			return
		}

		if isDatastar(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":        "accepted",
			"submission_id": cmd.SubmissionID,
		})
	}
}

func readCommand(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if isJSON(r) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return "", fmt.Errorf("bad body: %w", err)
		}
		if err := messages.ValidateJSON(messages.SchemaTerminalCommand, raw); err != nil {
			return "", err
		}
		var body commandBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", fmt.Errorf("bad body: %w", err)
		}
		return body.Cmd, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("invalid form data: %w", err)
	}
	return r.PostFormValue("cmd"), nil
}

// RecallHandler walks the session history and answers with an SSE signal
// update carrying the recalled draft. {dir} is "prev" or "next".
func RecallHandler(svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir := chi.URLParam(r, "dir")
		if dir != "prev" && dir != "next" {
			http.Error(w, "unknown recall direction", http.StatusNotFound)
			return
		}

		// the current input rides along as the cmd signal; it becomes the
		// draft when no recall is in progress
		var signals commandBody
		if err := decodeOptionalJSON(w, r, &signals); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var draft string
		svc.Sessions.Do(SessionID(r), func(s *terminal.Session) {
			if s.Cursor() == -1 {
				s.SetDraft(signals.Cmd)
			}
			if dir == "prev" {
				s.RecallPrevious()
			} else {
				s.RecallNext()
			}
			draft = s.Draft()
		})

		sse := datastar.NewSSE(w, r)
		if err := sse.MarshalAndMergeSignals(map[string]any{"cmd": draft}); err != nil {
			slog.Warn("http: recall signals", "err", err)
		}
	}
}

type prefs struct {
	Platform *clipper.Platform `json:"platform,omitempty"`
}

// PrefsHandler applies an RFC 7386 merge patch to the visitor's preferences.
// Setting platform to null or "unknown" returns to User-Agent detection.
func PrefsHandler(svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs := currentSession(r)
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		patch, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if isDatastar(r) {
			// datastar sends every signal; only the platform is a preference
			patch, err = pickKeys(patch, prefPlatform)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		var current prefs
		if rs.platform != clipper.Unknown {
			current.Platform = &rs.platform
		}
		doc, _ := json.Marshal(current)
		patched, err := jsonpatch.MergePatch(doc, patch)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid merge patch: %v", err), http.StatusBadRequest)
			return
		}
		if err := messages.ValidateJSON(messages.SchemaSessionPrefs, patched); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var next prefs
		if err := json.Unmarshal(patched, &next); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		p := clipper.Unknown
		if next.Platform != nil {
			p = *next.Platform
		}
		if p == clipper.Unknown {
			delete(rs.cookie.Values, prefPlatform)
		} else {
			rs.cookie.Values[prefPlatform] = p.String()
		}
		if err := rs.cookie.Save(r, w); err != nil {
			slog.Error("http: save prefs", "sid", rs.id, "err", err)
			http.Error(w, "could not save preferences", http.StatusInternalServerError)
			return
		}

		effective := p
		if effective == clipper.Unknown {
			effective = clipper.DetectPlatform(r.UserAgent())
		}
		svc.Sessions.Do(rs.id, func(s *terminal.Session) { s.SetPlatform(effective) })
		slog.Info("http: prefs updated", "sid", rs.id, "platform", effective)

		if isDatastar(r) {
			sse := datastar.NewSSE(w, r)
			_ = sse.MarshalAndMergeSignals(map[string]any{"platform": effective.String()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"platform": effective.String()})
	}
}

// StateHandler returns a JSON snapshot of the caller's terminal session.
func StateHandler(svc *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := svc.Sessions.Snapshot(SessionID(r))
		if !ok {
			http.Error(w, "no terminal session", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json" || (mt == "" && isDatastar(r))
}

func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("bad body: %w", err)
}

// pickKeys keeps only the named top-level members of a JSON object.
func pickKeys(raw []byte, keys ...string) ([]byte, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("bad body: %w", err)
	}
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}
