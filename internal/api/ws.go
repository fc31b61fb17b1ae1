package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/sprite-ai/mergegate/internal/docsync"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types from client.
const (
	wsMsgEvaluate = "evaluate"
	wsMsgUpsert   = "upsert"
	wsMsgFinish   = "finish"
)

// WebSocket message types to client.
const (
	wsMsgClassified = "classified"
	wsMsgVerdict    = "verdict"
	wsMsgDocument   = "document"
	wsMsgSummary    = "summary"
	wsMsgError      = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsEvaluate is the payload for "evaluate" messages.
type wsEvaluate struct {
	Descriptor   descriptorJSON `json:"descriptor"`
	Patch        string         `json:"patch,omitempty"`
	QualityScore *float64       `json:"quality_score,omitempty"`
	Handle       string         `json:"handle,omitempty"`
}

// wsDocumentResponse carries the replacement document after each step.
type wsDocumentResponse struct {
	Document string `json:"document"`
	Warning  string `json:"warning,omitempty"`
}

// wsSummaryResponse is sent when the session is finished.
type wsSummaryResponse struct {
	Evaluations int `json:"evaluations"`
	Allowed     int `json:"allowed"`
	Escalated   int `json:"escalated"`
	Blocked     int `json:"blocked"`
}

// wsSession accumulates state over one WebSocket connection. Document
// and labels live here, so successive evaluations build on each other
// without touching any remote resource.
type wsSession struct {
	document    string
	labels      map[string]bool
	evaluations int
	allowed     int
	escalated   int
	blocked     int
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &wsSession{labels: make(map[string]bool)}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgEvaluate:
			s.handleWSEvaluate(conn, session, msg.Data)
		case wsMsgUpsert:
			s.handleWSUpsert(conn, session, msg.Data)
		case wsMsgFinish:
			handleWSFinish(conn, session)
		default:
			sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) handleWSEvaluate(conn *websocket.Conn, session *wsSession, data json.RawMessage) {
	var req wsEvaluate
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid evaluate data")
		return
	}

	// First evaluation seeds the session labels from the descriptor;
	// after that the session's own label state wins.
	if session.evaluations == 0 {
		for _, l := range req.Descriptor.Labels {
			session.labels[l] = true
		}
	}

	eng := *s.engine
	eng.Store = sessionStore{session: session}
	eng.Pins = nil
	eng.Scores = nil
	if req.QualityScore != nil {
		eng.Scores = remote.StaticScore(*req.QualityScore)
	}

	res, err := eng.Evaluate(context.Background(), remote.Handle(req.Handle), req.Descriptor.toModel(), req.Patch)
	if err != nil {
		sendWSError(conn, "evaluating: "+err.Error())
		return
	}

	session.evaluations++
	switch res.Verdict.Decision {
	case model.DecisionAllow:
		session.allowed++
	case model.DecisionEscalate:
		session.escalated++
	case model.DecisionBlock:
		session.blocked++
	}

	sendWSMessage(conn, wsMsgClassified, classificationToJSON(res.Classification))
	sendWSMessage(conn, wsMsgVerdict, verdictJSON{
		Decision: res.Verdict.Decision.String(),
		Category: res.Verdict.Category.String(),
		Reasons:  res.Verdict.Reasons,
	})

	docResp := wsDocumentResponse{Document: res.Document}
	if res.Warning != nil {
		docResp.Warning = res.Warning.String()
	}
	sendWSMessage(conn, wsMsgDocument, docResp)
}

func (s *Server) handleWSUpsert(conn *websocket.Conn, session *wsSession, data json.RawMessage) {
	var req upsertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid upsert data")
		return
	}
	if req.SectionID == "" {
		sendWSError(conn, "section_id is required")
		return
	}

	// The session document is the working snapshot unless the client
	// supplies its own.
	existing := req.Document
	if existing == "" {
		existing = session.document
	}

	doc, warn := docsync.UpsertSection(existing, req.SectionID, req.Body)
	session.document = doc

	resp := wsDocumentResponse{Document: doc}
	if warn != nil {
		resp.Warning = warn.String()
	}
	sendWSMessage(conn, wsMsgDocument, resp)
}

func handleWSFinish(conn *websocket.Conn, session *wsSession) {
	sendWSMessage(conn, wsMsgSummary, wsSummaryResponse{
		Evaluations: session.evaluations,
		Allowed:     session.allowed,
		Escalated:   session.escalated,
		Blocked:     session.blocked,
	})
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, errMsg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}

// sessionStore adapts per-connection session state to the engine's
// store interface. One connection is one session, so no locking.
type sessionStore struct {
	session *wsSession
}

var _ remote.Store = sessionStore{}

func (s sessionStore) GetDocument(ctx context.Context, h remote.Handle) (string, bool, error) {
	return s.session.document, s.session.document != "", nil
}

func (s sessionStore) SetDocument(ctx context.Context, h remote.Handle, text string) error {
	s.session.document = text
	return nil
}

func (s sessionStore) AddLabel(ctx context.Context, h remote.Handle, name string) error {
	s.session.labels[name] = true
	return nil
}

func (s sessionStore) RemoveLabel(ctx context.Context, h remote.Handle, name string) error {
	delete(s.session.labels, name)
	return nil
}

func (s sessionStore) ListLabels(ctx context.Context, h remote.Handle) (map[string]bool, error) {
	out := make(map[string]bool, len(s.session.labels))
	for l := range s.session.labels {
		out[l] = true
	}
	return out, nil
}
