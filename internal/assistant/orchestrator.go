package assistant

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/pavanbh/career-oracle/internal/domain"
	"github.com/pavanbh/career-oracle/internal/resume"
	"github.com/pavanbh/career-oracle/internal/session"
	"github.com/pavanbh/career-oracle/internal/store"
	"github.com/pavanbh/career-oracle/internal/stream"
)

// TurnState names a stage of per-turn processing.
type TurnState string

const (
	StateReceived        TurnState = "received"
	StateClassifying     TurnState = "classifying"
	StateOffTopic        TurnState = "off_topic"
	StateFieldResolution TurnState = "field_resolution"
	StateRoleLookup      TurnState = "role_lookup"
	StateRoadmapLookup   TurnState = "roadmap_lookup"
	StateComposing       TurnState = "composing"
	StateStreaming       TurnState = "streaming"
	StateDone            TurnState = "done"
)

// EventType classifies a streamed output event.
type EventType string

const (
	// EventChunk is one word of the streamed answer.
	EventChunk EventType = "chunk"
	// EventBlockBreak is a paragraph boundary in the streamed answer.
	EventBlockBreak EventType = "block_break"
	// EventMessage is a complete assistant message revealed at once.
	EventMessage EventType = "message"
	// EventFlowchart carries ordered roadmap steps for diagram rendering.
	EventFlowchart EventType = "flowchart"
	// EventDone ends the turn; Text carries the full streamed answer.
	EventDone EventType = "done"
)

// Event is one unit of orchestrator output. Transports pace and serialize
// events; the orchestrator only decides content and order.
type Event struct {
	Type  EventType `json:"type"`
	Text  string    `json:"text,omitempty"`
	Steps []string  `json:"steps,omitempty"`
}

// Orchestrator sequences one conversational turn: classify, resolve the
// field, look up roles and roadmap, compose the final answer through the
// session's stateful chat handle, and record every turn in the transcript.
type Orchestrator struct {
	svc      *Service
	sessions *session.Manager
	repo     store.Repository
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(svc *Service, sessions *session.Manager, repo store.Repository) *Orchestrator {
	return &Orchestrator{svc: svc, sessions: sessions, repo: repo}
}

// Turn processes one user utterance and yields output events lazily.
//
// The user turn is appended to the transcript before any model call, so the
// input stays visible even if later stages fail. On success the narrative
// answer is appended, then a separate flowchart turn when the roadmap
// produced steps, so transcript replay renders both blocks in their
// original positions.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, utterance string) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		state := StateReceived
		o.touch(ctx, sessionID)

		if err := o.repo.AppendTurn(ctx, sessionID, domain.NewTextTurn(domain.RoleUser, utterance)); err != nil {
			yield(nil, err)
			return
		}

		state = StateClassifying
		if !o.svc.IsCareerRelated(ctx, utterance) {
			state = StateOffTopic
			slog.Info("turn finished", "session_id", sessionID, "state", state)
			o.appendAssistantText(ctx, sessionID, OffTopicMessage)
			if !yield(&Event{Type: EventMessage, Text: OffTopicMessage}, nil) {
				return
			}
			yield(&Event{Type: EventDone, Text: OffTopicMessage}, nil)
			return
		}

		state = StateFieldResolution
		field := o.svc.ResolveField(ctx, utterance)

		prompt := utterance
		var steps []string
		if field != "" {
			state = StateRoleLookup
			roles := o.svc.RolesFor(ctx, field)

			state = StateRoadmapLookup
			steps = o.svc.RoadmapFor(ctx, field)

			prompt = compositePrompt(utterance, field, roles)
		}

		state = StateComposing
		answer := o.compose(ctx, sessionID, prompt)
		if len(steps) > 0 {
			answer += "\n\nFlow Chart-"
		}

		state = StateStreaming
		for _, chunk := range stream.Split(answer) {
			ev := &Event{Type: EventChunk, Text: chunk.Text}
			if chunk.Kind == stream.BlockBreak {
				ev.Type = EventBlockBreak
			}
			if !yield(ev, nil) {
				return
			}
		}

		state = StateDone
		o.appendAssistantText(ctx, sessionID, answer)
		if len(steps) > 0 {
			if err := o.repo.AppendTurn(ctx, sessionID, domain.NewFlowchartTurn(steps)); err != nil {
				slog.Error("failed to append flowchart turn", "session_id", sessionID, "error", err)
			}
			if !yield(&Event{Type: EventFlowchart, Steps: steps}, nil) {
				return
			}
		}

		slog.Info("turn finished", "session_id", sessionID, "state", state, "field", field, "steps", len(steps))
		yield(&Event{Type: EventDone, Text: answer}, nil)
	}
}

// touch records activity on both the live session state and the stored
// session record, so the janitor never reaps a session mid-conversation.
func (o *Orchestrator) touch(ctx context.Context, sessionID string) {
	o.sessions.Touch(sessionID)
	if err := o.repo.TouchSession(ctx, sessionID, time.Now()); err != nil {
		slog.Warn("failed to refresh stored session activity", "session_id", sessionID, "error", err)
	}
}

// compose sends the final instruction through the session's stateful chat
// handle so conversational memory accumulates only composed exchanges, not
// the intermediate scratch calls. Failures degrade to a fixed apology.
func (o *Orchestrator) compose(ctx context.Context, sessionID, prompt string) string {
	chat, err := o.sessions.Chat(ctx, sessionID)
	if err != nil {
		slog.Error("failed to open chat handle", "session_id", sessionID, "error", err)
		return AnswerUnavailableMessage
	}

	answer, err := chat.Send(ctx, prompt)
	if err != nil {
		slog.Error("composite answer failed", "session_id", sessionID, "error", err)
		return AnswerUnavailableMessage
	}
	if strings.TrimSpace(answer) == "" {
		return AnswerUnavailableMessage
	}
	return answer
}

// AnalyzeResume runs the resume pipeline: extract text, extract skills,
// generate career paths, stream the result. The pipeline runs at most once
// per session; repeat uploads replay the cached analysis without invoking
// extraction or generation again.
func (o *Orchestrator) AnalyzeResume(ctx context.Context, sessionID, mime string, data []byte) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		o.touch(ctx, sessionID)

		if skills, analysis, ok := o.sessions.ResumeResult(sessionID); ok {
			slog.Info("resume already processed, replaying cached analysis", "session_id", sessionID)
			o.replayResume(yield, skills, analysis)
			return
		}

		text := resume.ExtractText(mime, data)
		skills := o.svc.ExtractSkills(ctx, text)

		if len(skills) == 0 {
			o.sessions.SetResumeResult(sessionID, nil, "")
			o.appendAssistantText(ctx, sessionID, NoSkillsMessage)
			if !yield(&Event{Type: EventMessage, Text: NoSkillsMessage}, nil) {
				return
			}
			yield(&Event{Type: EventDone, Text: NoSkillsMessage}, nil)
			return
		}

		skillsLine := "Mentioned skills in resume: " + strings.Join(skills, ", ")
		o.appendAssistantText(ctx, sessionID, skillsLine)
		if !yield(&Event{Type: EventMessage, Text: skillsLine}, nil) {
			return
		}

		analysis := o.svc.CareerPaths(ctx, skills)
		if analysis == "" {
			analysis = AnswerUnavailableMessage
		}
		o.sessions.SetResumeResult(sessionID, skills, analysis)

		for _, chunk := range stream.Split(analysis) {
			ev := &Event{Type: EventChunk, Text: chunk.Text}
			if chunk.Kind == stream.BlockBreak {
				ev.Type = EventBlockBreak
			}
			if !yield(ev, nil) {
				return
			}
		}

		o.appendAssistantText(ctx, sessionID, analysis)
		yield(&Event{Type: EventDone, Text: analysis}, nil)
	}
}

func (o *Orchestrator) replayResume(yield func(*Event, error) bool, skills []string, analysis string) {
	if len(skills) == 0 {
		if !yield(&Event{Type: EventMessage, Text: NoSkillsMessage}, nil) {
			return
		}
		yield(&Event{Type: EventDone, Text: NoSkillsMessage}, nil)
		return
	}

	skillsLine := "Mentioned skills in resume: " + strings.Join(skills, ", ")
	if !yield(&Event{Type: EventMessage, Text: skillsLine}, nil) {
		return
	}
	if !yield(&Event{Type: EventMessage, Text: analysis}, nil) {
		return
	}
	yield(&Event{Type: EventDone, Text: analysis}, nil)
}

func (o *Orchestrator) appendAssistantText(ctx context.Context, sessionID, text string) {
	if err := o.repo.AppendTurn(ctx, sessionID, domain.NewTextTurn(domain.RoleAssistant, text)); err != nil {
		slog.Error("failed to append assistant turn", "session_id", sessionID, "error", err)
	}
}

// Transcript returns the session's transcript in append order.
func (o *Orchestrator) Transcript(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	return o.repo.ListTurns(ctx, sessionID)
}
